package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request. Uses r.RemoteAddr
// only (no proxy headers): traffic reaches the app directly, so trusting
// X-Forwarded-For would let clients spoof their way past rate limits.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
