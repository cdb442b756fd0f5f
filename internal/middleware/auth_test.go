package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"abc123", ""},
		{"Basic abc123", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := BearerToken(tc.header); got != tc.want {
			t.Fatalf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(models.RoleAdmin)(next)

	// No identity on the context.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	// Wrong role.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), AuthUser{ID: primitive.NewObjectID(), Role: models.RolePatient}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong role, got %d", rec.Code)
	}

	// Matching role passes through.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), AuthUser{ID: primitive.NewObjectID(), Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", rec.Code)
	}
}
