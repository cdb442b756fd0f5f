package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
)

// Booking event types
const (
	BookingEventCreated       = "booking_created"
	BookingEventStatusChanged = "booking_status_changed"
)

const bookingChannelPrefix = "booking:user:"

// BookingEvent is the payload broadcast over Redis and WebSocket whenever
// a booking is created or changes status.
type BookingEvent struct {
	Type        string `json:"type"`
	BookingID   string `json:"booking_id"`
	Status      string `json:"status"`
	PatientID   string `json:"patient_id"`
	TherapistID string `json:"therapist_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// BookingHub fans Redis booking events out to local WebSocket subscribers,
// keyed by user id hex. Multiple connections per user are allowed
// (e.g. two browser tabs).
type BookingHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan BookingEvent]struct{}
}

var (
	bookingHub   = &BookingHub{subscribers: make(map[string]map[chan BookingEvent]struct{})}
	redisStarted sync.Once
)

// SubscribeBookingEvents registers a local subscriber for one user's
// events. The returned function unsubscribes and closes the channel.
func SubscribeBookingEvents(userID string) (<-chan BookingEvent, func()) {
	ch := make(chan BookingEvent, 8)

	bookingHub.mu.Lock()
	if bookingHub.subscribers[userID] == nil {
		bookingHub.subscribers[userID] = make(map[chan BookingEvent]struct{})
	}
	bookingHub.subscribers[userID][ch] = struct{}{}
	bookingHub.mu.Unlock()

	unsubscribe := func() {
		bookingHub.mu.Lock()
		if set, ok := bookingHub.subscribers[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(bookingHub.subscribers, userID)
			}
		}
		bookingHub.mu.Unlock()
	}
	return ch, unsubscribe
}

// fanOut delivers an event to every local subscriber of one user.
func (h *BookingHub) fanOut(userID string, event BookingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			// Slow consumer; drop rather than block the subscriber loop.
		}
	}
}

// PublishBookingEventAsync publishes an event to the per-user Redis
// channels of both participants. Fire-and-forget: booking writes must not
// fail because the broadcast did.
func PublishBookingEventAsync(event BookingEvent) {
	if database.RedisClient == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal booking event: %v", err)
			return
		}

		for _, userID := range []string{event.PatientID, event.TherapistID} {
			if userID == "" {
				continue
			}
			if err := database.RedisClient.Publish(ctx, bookingChannelPrefix+userID, data).Err(); err != nil {
				log.Printf("failed to publish booking event for %s: %v", userID, err)
			}
		}
	}()
}

// StartRedisBookingSubscriber ensures a single shared Redis listener per
// instance; it feeds the local hub so every instance sees every event.
func StartRedisBookingSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runRedisSubscriber(ctx)
	})
}

func runRedisSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; booking subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, bookingChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Booking Redis subscriber started (pattern: booking:user:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event BookingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal booking event: %v", err)
					continue
				}

				userID := msg.Channel[len(bookingChannelPrefix):]
				bookingHub.fanOut(userID, event)
			}
		}()
	}
}
