package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bookingAPI is the slice of the booking service the HTTP layer uses.
type bookingAPI interface {
	Create(ctx context.Context, patientID primitive.ObjectID, input services.CreateBookingInput) (*models.Booking, error)
	List(ctx context.Context, userID primitive.ObjectID, role, status string, page, limit int) ([]models.Booking, int64, error)
	Confirm(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error)
	Cancel(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error)
	Complete(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error)
}

type availabilityAPI interface {
	ForDate(ctx context.Context, therapistID, dateStr string) ([]services.AvailabilitySlot, error)
}

type resolverAPI interface {
	Resolve(ctx context.Context, id string) (*services.ResolvedTherapist, error)
}

var (
	bookingService      bookingAPI
	availabilityService availabilityAPI
	therapistResolver   resolverAPI
)

// InitBookingHandlers wires the booking domain services into the HTTP
// handlers. Called once from main after the stores are connected.
func InitBookingHandlers(bookings bookingAPI, availability availabilityAPI, resolver resolverAPI) {
	bookingService = bookings
	availabilityService = availability
	therapistResolver = resolver
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
