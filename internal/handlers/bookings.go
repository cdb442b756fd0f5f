package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBookingRequest struct {
	TherapistID     string `json:"therapistId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	SessionType     string `json:"sessionType"`
	Notes           string `json:"notes,omitempty"`
}

// CreateBooking reserves an appointment slot for the authenticated patient.
func CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TherapistID == "" || req.AppointmentDate == "" || req.AppointmentTime == "" || req.SessionType == "" {
		writeError(w, http.StatusBadRequest, "therapistId, appointmentDate, appointmentTime and sessionType are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	booking, err := bookingService.Create(ctx, user.ID, services.CreateBookingInput{
		TherapistID:     req.TherapistID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		SessionType:     req.SessionType,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTherapistNotFound):
			writeError(w, http.StatusNotFound, "Therapist not found")
		case errors.Is(err, services.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		case errors.Is(err, services.ErrSlotTaken):
			writeError(w, http.StatusBadRequest, "Time slot is already booked")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeData(w, http.StatusCreated, map[string]interface{}{
		"bookingId": booking.ID.Hex(),
		"booking":   booking,
	})
}

// ListBookings returns the caller's bookings: patients see their own,
// therapists see bookings assigned to them.
func ListBookings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	status := r.URL.Query().Get("status")
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 20)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bookings, total, err := bookingService.List(ctx, user.ID, user.Role, status, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"bookings":   bookings,
		"pagination": paginationMeta(page, limit, total),
	})
}

// ConfirmBooking advances a pending booking to confirmed.
func ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	transitionBooking(w, r, func(ctx context.Context, actor middleware.AuthUser, id primitive.ObjectID) (*models.Booking, error) {
		return bookingService.Confirm(ctx, actor.ID, actor.Role, id)
	})
}

// CancelBooking cancels an active booking.
func CancelBooking(w http.ResponseWriter, r *http.Request) {
	transitionBooking(w, r, func(ctx context.Context, actor middleware.AuthUser, id primitive.ObjectID) (*models.Booking, error) {
		return bookingService.Cancel(ctx, actor.ID, actor.Role, id)
	})
}

// CompleteBooking marks a confirmed booking completed.
func CompleteBooking(w http.ResponseWriter, r *http.Request) {
	transitionBooking(w, r, func(ctx context.Context, actor middleware.AuthUser, id primitive.ObjectID) (*models.Booking, error) {
		return bookingService.Complete(ctx, actor.ID, actor.Role, id)
	})
}

func transitionBooking(w http.ResponseWriter, r *http.Request, apply func(context.Context, middleware.AuthUser, primitive.ObjectID) (*models.Booking, error)) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	booking, err := apply(ctx, user, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "Booking not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "You are not allowed to update this booking")
		case errors.Is(err, services.ErrInvalidTransition):
			writeError(w, http.StatusBadRequest, "Booking cannot change to that status")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"bookingId": booking.ID.Hex(),
		"booking":   booking,
	})
}
