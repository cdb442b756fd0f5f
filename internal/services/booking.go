package services

import (
	"context"
	"time"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateBookingInput carries the validated request fields for a new booking.
type CreateBookingInput struct {
	TherapistID     string
	AppointmentDate string
	AppointmentTime string
	SessionType     string
	Notes           string
}

// BookingListFilter scopes a paginated booking listing.
type BookingListFilter struct {
	PatientID   *primitive.ObjectID
	TherapistID *primitive.ObjectID
	Status      string
	Page        int
	Limit       int
}

// BookingStore is the persistence surface for bookings.
// Single-document lookups return (nil, nil) on a miss.
type BookingStore interface {
	BookingReader
	FindActiveBookingAt(ctx context.Context, therapistID primitive.ObjectID, date time.Time, timeLabel string) (*models.Booking, error)
	FindBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status string) error
	ListBookings(ctx context.Context, filter BookingListFilter) ([]models.Booking, int64, error)
}

// BookingService owns booking creation and the status lifecycle.
type BookingService struct {
	resolver *TherapistResolver
	store    BookingStore
}

func NewBookingService(resolver *TherapistResolver, store BookingStore) *BookingService {
	return &BookingService{resolver: resolver, store: store}
}

// Create validates and persists a new booking for the patient.
//
// The read-then-write conflict check below is advisory: it produces the
// friendly "already booked" error in the common case. The partial unique
// index on (therapist_id, appointment_date, appointment_time) ensured at
// startup closes the race between two concurrent requests, and a
// duplicate-key error on insert maps to the same conflict.
func (s *BookingService) Create(ctx context.Context, patientID primitive.ObjectID, input CreateBookingInput) (*models.Booking, error) {
	resolved, err := s.resolver.Resolve(ctx, input.TherapistID)
	if err != nil {
		return nil, err
	}

	date, err := ParseAppointmentDate(input.AppointmentDate)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindActiveBookingAt(ctx, resolved.UserID, date, input.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:                   primitive.NewObjectID(),
		CreatedAt:            now,
		UpdatedAt:            now,
		PatientID:            patientID,
		TherapistID:          resolved.UserID,
		AppointmentDate:      date,
		AppointmentDateLabel: date.Format("2006-01-02"),
		AppointmentTime:      input.AppointmentTime,
		SessionType:          input.SessionType,
		Status:               models.BookingStatusPending,
		PaymentStatus:        models.PaymentStatusPending,
		// Fee is copied at write time and never re-derived later.
		TotalAmount: resolved.ConsultationFee,
		Currency:    resolved.Currency,
		Notes:       input.Notes,
	}

	if err := s.store.InsertBooking(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	PublishBookingEventAsync(BookingEvent{
		Type:        BookingEventCreated,
		BookingID:   booking.ID.Hex(),
		Status:      booking.Status,
		PatientID:   booking.PatientID.Hex(),
		TherapistID: booking.TherapistID.Hex(),
		Date:        booking.AppointmentDateLabel,
		Time:        booking.AppointmentTime,
	})

	return booking, nil
}

// List returns the caller's bookings: patients see their own, therapists
// see bookings assigned to them, admins see everything.
func (s *BookingService) List(ctx context.Context, userID primitive.ObjectID, role, status string, page, limit int) ([]models.Booking, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := BookingListFilter{Status: status, Page: page, Limit: limit}
	switch role {
	case models.RoleTherapist:
		filter.TherapistID = &userID
	case models.RoleAdmin:
		// unscoped
	default:
		filter.PatientID = &userID
	}

	return s.store.ListBookings(ctx, filter)
}

// Confirm advances a pending booking to confirmed. Only the assigned
// therapist or an admin may confirm.
func (s *BookingService) Confirm(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusConfirmed)
}

// Cancel moves an active booking to cancelled. The owning patient, the
// assigned therapist, and admins may cancel.
func (s *BookingService) Cancel(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusCancelled)
}

// Complete marks a confirmed booking completed. Only the assigned
// therapist or an admin may complete.
func (s *BookingService) Complete(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusCompleted)
}

func (s *BookingService) transition(ctx context.Context, actorID primitive.ObjectID, role string, bookingID primitive.ObjectID, target string) (*models.Booking, error) {
	booking, err := s.store.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if !transitionAllowed(booking, actorID, role, target) {
		return nil, ErrForbidden
	}
	if !statusReachable(booking.Status, target) {
		return nil, ErrInvalidTransition
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, target); err != nil {
		return nil, err
	}
	booking.Status = target
	booking.UpdatedAt = time.Now().UTC()

	PublishBookingEventAsync(BookingEvent{
		Type:        BookingEventStatusChanged,
		BookingID:   booking.ID.Hex(),
		Status:      target,
		PatientID:   booking.PatientID.Hex(),
		TherapistID: booking.TherapistID.Hex(),
		Date:        booking.AppointmentDateLabel,
		Time:        booking.AppointmentTime,
	})

	return booking, nil
}

func transitionAllowed(b *models.Booking, actorID primitive.ObjectID, role, target string) bool {
	if role == models.RoleAdmin {
		return true
	}
	switch target {
	case models.BookingStatusConfirmed, models.BookingStatusCompleted:
		return role == models.RoleTherapist && b.TherapistID == actorID
	case models.BookingStatusCancelled:
		if role == models.RoleTherapist {
			return b.TherapistID == actorID
		}
		return b.PatientID == actorID
	}
	return false
}

func statusReachable(current, target string) bool {
	switch target {
	case models.BookingStatusConfirmed:
		return current == models.BookingStatusPending
	case models.BookingStatusCompleted:
		return current == models.BookingStatusConfirmed
	case models.BookingStatusCancelled:
		return current == models.BookingStatusPending || current == models.BookingStatusConfirmed
	}
	return false
}
