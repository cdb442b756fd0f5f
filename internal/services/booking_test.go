package services

import (
	"context"
	"testing"
	"time"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// stubBookingStore keeps inserted bookings in memory so sequential
// conflict behavior can be exercised end to end.
type stubBookingStore struct {
	bookings  []models.Booking
	insertErr error
}

func (s *stubBookingStore) FindActiveBookings(_ context.Context, therapistID primitive.ObjectID, date time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.TherapistID == therapistID && b.AppointmentDate.Equal(date) && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookingStore) FindActiveBookingAt(_ context.Context, therapistID primitive.ObjectID, date time.Time, timeLabel string) (*models.Booking, error) {
	for i, b := range s.bookings {
		if b.TherapistID == therapistID && b.AppointmentDate.Equal(date) && b.AppointmentTime == timeLabel && b.IsActive() {
			return &s.bookings[i], nil
		}
	}
	return nil, nil
}

func (s *stubBookingStore) FindBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	for i, b := range s.bookings {
		if b.ID == id {
			return &s.bookings[i], nil
		}
	}
	return nil, nil
}

func (s *stubBookingStore) InsertBooking(_ context.Context, booking *models.Booking) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *stubBookingStore) UpdateBookingStatus(_ context.Context, id primitive.ObjectID, status string) error {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = status
			return nil
		}
	}
	return nil
}

func (s *stubBookingStore) ListBookings(_ context.Context, filter BookingListFilter) ([]models.Booking, int64, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if filter.PatientID != nil && b.PatientID != *filter.PatientID {
			continue
		}
		if filter.TherapistID != nil && b.TherapistID != *filter.TherapistID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (s *stubBookingStore) activeCount() int {
	n := 0
	for _, b := range s.bookings {
		if b.IsActive() {
			n++
		}
	}
	return n
}

func newBookingFixture() (*BookingService, *stubBookingStore, primitive.ObjectID, primitive.ObjectID) {
	profileID := primitive.NewObjectID()
	therapistUserID := primitive.NewObjectID()
	therapists := &stubTherapistStore{
		profiles: map[primitive.ObjectID]*models.TherapistProfile{
			profileID: {ID: profileID, UserID: therapistUserID, ConsultationFee: 1800, Currency: "INR"},
		},
	}
	store := &stubBookingStore{}
	svc := NewBookingService(NewTherapistResolver(therapists), store)
	return svc, store, profileID, therapistUserID
}

func TestCreateBookingPersistsPendingWithCurrentFee(t *testing.T) {
	svc, store, profileID, therapistUserID := newBookingFixture()
	patientID := primitive.NewObjectID()

	booking, err := svc.Create(context.Background(), patientID, CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Fatalf("expected status pending, got %s", booking.Status)
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected payment status pending, got %s", booking.PaymentStatus)
	}
	if booking.TotalAmount != 1800 {
		t.Fatalf("expected amount copied from fee (1800), got %v", booking.TotalAmount)
	}
	// Therapist reference is normalized to the owning user id.
	if booking.TherapistID != therapistUserID {
		t.Fatalf("expected therapist id %s, got %s", therapistUserID.Hex(), booking.TherapistID.Hex())
	}
	if !booking.AppointmentDate.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight-normalized date, got %s", booking.AppointmentDate)
	}
	if booking.AppointmentDateLabel != "2025-06-10" {
		t.Fatalf("expected legacy date label, got %q", booking.AppointmentDateLabel)
	}
	if len(store.bookings) != 1 {
		t.Fatalf("expected 1 persisted booking, got %d", len(store.bookings))
	}
}

func TestCreateBookingSequentialConflict(t *testing.T) {
	svc, store, profileID, _ := newBookingFixture()

	input := CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	}

	if _, err := svc.Create(context.Background(), primitive.NewObjectID(), input); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(context.Background(), primitive.NewObjectID(), input); err != ErrSlotTaken {
		t.Fatalf("second booking: expected ErrSlotTaken, got %v", err)
	}
	if store.activeCount() != 1 {
		t.Fatalf("expected exactly 1 active booking, got %d", store.activeCount())
	}
}

func TestCreateBookingCancelledSlotIsReusable(t *testing.T) {
	svc, store, profileID, therapistUserID := newBookingFixture()

	input := CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	}

	patient := primitive.NewObjectID()
	first, err := svc.Create(context.Background(), patient, input)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), patient, models.RolePatient, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	second, err := svc.Create(context.Background(), primitive.NewObjectID(), input)
	if err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
	if second.TherapistID != therapistUserID {
		t.Fatalf("unexpected therapist id on rebooking")
	}
	if store.activeCount() != 1 {
		t.Fatalf("expected 1 active booking after cancel+rebook, got %d", store.activeCount())
	}
}

func TestCreateBookingUnknownTherapist(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateBookingInput{
		TherapistID:     primitive.NewObjectID().Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	})
	if err != ErrTherapistNotFound {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}
}

func TestCreateBookingInvalidDate(t *testing.T) {
	svc, store, profileID, _ := newBookingFixture()

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "10-06-2025",
		AppointmentTime: "10:00",
		SessionType:     "video",
	})
	if err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if len(store.bookings) != 0 {
		t.Fatalf("invalid date must not persist anything")
	}
}

func TestCreateBookingMapsDuplicateKeyToConflict(t *testing.T) {
	svc, store, profileID, _ := newBookingFixture()
	// The unique index catches the race the advisory check missed.
	store.insertErr = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	})
	if err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken from duplicate key, got %v", err)
	}
}

func TestBookingLifecycleTransitions(t *testing.T) {
	svc, _, profileID, therapistUserID := newBookingFixture()
	patient := primitive.NewObjectID()

	booking, err := svc.Create(context.Background(), patient, CreateBookingInput{
		TherapistID:     profileID.Hex(),
		AppointmentDate: "2025-06-10",
		AppointmentTime: "10:00",
		SessionType:     "video",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A stranger therapist cannot confirm.
	if _, err := svc.Confirm(context.Background(), primitive.NewObjectID(), models.RoleTherapist, booking.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for unassigned therapist, got %v", err)
	}

	// The patient cannot confirm either.
	if _, err := svc.Confirm(context.Background(), patient, models.RolePatient, booking.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for patient confirm, got %v", err)
	}

	confirmed, err := svc.Confirm(context.Background(), therapistUserID, models.RoleTherapist, booking.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	// Confirming twice is an invalid transition.
	if _, err := svc.Confirm(context.Background(), therapistUserID, models.RoleTherapist, booking.ID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	completed, err := svc.Complete(context.Background(), therapistUserID, models.RoleTherapist, booking.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != models.BookingStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	// Completed is terminal.
	if _, err := svc.Cancel(context.Background(), patient, models.RolePatient, booking.ID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition cancelling a completed booking, got %v", err)
	}
}

func TestTransitionUnknownBooking(t *testing.T) {
	svc, _, _, _ := newBookingFixture()

	_, err := svc.Confirm(context.Background(), primitive.NewObjectID(), models.RoleAdmin, primitive.NewObjectID())
	if err != ErrBookingNotFound {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	svc, store, profileID, therapistUserID := newBookingFixture()
	patientA := primitive.NewObjectID()
	patientB := primitive.NewObjectID()

	for i, p := range []primitive.ObjectID{patientA, patientB} {
		_, err := svc.Create(context.Background(), p, CreateBookingInput{
			TherapistID:     profileID.Hex(),
			AppointmentDate: "2025-06-10",
			AppointmentTime: []string{"10:00", "11:00"}[i],
			SessionType:     "video",
		})
		if err != nil {
			t.Fatalf("seed booking %d: %v", i, err)
		}
	}

	own, total, err := svc.List(context.Background(), patientA, models.RolePatient, "", 1, 20)
	if err != nil {
		t.Fatalf("patient list: %v", err)
	}
	if total != 1 || len(own) != 1 || own[0].PatientID != patientA {
		t.Fatalf("patient must only see their own bookings")
	}

	assigned, total, err := svc.List(context.Background(), therapistUserID, models.RoleTherapist, "", 1, 20)
	if err != nil {
		t.Fatalf("therapist list: %v", err)
	}
	if total != 2 || len(assigned) != 2 {
		t.Fatalf("therapist must see all assigned bookings, got %d", len(assigned))
	}
	if store.activeCount() != 2 {
		t.Fatalf("expected 2 active bookings, got %d", store.activeCount())
	}
}
