package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses. pending → confirmed → completed, or cancelled.
// completed and cancelled are terminal; bookings are never deleted.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusRefund  = "refunded"
)

// ActiveBookingStatuses are the statuses that count against availability.
var ActiveBookingStatuses = []string{BookingStatusPending, BookingStatusConfirmed}

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	PatientID primitive.ObjectID `bson:"patient_id" json:"patient_id"`
	// TherapistID is always the owning User id, even when the request
	// supplied a TherapistProfile id.
	TherapistID primitive.ObjectID `bson:"therapist_id" json:"therapist_id"`

	// AppointmentDate is normalized to UTC midnight. Older documents
	// stored only the YYYY-MM-DD string; the label is still written and
	// matched on read for backward compatibility.
	AppointmentDate      time.Time `bson:"appointment_date" json:"appointment_date"`
	AppointmentDateLabel string    `bson:"appointment_date_label" json:"appointment_date_label"`
	AppointmentTime      string    `bson:"appointment_time" json:"appointment_time"` // HH:MM label

	SessionType   string  `bson:"session_type" json:"session_type"` // video, audio, in-person
	Status        string  `bson:"status" json:"status"`
	PaymentStatus string  `bson:"payment_status" json:"payment_status"`
	TotalAmount   float64 `bson:"total_amount" json:"total_amount"` // fee at booking time, not re-derived
	Currency      string  `bson:"currency,omitempty" json:"currency,omitempty"`
	Notes         string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IsActive reports whether the booking counts against availability.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
