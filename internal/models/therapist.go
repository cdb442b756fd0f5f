package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeSlot is a single bookable time label within a day schedule.
// Time labels are zero-padded HH:MM so lexicographic order matches
// chronological order.
type TimeSlot struct {
	Time      string `bson:"time" json:"time"`
	Available bool   `bson:"available" json:"available"`
}

// DayAvailability is one entry of a therapist's weekly schedule.
type DayAvailability struct {
	Day   string     `bson:"day" json:"day"` // weekday name, e.g. "Monday"
	Slots []TimeSlot `bson:"slots" json:"slots"`
}

// TherapistProfile is the current (non-legacy) professional record,
// one-to-one with a User of role "therapist" via UserID.
type TherapistProfile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	DisplayName        string            `bson:"display_name" json:"display_name"`
	Specializations    []string          `bson:"specializations,omitempty" json:"specializations,omitempty"`
	ConsultationFee    float64           `bson:"consultation_fee" json:"consultation_fee"`
	Currency           string            `bson:"currency,omitempty" json:"currency,omitempty"`
	WeeklyAvailability []DayAvailability `bson:"weekly_availability,omitempty" json:"weekly_availability,omitempty"`

	// License and professional info
	LicenseNumber     string `bson:"license_number" json:"license_number"`
	LicenseState      string `bson:"license_state,omitempty" json:"license_state,omitempty"`
	YearsOfExperience int    `bson:"years_of_experience" json:"years_of_experience"`
	Bio               string `bson:"bio,omitempty" json:"bio,omitempty"`

	// Verification document URLs (uploaded separately)
	LicenseDocumentURL string `bson:"license_document_url,omitempty" json:"license_document_url,omitempty"`
	DegreeDocumentURL  string `bson:"degree_document_url,omitempty" json:"degree_document_url,omitempty"`

	// Review status
	IsApproved bool `bson:"is_approved" json:"is_approved"`
	IsVerified bool `bson:"is_verified" json:"is_verified"`

	// Rating aggregate
	Rating      float64 `bson:"rating" json:"rating"`
	RatingCount int     `bson:"rating_count" json:"rating_count"`
}
