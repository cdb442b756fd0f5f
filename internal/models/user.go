package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"
	RoleAdmin     = "admin"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"` // stored lowercased, unique
	Password string `bson:"password" json:"-"`  // Don't return password in JSON
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`

	Role       string     `bson:"role" json:"role"`
	IsActive   bool       `bson:"is_active" json:"is_active"`
	IsVerified bool       `bson:"is_verified" json:"is_verified"`
	LastLogin  *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`

	// Legacy shape: older therapist accounts carry their professional
	// profile embedded on the user document instead of a separate
	// therapist_profiles document. Resolution must check both.
	TherapistProfile *EmbeddedTherapistProfile `bson:"therapist_profile,omitempty" json:"therapist_profile,omitempty"`
}

// EmbeddedTherapistProfile is the legacy embedded representation of a
// therapist's professional data on the user document.
type EmbeddedTherapistProfile struct {
	DisplayName        string            `bson:"display_name" json:"display_name"`
	Specializations    []string          `bson:"specializations,omitempty" json:"specializations,omitempty"`
	ConsultationFee    float64           `bson:"consultation_fee" json:"consultation_fee"`
	Currency           string            `bson:"currency,omitempty" json:"currency,omitempty"`
	WeeklyAvailability []DayAvailability `bson:"weekly_availability,omitempty" json:"weekly_availability,omitempty"`
	IsApproved         bool              `bson:"is_approved" json:"is_approved"`
}
