package services

import (
	"context"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolvedTherapist is the canonical view of a therapist regardless of
// which historical representation the identifier pointed at. UserID is
// always the owning User id; bookings reference it exclusively.
type ResolvedTherapist struct {
	UserID             primitive.ObjectID
	ProfileID          *primitive.ObjectID // nil for legacy embedded profiles
	DisplayName        string
	Specializations    []string
	ConsultationFee    float64
	Currency           string
	WeeklyAvailability []models.DayAvailability
	IsApproved         bool
	Rating             float64
}

// TherapistStore is the subset of persistence the resolver needs.
// Lookups return (nil, nil) on a miss.
type TherapistStore interface {
	FindProfileByID(ctx context.Context, id primitive.ObjectID) (*models.TherapistProfile, error)
	FindProfileByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TherapistProfile, error)
	FindTherapistUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TherapistResolver reconciles the two historical representations of a
// therapist: a separate therapist_profiles document, or a legacy profile
// embedded directly on the user document.
type TherapistResolver struct {
	store TherapistStore
}

func NewTherapistResolver(store TherapistStore) *TherapistResolver {
	return &TherapistResolver{store: store}
}

// Resolve looks up a therapist by an identifier that may be either a
// TherapistProfile id or a legacy User id. A malformed identifier is a
// lookup miss, never a hard failure.
func (r *TherapistResolver) Resolve(ctx context.Context, id string) (*ResolvedTherapist, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrTherapistNotFound
	}

	profile, err := r.store.FindProfileByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return resolvedFromProfile(profile), nil
	}

	user, err := r.store.FindTherapistUserByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTherapistNotFound
	}

	// The id named a therapist user. Prefer the separate profile document
	// when one exists so both id shapes resolve to identical data.
	profile, err = r.store.FindProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return resolvedFromProfile(profile), nil
	}

	if user.TherapistProfile == nil {
		return nil, ErrTherapistNotFound
	}
	return resolvedFromLegacyUser(user), nil
}

func resolvedFromProfile(p *models.TherapistProfile) *ResolvedTherapist {
	profileID := p.ID
	return &ResolvedTherapist{
		UserID:             p.UserID,
		ProfileID:          &profileID,
		DisplayName:        p.DisplayName,
		Specializations:    p.Specializations,
		ConsultationFee:    p.ConsultationFee,
		Currency:           p.Currency,
		WeeklyAvailability: p.WeeklyAvailability,
		IsApproved:         p.IsApproved,
		Rating:             p.Rating,
	}
}

func resolvedFromLegacyUser(u *models.User) *ResolvedTherapist {
	embedded := u.TherapistProfile
	name := embedded.DisplayName
	if name == "" {
		name = u.Name
	}
	return &ResolvedTherapist{
		UserID:             u.ID,
		DisplayName:        name,
		Specializations:    embedded.Specializations,
		ConsultationFee:    embedded.ConsultationFee,
		Currency:           embedded.Currency,
		WeeklyAvailability: embedded.WeeklyAvailability,
		IsApproved:         embedded.IsApproved,
	}
}
