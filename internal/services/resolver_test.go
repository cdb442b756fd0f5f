package services

import (
	"context"
	"testing"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubTherapistStore struct {
	profiles map[primitive.ObjectID]*models.TherapistProfile
	users    map[primitive.ObjectID]*models.User
	calls    int
}

func (s *stubTherapistStore) FindProfileByID(_ context.Context, id primitive.ObjectID) (*models.TherapistProfile, error) {
	s.calls++
	return s.profiles[id], nil
}

func (s *stubTherapistStore) FindProfileByUserID(_ context.Context, userID primitive.ObjectID) (*models.TherapistProfile, error) {
	s.calls++
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *stubTherapistStore) FindTherapistUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok || u.Role != models.RoleTherapist {
		return nil, nil
	}
	return u, nil
}

func TestResolveByProfileID(t *testing.T) {
	profileID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	store := &stubTherapistStore{
		profiles: map[primitive.ObjectID]*models.TherapistProfile{
			profileID: {ID: profileID, UserID: userID, DisplayName: "Dr. Mehta", ConsultationFee: 1500, Currency: "INR"},
		},
	}

	resolved, err := NewTherapistResolver(store).Resolve(context.Background(), profileID.Hex())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.UserID != userID {
		t.Fatalf("expected owning user %s, got %s", userID.Hex(), resolved.UserID.Hex())
	}
	if resolved.ProfileID == nil || *resolved.ProfileID != profileID {
		t.Fatalf("expected profile id %s", profileID.Hex())
	}
	if resolved.ConsultationFee != 1500 {
		t.Fatalf("expected fee 1500, got %v", resolved.ConsultationFee)
	}
}

func TestResolveLegacyEmbeddedProfile(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &stubTherapistStore{
		users: map[primitive.ObjectID]*models.User{
			userID: {
				ID:   userID,
				Name: "Asha Rao",
				Role: models.RoleTherapist,
				TherapistProfile: &models.EmbeddedTherapistProfile{
					ConsultationFee: 900,
					IsApproved:      true,
				},
			},
		},
	}

	resolved, err := NewTherapistResolver(store).Resolve(context.Background(), userID.Hex())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.UserID != userID {
		t.Fatalf("expected owning user %s, got %s", userID.Hex(), resolved.UserID.Hex())
	}
	if resolved.ProfileID != nil {
		t.Fatalf("legacy resolution should not carry a profile id")
	}
	// Embedded profile without a display name falls back to the account name.
	if resolved.DisplayName != "Asha Rao" {
		t.Fatalf("expected display name fallback, got %q", resolved.DisplayName)
	}
}

func TestResolveIdempotentAcrossRepresentations(t *testing.T) {
	profileID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	store := &stubTherapistStore{
		profiles: map[primitive.ObjectID]*models.TherapistProfile{
			profileID: {ID: profileID, UserID: userID, DisplayName: "Dr. Mehta", ConsultationFee: 1200},
		},
		users: map[primitive.ObjectID]*models.User{
			userID: {ID: userID, Role: models.RoleTherapist},
		},
	}
	resolver := NewTherapistResolver(store)

	viaProfile, err := resolver.Resolve(context.Background(), profileID.Hex())
	if err != nil {
		t.Fatalf("resolve via profile id: %v", err)
	}
	viaUser, err := resolver.Resolve(context.Background(), userID.Hex())
	if err != nil {
		t.Fatalf("resolve via user id: %v", err)
	}

	if viaProfile.UserID != viaUser.UserID {
		t.Fatalf("owning user differs: %s vs %s", viaProfile.UserID.Hex(), viaUser.UserID.Hex())
	}
	if viaProfile.ConsultationFee != viaUser.ConsultationFee {
		t.Fatalf("fee differs across representations: %v vs %v", viaProfile.ConsultationFee, viaUser.ConsultationFee)
	}
}

func TestResolveMalformedIDIsNotFound(t *testing.T) {
	store := &stubTherapistStore{}

	_, err := NewTherapistResolver(store).Resolve(context.Background(), "not-an-object-id")
	if err != ErrTherapistNotFound {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("malformed id must not hit the store, got %d calls", store.calls)
	}
}

func TestResolveUnknownIDIsNotFound(t *testing.T) {
	store := &stubTherapistStore{}

	_, err := NewTherapistResolver(store).Resolve(context.Background(), primitive.NewObjectID().Hex())
	if err != ErrTherapistNotFound {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}
}

func TestResolveTherapistUserWithoutAnyProfileIsNotFound(t *testing.T) {
	userID := primitive.NewObjectID()
	store := &stubTherapistStore{
		users: map[primitive.ObjectID]*models.User{
			userID: {ID: userID, Role: models.RoleTherapist},
		},
	}

	_, err := NewTherapistResolver(store).Resolve(context.Background(), userID.Hex())
	if err != ErrTherapistNotFound {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}
}
