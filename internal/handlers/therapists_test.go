package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAvailabilityAPI struct {
	calls int
	slots []services.AvailabilitySlot
	err   error
}

func (s *stubAvailabilityAPI) ForDate(_ context.Context, _, _ string) ([]services.AvailabilitySlot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.slots, nil
}

type stubResolverAPI struct {
	resolved *services.ResolvedTherapist
	err      error
}

func (s *stubResolverAPI) Resolve(_ context.Context, _ string) (*services.ResolvedTherapist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resolved, nil
}

func availabilityRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/api/therapists/{id}/availability", GetTherapistAvailability)
	router.Get("/api/therapists/{id}", GetTherapist)
	return router
}

func TestGetTherapistAvailabilityRequiresDate(t *testing.T) {
	stub := &stubAvailabilityAPI{}
	InitBookingHandlers(nil, stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/therapists/"+primitive.NewObjectID().Hex()+"/availability", nil)
	rec := httptest.NewRecorder()
	availabilityRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("missing date must not reach the service")
	}
}

func TestGetTherapistAvailabilityErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"bad date", services.ErrInvalidDate, http.StatusBadRequest},
		{"unknown therapist", services.ErrTherapistNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			InitBookingHandlers(nil, &stubAvailabilityAPI{err: tc.serviceErr}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/therapists/"+primitive.NewObjectID().Hex()+"/availability?date=2025-06-10", nil)
			rec := httptest.NewRecorder()
			availabilityRouter().ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestGetTherapistAvailabilityPayload(t *testing.T) {
	slots := []services.AvailabilitySlot{
		{Time: "09:00", Available: true},
		{Time: "10:00", Available: false},
	}
	InitBookingHandlers(nil, &stubAvailabilityAPI{slots: slots}, nil)

	id := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodGet, "/api/therapists/"+id+"/availability?date=2025-06-10", nil)
	rec := httptest.NewRecorder()
	availabilityRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Data["date"] != "2025-06-10" {
		t.Fatalf("expected date echoed back, got %v", env.Data["date"])
	}
	if env.Data["therapistId"] != id {
		t.Fatalf("expected therapistId echoed back, got %v", env.Data["therapistId"])
	}
	availability, ok := env.Data["availability"].([]interface{})
	if !ok || len(availability) != 2 {
		t.Fatalf("expected 2 availability slots, got %v", env.Data["availability"])
	}
}

func TestGetTherapistDetail(t *testing.T) {
	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()
	InitBookingHandlers(nil, nil, &stubResolverAPI{resolved: &services.ResolvedTherapist{
		UserID:          userID,
		ProfileID:       &profileID,
		DisplayName:     "Dr. Mehta",
		ConsultationFee: 1500,
		Currency:        "INR",
		IsApproved:      true,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/therapists/"+profileID.Hex(), nil)
	rec := httptest.NewRecorder()
	availabilityRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Data["userId"] != userID.Hex() {
		t.Fatalf("expected owning user id, got %v", env.Data["userId"])
	}
	if env.Data["profileId"] != profileID.Hex() {
		t.Fatalf("expected profile id, got %v", env.Data["profileId"])
	}
	if env.Data["displayName"] != "Dr. Mehta" {
		t.Fatalf("expected display name, got %v", env.Data["displayName"])
	}
}

func TestGetTherapistNotFound(t *testing.T) {
	InitBookingHandlers(nil, nil, &stubResolverAPI{err: services.ErrTherapistNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/therapists/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	availabilityRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
