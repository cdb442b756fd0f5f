package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OnboardingRequest struct {
	DisplayName        string                   `json:"display_name"`
	Specializations    []string                 `json:"specializations,omitempty"`
	ConsultationFee    float64                  `json:"consultation_fee"`
	Currency           string                   `json:"currency,omitempty"`
	WeeklyAvailability []models.DayAvailability `json:"weekly_availability,omitempty"`
	LicenseNumber      string                   `json:"license_number"`
	LicenseState       string                   `json:"license_state,omitempty"`
	YearsOfExperience  int                      `json:"years_of_experience"`
	Bio                string                   `json:"bio,omitempty"`
	LicenseDocumentURL string                   `json:"license_document_url,omitempty"`
	DegreeDocumentURL  string                   `json:"degree_document_url,omitempty"`
}

var weekdayNames = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// SubmitOnboarding creates or re-submits the therapist's professional
// profile. At most one profile exists per user; a re-submission replaces
// the previous one and goes back to pending review.
func SubmitOnboarding(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DisplayName == "" || req.LicenseNumber == "" {
		writeError(w, http.StatusBadRequest, "display_name and license_number are required")
		return
	}
	if req.ConsultationFee < 0 {
		writeError(w, http.StatusBadRequest, "consultation_fee cannot be negative")
		return
	}
	for _, day := range req.WeeklyAvailability {
		if !weekdayNames[day.Day] {
			writeError(w, http.StatusBadRequest, "Invalid weekday in availability: "+day.Day)
			return
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	now := time.Now().UTC()
	set := bson.M{
		"user_id":              user.ID,
		"updated_at":           now,
		"display_name":         req.DisplayName,
		"specializations":      req.Specializations,
		"consultation_fee":     req.ConsultationFee,
		"currency":             currency,
		"weekly_availability":  req.WeeklyAvailability,
		"license_number":       req.LicenseNumber,
		"license_state":        req.LicenseState,
		"years_of_experience":  req.YearsOfExperience,
		"bio":                  req.Bio,
		"license_document_url": req.LicenseDocumentURL,
		"degree_document_url":  req.DegreeDocumentURL,
		// Every (re-)submission goes back into the review queue.
		"is_approved": false,
		"is_verified": false,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	col := database.DB.Collection(services.TherapistProfilesCollection)
	result, err := col.UpdateOne(ctx,
		bson.M{"user_id": user.ID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile: "+err.Error())
		return
	}

	var profile models.TherapistProfile
	if err := col.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved profile: "+err.Error())
		return
	}

	status := http.StatusOK
	if result.UpsertedCount > 0 {
		status = http.StatusCreated
	}
	writeData(w, status, map[string]interface{}{
		"profile": profile,
		"message": "Profile submitted for review",
	})
}

// GetOnboardingStatus tells a therapist where their application stands.
func GetOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var profile models.TherapistProfile
	err := database.DB.Collection(services.TherapistProfilesCollection).
		FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&profile)
	if err != nil {
		writeData(w, http.StatusOK, map[string]interface{}{
			"submitted": false,
			"message":   "No profile submitted yet",
		})
		return
	}

	message := "Your application is still pending approval."
	if profile.IsApproved {
		message = "Your application has been approved."
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"submitted":   true,
		"is_approved": profile.IsApproved,
		"message":     message,
		"profile":     profile,
	})
}
