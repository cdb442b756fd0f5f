package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetPendingTherapists returns all therapist profiles awaiting review.
func GetPendingTherapists(w http.ResponseWriter, r *http.Request) {
	listProfilesByApproval(w, r, false)
}

// GetApprovedTherapists returns all approved therapist profiles.
func GetApprovedTherapists(w http.ResponseWriter, r *http.Request) {
	listProfilesByApproval(w, r, true)
}

func listProfilesByApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection(services.TherapistProfilesCollection).
		Find(ctx, bson.M{"is_approved": approved}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch therapists: "+err.Error())
		return
	}
	defer cursor.Close(ctx)

	var profiles []models.TherapistProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode therapists: "+err.Error())
		return
	}
	if profiles == nil {
		profiles = []models.TherapistProfile{}
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"therapists": profiles,
		"count":      len(profiles),
	})
}

// ApproveTherapist approves a therapist profile by ID.
func ApproveTherapist(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	profileID := r.URL.Query().Get("id")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "Therapist ID is required")
		return
	}
	objectID, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid therapist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := database.DB.Collection(services.TherapistProfilesCollection).UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"is_approved": true, "is_verified": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to approve therapist: "+err.Error())
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}

	directoryCache.InvalidateTherapistDirectory()
	if err := services.RecordAuditEvent(admin.ID.Hex(), "therapist_approved", "therapist_profile", profileID, ""); err != nil {
		log.Printf("failed to record approval audit event: %v", err)
	}

	writeData(w, http.StatusOK, map[string]interface{}{"message": "Therapist approved"})
}

// RejectTherapist removes a therapist application. The user account stays;
// only the profile application document is dropped so they can reapply.
func RejectTherapist(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	profileID := r.URL.Query().Get("id")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "Therapist ID is required")
		return
	}
	objectID, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid therapist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := database.DB.Collection(services.TherapistProfilesCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reject therapist: "+err.Error())
		return
	}
	if result.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}

	directoryCache.InvalidateTherapistDirectory()
	if err := services.RecordAuditEvent(admin.ID.Hex(), "therapist_rejected", "therapist_profile", profileID, ""); err != nil {
		log.Printf("failed to record rejection audit event: %v", err)
	}

	writeData(w, http.StatusOK, map[string]interface{}{"message": "Therapist application rejected"})
}

// GetViolations returns recent rate-limit violations from the audit store.
func GetViolations(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 100)

	violations, err := services.ListViolations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch violations: "+err.Error())
		return
	}
	if violations == nil {
		violations = []models.Violation{}
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"violations": violations,
		"count":      len(violations),
	})
}

// UnblockIP lifts a temporary rate-limit block.
func UnblockIP(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "IP address is required")
		return
	}

	if err := middleware.UnblockIP(ip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to unblock IP: "+err.Error())
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"message": "IP unblocked"})
}
