package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var directoryCache = &services.CacheService{}

// GetTherapistAvailability returns the ordered slot availability for one
// therapist on one date. The identifier may be a TherapistProfile id or a
// legacy User id.
func GetTherapistAvailability(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "id")
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "Date query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := availabilityService.ForDate(ctx, therapistID, dateStr)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		case errors.Is(err, services.ErrTherapistNotFound):
			writeError(w, http.StatusNotFound, "Therapist not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"availability": slots,
		"date":         dateStr,
		"therapistId":  therapistID,
	})
}

// GetTherapist returns the public detail of one therapist; both legacy and
// profile ids resolve.
func GetTherapist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resolved, err := therapistResolver.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrTherapistNotFound) {
			writeError(w, http.StatusNotFound, "Therapist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	detail := map[string]interface{}{
		"therapistId":     id,
		"userId":          resolved.UserID.Hex(),
		"displayName":     resolved.DisplayName,
		"specializations": resolved.Specializations,
		"consultationFee": resolved.ConsultationFee,
		"currency":        resolved.Currency,
		"isApproved":      resolved.IsApproved,
		"rating":          resolved.Rating,
	}
	if resolved.ProfileID != nil {
		detail["profileId"] = resolved.ProfileID.Hex()
	}

	writeData(w, http.StatusOK, detail)
}

// ListTherapists serves the public directory of approved therapists,
// cached in Redis and invalidated on admin review actions.
func ListTherapists(w http.ResponseWriter, r *http.Request) {
	specialization := r.URL.Query().Get("specialization")
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	cacheKey := services.DirectoryCacheKey(specialization, page, limit)
	var cached map[string]interface{}
	if hit, _ := directoryCache.Get(cacheKey, &cached); hit {
		writeData(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := bson.M{"is_approved": true}
	if specialization != "" {
		query["specializations"] = specialization
	}

	col := database.DB.Collection(services.TherapistProfilesCollection)

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch therapists: "+err.Error())
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
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

	list := make([]map[string]interface{}, len(profiles))
	for i, p := range profiles {
		list[i] = map[string]interface{}{
			"id":              p.ID.Hex(),
			"userId":          p.UserID.Hex(),
			"displayName":     p.DisplayName,
			"specializations": p.Specializations,
			"consultationFee": p.ConsultationFee,
			"currency":        p.Currency,
			"rating":          p.Rating,
			"ratingCount":     p.RatingCount,
			"bio":             p.Bio,
		}
	}

	payload := map[string]interface{}{
		"therapists": list,
		"pagination": paginationMeta(page, limit, total),
	}

	directoryCache.Set(cacheKey, payload, services.DirectoryCacheTTL)
	writeData(w, http.StatusOK, payload)
}

func parsePositiveInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func paginationMeta(page, limit int, total int64) map[string]interface{} {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return map[string]interface{}{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
