package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/theratreat/therabook-backend/internal/services"
	"github.com/theratreat/therabook-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"` // patient (default) or therapist
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
}

func signupRole(requested string) (string, bool) {
	switch requested {
	case "", models.RolePatient:
		return models.RolePatient, true
	case models.RoleTherapist:
		return models.RoleTherapist, true
	}
	// Admin accounts are created directly in the database, never via signup.
	return "", false
}

// Signup handles patient and therapist registration.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	role, ok := signupRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := database.DB.Collection(services.UsersCollection)

	// Check if user already exists
	err := users.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	}
	if err != mongo.ErrNoDocuments {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      req.Name,
		Email:     email,
		Password:  hashedPassword,
		Phone:     req.Phone,
		Role:      role,
		IsActive:  true,
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		// The unique email index can race with the existence check above.
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    publicUser(&user),
	})
}

// Signin handles login for all roles and mints a bearer session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := database.DB.Collection(services.UsersCollection)

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		// Same message for unknown email and bad password.
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	match, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "This account has been deactivated")
		return
	}

	token, err := services.CreateSession(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	now := time.Now().UTC()
	users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"last_login": now, "updated_at": now}})
	user.LastLogin = &now

	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Signed in successfully",
		User:    publicUser(&user),
		Token:   token,
	})
}

// Signout invalidates the caller's session token.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r.Header.Get("Authorization"))
	if token != "" {
		services.InvalidateSession(token)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// GetMe returns the authenticated user's account record.
func GetMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection(services.UsersCollection).FindOne(ctx, bson.M{"_id": authUser.ID}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"user": publicUser(&user)})
}

func publicUser(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          u.ID.Hex(),
		"name":        u.Name,
		"email":       u.Email,
		"phone":       u.Phone,
		"role":        u.Role,
		"is_active":   u.IsActive,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
	}
}
