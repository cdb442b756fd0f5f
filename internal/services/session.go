package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionData is what a validated bearer token resolves to.
type SessionData struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// CreateSession mints a bearer session token for a user and stores it in
// Redis. An existing session for the same user is invalidated first so the
// 7-day timer resets from the current login.
func CreateSession(userID primitive.ObjectID, role string) (string, error) {
	InvalidateUserSessions(userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	payload, err := json.Marshal(SessionData{UserID: userID.Hex(), Role: role})
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID.Hex()

	if err := database.RedisClient.Set(ctx, sessionKey, payload, SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks a bearer token and returns the session identity.
func ValidateSession(sessionToken string) (SessionData, bool, error) {
	if sessionToken == "" {
		return SessionData{}, false, nil
	}

	ctx := context.Background()
	raw, err := database.RedisClient.Get(ctx, SessionKeyPrefix+sessionToken).Result()
	if err != nil {
		// Expired or unknown token; not an error for the caller.
		return SessionData{}, false, nil
	}

	var data SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return SessionData{}, false, err
	}
	return data, true, nil
}

// InvalidateSession removes a session from Redis (sign-out).
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	raw, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && raw != "" {
		var data SessionData
		if json.Unmarshal([]byte(raw), &data) == nil && data.UserID != "" {
			database.RedisClient.Del(ctx, UserSessionKeyPrefix+data.UserID)
		}
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates the active session for a user
// (login replacement, password change, account deactivation).
func InvalidateUserSessions(userID primitive.ObjectID) error {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + userID.Hex()

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
