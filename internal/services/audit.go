package services

import (
	"log"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/models"
	"github.com/google/uuid"
)

// Violation types and actions
const (
	ViolationRateLimit = "rate_limit"
	ActionIPBlocked    = "ip_blocked"
)

// RecordAuditEvent appends an admin action to the Postgres audit trail.
func RecordAuditEvent(actorID, action, subjectType, subjectID, detail string) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO audit_events (id, actor_id, action, subject_type, subject_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), actorID, action, subjectType, subjectID, detail)
	return err
}

// RecordViolationAsync records a rate-limit violation without blocking the
// request path. Failures are logged and dropped; the block itself already
// happened in Redis.
func RecordViolationAsync(ipAddress, violationType, message, actionTaken string) {
	if database.PostgresDB == nil {
		return
	}
	go func() {
		_, err := database.PostgresDB.Exec(`
			INSERT INTO violations (id, ip_address, type, message, action_taken)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), ipAddress, violationType, message, actionTaken)
		if err != nil {
			log.Printf("failed to record violation for %s: %v", ipAddress, err)
		}
	}()
}

// ListViolations returns the most recent rate-limit violations for the
// admin dashboard.
func ListViolations(limit int) ([]models.Violation, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, ip_address, type, message, action_taken
		FROM violations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []models.Violation
	for rows.Next() {
		var v models.Violation
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.IPAddress, &v.Type, &v.Message, &v.ActionTaken); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
