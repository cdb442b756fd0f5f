package models

import "time"

// AuditEvent is a Postgres-backed record of an admin review action.
type AuditEvent struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"` // e.g. therapist_approved, therapist_rejected
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	Detail      string    `json:"detail,omitempty"`
}

// Violation is a Postgres-backed record of a rate-limit violation.
type Violation struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	IPAddress   string    `json:"ip_address"`
	Type        string    `json:"type"` // e.g. rate_limit
	Message     string    `json:"message"`
	ActionTaken string    `json:"action_taken"` // e.g. ip_blocked
}
