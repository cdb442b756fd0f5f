package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to the PostgreSQL audit store.
// MongoDB holds all domain entities; Postgres only keeps operational
// records admins query (review audit trail, rate-limit violations).
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	return InitPostgresTables()
}

// InitPostgresTables creates the audit tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Admin review actions (therapist approve/reject and similar)
		`CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			actor_id VARCHAR(64) NOT NULL,
			action VARCHAR(50) NOT NULL,
			subject_type VARCHAR(50) NOT NULL,
			subject_id VARCHAR(64) NOT NULL,
			detail TEXT
		)`,

		// Rate-limit violations recorded for admin visibility
		`CREATE TABLE IF NOT EXISTS violations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			ip_address VARCHAR(255) NOT NULL,
			type VARCHAR(50) NOT NULL,
			message TEXT NOT NULL,
			action_taken VARCHAR(50) NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
