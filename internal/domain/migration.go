package domain

import "time"

// MigrationStatus is the state of a schema migration.
type MigrationStatus string

const (
	// MigrationStatusPending marks a migration that has not been applied yet.
	MigrationStatusPending MigrationStatus = "pending"
	// MigrationStatusApplied marks a migration recorded in schema_migrations.
	MigrationStatusApplied MigrationStatus = "applied"
)

// Migration is a schema migration file and its application state.
type Migration struct {
	Version   string
	Name      string
	FilePath  string
	Status    MigrationStatus
	AppliedAt *time.Time
}
