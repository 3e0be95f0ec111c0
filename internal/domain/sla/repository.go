package sla

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConfigurationRepository defines the interface for SLA configuration
// persistence
type ConfigurationRepository interface {
	// FindByID finds a configuration by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Configuration, error)

	// FindAllActive returns every configuration effective at the given time
	FindAllActive(ctx context.Context, now time.Time) ([]Configuration, error)

	// Save creates or updates a configuration
	Save(ctx context.Context, c *Configuration) error

	// Deactivate marks a configuration inactive
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// TrackingRepository defines the interface for SLA tracking records
type TrackingRepository interface {
	// FindByCase finds the record paired with a case
	FindByCase(ctx context.Context, caseID uuid.UUID) (*TrackingRecord, error)

	// FindByStoreAndRange finds records for cases created inside [from, to)
	FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]TrackingRecord, error)

	// FindUnresolved returns records without a resolution timestamp,
	// paged by cursor for the sweep. Records are ordered by ID so an
	// interrupted sweep resumes without skipping or repeating records.
	FindUnresolved(ctx context.Context, afterID uuid.UUID, limit int) ([]TrackingRecord, error)

	// FindBreachedUnresolved returns records with a breach flag set and no
	// resolution yet, the worklist behind the breached-open-cases view
	FindBreachedUnresolved(ctx context.Context, storeID *uuid.UUID, limit int) ([]TrackingRecord, error)

	// Save creates or updates a record
	Save(ctx context.Context, r *TrackingRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, r *TrackingRecord) error
}
