package sla

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// TrackingRecord pairs 1:1 with a case and carries the SLA targets
// snapshotted at case creation. Later configuration edits never change
// an open case's deadlines.
type TrackingRecord struct {
	shared.BaseAggregateRoot
	CaseID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	StoreID               uuid.UUID `gorm:"type:uuid;not null;index"`
	CaseCreatedAt         time.Time `gorm:"not null"`
	FirstResponseAt       *time.Time
	ResolvedAt            *time.Time `gorm:"index"`
	ResponseTargetHours   *int       // nil when no configuration existed at creation
	ResolutionTargetHours *int
	IsFirstResponseBreach bool `gorm:"not null;default:false;index"`
	IsResolutionBreach    bool `gorm:"not null;default:false;index"`
	LastEvaluatedAt       *time.Time
}

// TableName returns the table name for GORM
func (TrackingRecord) TableName() string {
	return "sla_tracking_records"
}

// NewTrackingRecord creates the tracking record paired with a case.
// A nil config is the soft CONFIGURATION_MISSING condition: the record is
// still created and breach computation stays deferred until targets exist.
func NewTrackingRecord(caseID, storeID uuid.UUID, caseCreatedAt time.Time, config *Configuration) (*TrackingRecord, error) {
	if caseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Case ID cannot be empty")
	}

	r := &TrackingRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CaseID:            caseID,
		StoreID:           storeID,
		CaseCreatedAt:     caseCreatedAt,
	}
	if config != nil {
		response := config.ResponseTargetHours
		resolution := config.ResolutionTargetHours
		r.ResponseTargetHours = &response
		r.ResolutionTargetHours = &resolution
	}

	return r, nil
}

// HasTargets reports whether breach computation is possible
func (r *TrackingRecord) HasTargets() bool {
	return r.ResponseTargetHours != nil && r.ResolutionTargetHours != nil
}

// RecordFirstResponse stores the first-response timestamp once.
// Subsequent calls are no-ops: only the first entry into review counts.
func (r *TrackingRecord) RecordFirstResponse(at time.Time) {
	if r.FirstResponseAt != nil {
		return
	}
	r.FirstResponseAt = &at
	r.UpdatedAt = time.Now()
}

// RecordResolution stores the resolution timestamp once
func (r *TrackingRecord) RecordResolution(at time.Time) {
	if r.ResolvedAt != nil {
		return
	}
	r.ResolvedAt = &at
	r.UpdatedAt = time.Now()
}

// IsResolved reports whether a resolution timestamp has been recorded
func (r *TrackingRecord) IsResolved() bool {
	return r.ResolvedAt != nil
}

// ResolvedWithinTarget reports whether the case was resolved inside its
// resolution target. False when unresolved or when no target exists.
func (r *TrackingRecord) ResolvedWithinTarget() bool {
	if r.ResolvedAt == nil || r.ResolutionTargetHours == nil {
		return false
	}
	deadline := r.CaseCreatedAt.Add(time.Duration(*r.ResolutionTargetHours) * time.Hour)
	return !r.ResolvedAt.After(deadline)
}

// BreachFlags is the result of a breach evaluation
type BreachFlags struct {
	FirstResponse bool
	Resolution    bool
}

// ComputeBreach evaluates both breach flags as a pure function of the
// record's timestamps and the supplied clock. It is deterministic and
// idempotent, which makes sweep reprocessing replay-safe, and monotonic:
// for a fixed FirstResponseAt and a non-decreasing now, a true flag can
// never flip back to false.
func ComputeBreach(now time.Time, r *TrackingRecord) BreachFlags {
	var flags BreachFlags
	if r.ResponseTargetHours != nil {
		deadline := r.CaseCreatedAt.Add(time.Duration(*r.ResponseTargetHours) * time.Hour)
		if r.FirstResponseAt != nil {
			flags.FirstResponse = r.FirstResponseAt.After(deadline)
		} else {
			flags.FirstResponse = now.After(deadline)
		}
	}
	if r.ResolutionTargetHours != nil {
		deadline := r.CaseCreatedAt.Add(time.Duration(*r.ResolutionTargetHours) * time.Hour)
		if r.ResolvedAt != nil {
			flags.Resolution = r.ResolvedAt.After(deadline)
		} else {
			flags.Resolution = now.After(deadline)
		}
	}
	return flags
}

// Evaluate recomputes and stores the breach flags. Returns true when
// either flag changed, so sweep callers can skip redundant writes.
func (r *TrackingRecord) Evaluate(now time.Time) bool {
	flags := ComputeBreach(now, r)
	changed := flags.FirstResponse != r.IsFirstResponseBreach || flags.Resolution != r.IsResolutionBreach

	r.IsFirstResponseBreach = flags.FirstResponse
	r.IsResolutionBreach = flags.Resolution
	r.LastEvaluatedAt = &now
	if changed {
		r.UpdatedAt = now
	}

	return changed
}
