package sla

import (
	"time"

	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Configuration defines response and resolution targets for cases.
// CaseType and Category are optional filters; a configuration with both
// unset is the global default.
type Configuration struct {
	shared.BaseEntity
	Name                  string            `gorm:"type:varchar(100);not null"`
	CaseType              *dispute.CaseType `gorm:"type:varchar(20);index"`
	Category              *string           `gorm:"type:varchar(100);index"`
	ResponseTargetHours   int               `gorm:"not null"`
	ResolutionTargetHours int               `gorm:"not null"`
	Priority              int               `gorm:"not null;default:100"` // lower number = higher precedence
	Active                bool              `gorm:"not null;default:true;index"`
	EffectiveFrom         time.Time         `gorm:"not null"`
	EffectiveTo           *time.Time
}

// TableName returns the table name for GORM
func (Configuration) TableName() string {
	return "sla_configurations"
}

// NewConfiguration creates a new SLA configuration
func NewConfiguration(name string, caseType *dispute.CaseType, category *string, responseHours, resolutionHours, priority int, effectiveFrom time.Time) (*Configuration, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Configuration name cannot be empty")
	}
	if responseHours <= 0 || resolutionHours <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SLA targets must be positive hours")
	}
	if caseType != nil && !caseType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown case type filter")
	}

	return &Configuration{
		BaseEntity:            shared.NewBaseEntity(),
		Name:                  name,
		CaseType:              caseType,
		Category:              category,
		ResponseTargetHours:   responseHours,
		ResolutionTargetHours: resolutionHours,
		Priority:              priority,
		Active:                true,
		EffectiveFrom:         effectiveFrom,
	}, nil
}

// IsEffective reports whether the configuration is active at the given time
func (c *Configuration) IsEffective(now time.Time) bool {
	if !c.Active {
		return false
	}
	if now.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveTo != nil && !now.Before(*c.EffectiveTo) {
		return false
	}
	return true
}

// matchTier classifies how a configuration matches a (caseType, category)
// pair. Lower tier = more specific match; -1 = no match.
func (c *Configuration) matchTier(caseType dispute.CaseType, category string) int {
	typeSet := c.CaseType != nil
	catSet := c.Category != nil

	typeMatches := typeSet && *c.CaseType == caseType
	catMatches := catSet && category != "" && *c.Category == category

	switch {
	case typeSet && catSet:
		if typeMatches && catMatches {
			return 0 // exact match on both
		}
	case typeSet:
		if typeMatches {
			return 1 // case type only
		}
	case catSet:
		if catMatches {
			return 2 // category only
		}
	default:
		return 3 // global default
	}
	return -1
}

// ResolveConfiguration picks the applicable configuration for a case.
// Cascade: exact (caseType, category) match, then caseType-only, then
// category-only, then the global default. Within a tier the lowest
// Priority wins; ties break by the most recently effective configuration.
// Returns nil when nothing matches; callers treat that as the soft
// CONFIGURATION_MISSING condition and defer breach computation.
func ResolveConfiguration(configs []Configuration, caseType dispute.CaseType, category string, now time.Time) *Configuration {
	var best *Configuration
	bestTier := -1

	for i := range configs {
		c := &configs[i]
		if !c.IsEffective(now) {
			continue
		}
		tier := c.matchTier(caseType, category)
		if tier < 0 {
			continue
		}
		if best == nil || tier < bestTier {
			best = c
			bestTier = tier
			continue
		}
		if tier > bestTier {
			continue
		}
		if c.Priority < best.Priority {
			best = c
			continue
		}
		if c.Priority == best.Priority && c.EffectiveFrom.After(best.EffectiveFrom) {
			best = c
		}
	}

	return best
}
