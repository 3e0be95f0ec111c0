package sla

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/sla"
	"github.com/shopspring/decimal"
)

// CreateConfigurationRequest creates an SLA configuration
type CreateConfigurationRequest struct {
	Name                  string     `json:"name" binding:"required"`
	CaseType              *string    `json:"case_type"`
	Category              *string    `json:"category"`
	ResponseTargetHours   int        `json:"response_target_hours" binding:"required"`
	ResolutionTargetHours int        `json:"resolution_target_hours" binding:"required"`
	Priority              int        `json:"priority"`
	EffectiveFrom         *time.Time `json:"effective_from"`
	EffectiveTo           *time.Time `json:"effective_to"`
}

// ConfigurationResponse represents an SLA configuration in API responses
type ConfigurationResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	CaseType              *string    `json:"case_type,omitempty"`
	Category              *string    `json:"category,omitempty"`
	ResponseTargetHours   int        `json:"response_target_hours"`
	ResolutionTargetHours int        `json:"resolution_target_hours"`
	Priority              int        `json:"priority"`
	Active                bool       `json:"active"`
	EffectiveFrom         time.Time  `json:"effective_from"`
	EffectiveTo           *time.Time `json:"effective_to,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// TrackingResponse represents an SLA tracking record in API responses
type TrackingResponse struct {
	ID                    uuid.UUID  `json:"id"`
	CaseID                uuid.UUID  `json:"case_id"`
	StoreID               uuid.UUID  `json:"store_id"`
	CaseCreatedAt         time.Time  `json:"case_created_at"`
	FirstResponseAt       *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	ResponseTargetHours   *int       `json:"response_target_hours"`
	ResolutionTargetHours *int       `json:"resolution_target_hours"`
	IsFirstResponseBreach bool       `json:"is_first_response_breach"`
	IsResolutionBreach    bool       `json:"is_resolution_breach"`
	ResolvedWithinTarget  bool       `json:"resolved_within_target"`
	LastEvaluatedAt       *time.Time `json:"last_evaluated_at,omitempty"`
}

// StoreStatisticsResponse represents per-store SLA statistics
type StoreStatisticsResponse struct {
	StoreID               uuid.UUID       `json:"store_id"`
	From                  time.Time       `json:"from"`
	To                    time.Time       `json:"to"`
	TotalCases            int             `json:"total_cases"`
	ResolvedWithinSla     int             `json:"resolved_within_sla"`
	FirstResponseBreaches int             `json:"first_response_breaches"`
	ResolutionBreaches    int             `json:"resolution_breaches"`
	AvgResponseHours      decimal.Decimal `json:"avg_response_hours"`
	AvgResolutionHours    decimal.Decimal `json:"avg_resolution_hours"`
}

// SweepResult summarizes one evaluation sweep
type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Changed   int `json:"changed"`
	Conflicts int `json:"conflicts"`
}

// ToConfigurationResponse converts a domain Configuration to a DTO
func ToConfigurationResponse(c *sla.Configuration) ConfigurationResponse {
	var caseType *string
	if c.CaseType != nil {
		ct := string(*c.CaseType)
		caseType = &ct
	}
	return ConfigurationResponse{
		ID:                    c.ID,
		Name:                  c.Name,
		CaseType:              caseType,
		Category:              c.Category,
		ResponseTargetHours:   c.ResponseTargetHours,
		ResolutionTargetHours: c.ResolutionTargetHours,
		Priority:              c.Priority,
		Active:                c.Active,
		EffectiveFrom:         c.EffectiveFrom,
		EffectiveTo:           c.EffectiveTo,
		CreatedAt:             c.CreatedAt,
	}
}

// ToTrackingResponse converts a domain TrackingRecord to a DTO
func ToTrackingResponse(r *sla.TrackingRecord) TrackingResponse {
	return TrackingResponse{
		ID:                    r.ID,
		CaseID:                r.CaseID,
		StoreID:               r.StoreID,
		CaseCreatedAt:         r.CaseCreatedAt,
		FirstResponseAt:       r.FirstResponseAt,
		ResolvedAt:            r.ResolvedAt,
		ResponseTargetHours:   r.ResponseTargetHours,
		ResolutionTargetHours: r.ResolutionTargetHours,
		IsFirstResponseBreach: r.IsFirstResponseBreach,
		IsResolutionBreach:    r.IsResolutionBreach,
		ResolvedWithinTarget:  r.ResolvedWithinTarget(),
		LastEvaluatedAt:       r.LastEvaluatedAt,
	}
}

// ToTrackingResponses converts a slice of tracking records
func ToTrackingResponses(records []sla.TrackingRecord) []TrackingResponse {
	responses := make([]TrackingResponse, len(records))
	for i := range records {
		responses[i] = ToTrackingResponse(&records[i])
	}
	return responses
}

// ToStoreStatisticsResponse converts domain statistics to a DTO
func ToStoreStatisticsResponse(stats sla.StoreStatistics) StoreStatisticsResponse {
	return StoreStatisticsResponse{
		StoreID:               stats.StoreID,
		From:                  stats.From,
		To:                    stats.To,
		TotalCases:            stats.TotalCases,
		ResolvedWithinSla:     stats.ResolvedWithinSla,
		FirstResponseBreaches: stats.FirstResponseBreaches,
		ResolutionBreaches:    stats.ResolutionBreaches,
		AvgResponseHours:      stats.AvgResponseHours,
		AvgResolutionHours:    stats.AvgResolutionHours,
	}
}
