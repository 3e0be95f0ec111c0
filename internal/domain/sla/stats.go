package sla

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreStatistics aggregates SLA compliance for one store over a range
type StoreStatistics struct {
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

// ComputeStoreStatistics aggregates tracking records for one store.
// Averages cover only records with the respective timestamp recorded,
// so pending cases never skew the denominator; results are rounded to
// two decimals.
func ComputeStoreStatistics(storeID uuid.UUID, from, to time.Time, records []TrackingRecord, now time.Time) StoreStatistics {
	stats := StoreStatistics{
		StoreID:            storeID,
		From:               from,
		To:                 to,
		AvgResponseHours:   decimal.Zero,
		AvgResolutionHours: decimal.Zero,
	}

	responseSum := decimal.Zero
	responseCount := 0
	resolutionSum := decimal.Zero
	resolutionCount := 0

	for i := range records {
		r := &records[i]
		stats.TotalCases++

		flags := ComputeBreach(now, r)
		if flags.FirstResponse {
			stats.FirstResponseBreaches++
		}
		if flags.Resolution {
			stats.ResolutionBreaches++
		}
		if r.ResolvedWithinTarget() {
			stats.ResolvedWithinSla++
		}

		if r.FirstResponseAt != nil {
			hours := r.FirstResponseAt.Sub(r.CaseCreatedAt).Hours()
			responseSum = responseSum.Add(decimal.NewFromFloat(hours))
			responseCount++
		}
		if r.ResolvedAt != nil {
			hours := r.ResolvedAt.Sub(r.CaseCreatedAt).Hours()
			resolutionSum = resolutionSum.Add(decimal.NewFromFloat(hours))
			resolutionCount++
		}
	}

	if responseCount > 0 {
		stats.AvgResponseHours = responseSum.Div(decimal.NewFromInt(int64(responseCount))).Round(2)
	}
	if resolutionCount > 0 {
		stats.AvgResolutionHours = resolutionSum.Div(decimal.NewFromInt(int64(resolutionCount))).Round(2)
	}

	return stats
}
