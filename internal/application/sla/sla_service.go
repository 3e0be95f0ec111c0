package sla

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/sla"
	"go.uber.org/zap"
)

// SlaService handles SLA configuration, tracking and compliance queries
type SlaService struct {
	configRepo   sla.ConfigurationRepository
	trackingRepo sla.TrackingRepository
	logger       *zap.Logger
}

// NewSlaService creates a new SlaService
func NewSlaService(
	configRepo sla.ConfigurationRepository,
	trackingRepo sla.TrackingRepository,
	logger *zap.Logger,
) *SlaService {
	return &SlaService{
		configRepo:   configRepo,
		trackingRepo: trackingRepo,
		logger:       logger,
	}
}

// CreateConfiguration creates an SLA configuration
func (s *SlaService) CreateConfiguration(ctx context.Context, req CreateConfigurationRequest) (*ConfigurationResponse, error) {
	var caseType *dispute.CaseType
	if req.CaseType != nil {
		ct := dispute.CaseType(*req.CaseType)
		caseType = &ct
	}

	effectiveFrom := time.Now()
	if req.EffectiveFrom != nil {
		effectiveFrom = *req.EffectiveFrom
	}

	config, err := sla.NewConfiguration(req.Name, caseType, req.Category,
		req.ResponseTargetHours, req.ResolutionTargetHours, req.Priority, effectiveFrom)
	if err != nil {
		return nil, err
	}
	config.EffectiveTo = req.EffectiveTo

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}

	response := ToConfigurationResponse(config)
	return &response, nil
}

// DeactivateConfiguration marks a configuration inactive. Targets already
// snapshotted onto tracking records stay in force.
func (s *SlaService) DeactivateConfiguration(ctx context.Context, id uuid.UUID) error {
	return s.configRepo.Deactivate(ctx, id)
}

// ListActiveConfigurations lists every configuration effective right now
func (s *SlaService) ListActiveConfigurations(ctx context.Context) ([]ConfigurationResponse, error) {
	configs, err := s.configRepo.FindAllActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	responses := make([]ConfigurationResponse, len(configs))
	for i := range configs {
		responses[i] = ToConfigurationResponse(&configs[i])
	}
	return responses, nil
}

// GetTrackingByCase retrieves the tracking record paired with a case
func (s *SlaService) GetTrackingByCase(ctx context.Context, caseID uuid.UUID) (*TrackingResponse, error) {
	record, err := s.trackingRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	response := ToTrackingResponse(record)
	return &response, nil
}

// GetStoreStatistics aggregates SLA compliance for a store over a range
func (s *SlaService) GetStoreStatistics(ctx context.Context, storeID uuid.UUID, from, to time.Time) (*StoreStatisticsResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Statistics range must end after it starts")
	}

	records, err := s.trackingRepo.FindByStoreAndRange(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}

	stats := sla.ComputeStoreStatistics(storeID, from, to, records, time.Now())
	response := ToStoreStatisticsResponse(stats)
	return &response, nil
}

// ListBreachedOpen lists breached tracking records whose cases are still
// unresolved, optionally narrowed to one store
func (s *SlaService) ListBreachedOpen(ctx context.Context, storeID *uuid.UUID, limit int) ([]TrackingResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	records, err := s.trackingRepo.FindBreachedUnresolved(ctx, storeID, limit)
	if err != nil {
		return nil, err
	}
	return ToTrackingResponses(records), nil
}

// RunSweep walks unresolved tracking records in ID-ordered pages and
// recomputes breach flags. Each record is saved individually under its
// own version check: a concurrent seller response losing the race is a
// skip, not a failure, and the next sweep picks the record up again.
func (s *SlaService) RunSweep(ctx context.Context, batchSize int) (*SweepResult, error) {
	if batchSize <= 0 {
		batchSize = 200
	}

	result := &SweepResult{}
	now := time.Now()
	cursor := uuid.Nil

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		records, err := s.trackingRepo.FindUnresolved(ctx, cursor, batchSize)
		if err != nil {
			return result, err
		}
		if len(records) == 0 {
			break
		}

		for i := range records {
			record := &records[i]
			cursor = record.ID
			result.Evaluated++

			if !record.Evaluate(now) {
				continue
			}

			if err := s.trackingRepo.SaveWithLock(ctx, record); err != nil {
				var derr *shared.DomainError
				if errors.As(err, &derr) && derr.Code == shared.ErrConcurrencyConflict.Code {
					result.Conflicts++
					s.logger.Debug("sweep lost a version race, record will be re-evaluated next round",
						zap.String("case_id", record.CaseID.String()),
					)
					continue
				}
				return result, err
			}
			result.Changed++
		}

		if len(records) < batchSize {
			break
		}
	}

	s.logger.Info("sla sweep completed",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("changed", result.Changed),
		zap.Int("conflicts", result.Conflicts),
	)

	return result, nil
}
