package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CaseFirstRespondedHandler handles CaseFirstRespondedEvent and stamps
// the first-response time onto the tracking record
type CaseFirstRespondedHandler struct {
	service *SlaService
	logger  *zap.Logger
}

// NewCaseFirstRespondedHandler creates a new handler for first response events
func NewCaseFirstRespondedHandler(service *SlaService, logger *zap.Logger) *CaseFirstRespondedHandler {
	return &CaseFirstRespondedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CaseFirstRespondedHandler) EventTypes() []string {
	return []string{dispute.EventTypeCaseFirstResponded}
}

// Handle processes a CaseFirstRespondedEvent
func (h *CaseFirstRespondedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	respondedEvent, ok := event.(*dispute.CaseFirstRespondedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			dispute.EventTypeCaseFirstResponded, event.EventType())
	}

	record, err := h.service.trackingRepo.FindByCase(ctx, respondedEvent.CaseID)
	if err != nil {
		h.logger.Error("no tracking record for responded case",
			zap.String("case_number", respondedEvent.CaseNumber),
			zap.Error(err),
		)
		return err
	}

	now := time.Now()
	record.RecordFirstResponse(event.OccurredAt())
	record.Evaluate(now)

	if err := h.service.trackingRepo.SaveWithLock(ctx, record); err != nil {
		return err
	}

	h.logger.Info("first response recorded",
		zap.String("case_number", respondedEvent.CaseNumber),
		zap.Bool("first_response_breach", record.IsFirstResponseBreach),
	)
	return nil
}

// CaseClosedHandler handles CaseClosedEvent: the resolution timestamp is
// recorded and the final breach flags are settled
type CaseClosedHandler struct {
	service *SlaService
	logger  *zap.Logger
}

// NewCaseClosedHandler creates a new handler for case closed events
func NewCaseClosedHandler(service *SlaService, logger *zap.Logger) *CaseClosedHandler {
	return &CaseClosedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CaseClosedHandler) EventTypes() []string {
	return []string{dispute.EventTypeCaseClosed}
}

// Handle processes a CaseClosedEvent
func (h *CaseClosedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closedEvent, ok := event.(*dispute.CaseClosedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			dispute.EventTypeCaseClosed, event.EventType())
	}

	record, err := h.service.trackingRepo.FindByCase(ctx, closedEvent.CaseID)
	if err != nil {
		h.logger.Error("no tracking record for closed case",
			zap.String("case_number", closedEvent.CaseNumber),
			zap.Error(err),
		)
		return err
	}

	record.RecordResolution(event.OccurredAt())
	record.Evaluate(time.Now())

	if err := h.service.trackingRepo.SaveWithLock(ctx, record); err != nil {
		return err
	}

	h.logger.Info("case resolution recorded",
		zap.String("case_number", closedEvent.CaseNumber),
		zap.Bool("resolution_breach", record.IsResolutionBreach),
		zap.Bool("resolved_within_target", record.ResolvedWithinTarget()),
	)
	return nil
}

// Ensure handlers implement shared.EventHandler
var (
	_ shared.EventHandler = (*CaseFirstRespondedHandler)(nil)
	_ shared.EventHandler = (*CaseClosedHandler)(nil)
)
