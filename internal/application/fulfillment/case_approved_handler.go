package fulfillment

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CaseApprovedHandler handles CaseApprovedEvent and marks the sub-order
// REFUNDED when an approved return covers the full items total. Partial
// refunds leave the fulfillment status alone; the commission ledger
// carries the financial effect either way.
type CaseApprovedHandler struct {
	subOrderRepo fulfillment.SubOrderRepository
	logger       *zap.Logger
}

// NewCaseApprovedHandler creates a new handler for case approved events
func NewCaseApprovedHandler(subOrderRepo fulfillment.SubOrderRepository, logger *zap.Logger) *CaseApprovedHandler {
	return &CaseApprovedHandler{
		subOrderRepo: subOrderRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CaseApprovedHandler) EventTypes() []string {
	return []string{dispute.EventTypeCaseApproved}
}

// Handle processes a CaseApprovedEvent
func (h *CaseApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approvedEvent, ok := event.(*dispute.CaseApprovedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", dispute.EventTypeCaseApproved),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			dispute.EventTypeCaseApproved, event.EventType())
	}

	if approvedEvent.CaseType != dispute.CaseTypeReturn {
		return nil
	}

	so, err := h.subOrderRepo.FindByID(ctx, approvedEvent.SubOrderID)
	if err != nil {
		h.logger.Error("failed to load sub-order for approved case",
			zap.String("case_number", approvedEvent.CaseNumber),
			zap.String("sub_order_id", approvedEvent.SubOrderID.String()),
			zap.Error(err),
		)
		return err
	}

	if approvedEvent.RefundAmount.LessThan(so.ItemsTotal) {
		h.logger.Info("partial refund approved, sub-order status unchanged",
			zap.String("case_number", approvedEvent.CaseNumber),
			zap.String("sub_order_number", so.SubOrderNumber),
			zap.String("refund_amount", approvedEvent.RefundAmount.String()),
		)
		return nil
	}

	if err := so.MarkRefunded(fmt.Sprintf("case:%s", approvedEvent.CaseNumber)); err != nil {
		h.logger.Error("failed to mark sub-order refunded",
			zap.String("case_number", approvedEvent.CaseNumber),
			zap.String("sub_order_number", so.SubOrderNumber),
			zap.Error(err),
		)
		return err
	}

	if err := h.subOrderRepo.SaveWithLock(ctx, so); err != nil {
		return err
	}

	h.logger.Info("sub-order marked refunded after approved return",
		zap.String("case_number", approvedEvent.CaseNumber),
		zap.String("sub_order_number", so.SubOrderNumber),
	)

	return nil
}

// Ensure CaseApprovedHandler implements shared.EventHandler
var _ shared.EventHandler = (*CaseApprovedHandler)(nil)
