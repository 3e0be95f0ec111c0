package commission

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SubOrderPaidHandler handles SubOrderStatusChangedEvent and opens a
// ledger line when a sub-order's payment is captured
type SubOrderPaidHandler struct {
	service      *CommissionService
	subOrderRepo fulfillment.SubOrderRepository
	logger       *zap.Logger
}

// NewSubOrderPaidHandler creates a new handler for sub-order payment capture
func NewSubOrderPaidHandler(
	service *CommissionService,
	subOrderRepo fulfillment.SubOrderRepository,
	logger *zap.Logger,
) *SubOrderPaidHandler {
	return &SubOrderPaidHandler{
		service:      service,
		subOrderRepo: subOrderRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SubOrderPaidHandler) EventTypes() []string {
	return []string{fulfillment.EventTypeSubOrderStatusChanged}
}

// Handle processes a SubOrderStatusChangedEvent
func (h *SubOrderPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	statusEvent, ok := event.(*fulfillment.SubOrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			fulfillment.EventTypeSubOrderStatusChanged, event.EventType())
	}

	if statusEvent.NewStatus != fulfillment.SubOrderStatusPaid {
		return nil
	}

	so, err := h.subOrderRepo.FindByID(ctx, statusEvent.SubOrderID)
	if err != nil {
		h.logger.Error("failed to load paid sub-order for ledger",
			zap.String("sub_order_number", statusEvent.SubOrderNumber),
			zap.Error(err),
		)
		return err
	}

	// The ledger line covers the goods amount; shipping is passed
	// through to the seller untouched
	record, err := h.service.CreateForSubOrder(ctx, so.OrderID, so.ID, so.StoreID, so.ItemsTotal)
	if err != nil {
		h.logger.Error("failed to open commission ledger line",
			zap.String("sub_order_number", statusEvent.SubOrderNumber),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("commission ledger line opened",
		zap.String("sub_order_number", statusEvent.SubOrderNumber),
		zap.String("store_id", so.StoreID.String()),
		zap.String("net_commission", record.NetCommission.String()),
	)
	return nil
}

// CaseApprovedHandler handles CaseApprovedEvent and applies the approved
// refund to the ledger. The refund lands strictly after approval: this
// handler only ever runs on a published approval event, and replays are
// absorbed by the per-case idempotency key on the record.
type CaseApprovedHandler struct {
	service *CommissionService
	logger  *zap.Logger
}

// NewCaseApprovedHandler creates a new handler for case approved events
func NewCaseApprovedHandler(service *CommissionService, logger *zap.Logger) *CaseApprovedHandler {
	return &CaseApprovedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CaseApprovedHandler) EventTypes() []string {
	return []string{dispute.EventTypeCaseApproved}
}

// Handle processes a CaseApprovedEvent
func (h *CaseApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approvedEvent, ok := event.(*dispute.CaseApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			dispute.EventTypeCaseApproved, event.EventType())
	}

	record, err := h.service.ApplyRefund(ctx, approvedEvent.SubOrderID, approvedEvent.CaseID, approvedEvent.RefundAmount)
	if err != nil {
		h.logger.Error("failed to apply approved refund to ledger",
			zap.String("case_number", approvedEvent.CaseNumber),
			zap.String("sub_order_id", approvedEvent.SubOrderID.String()),
			zap.String("refund_amount", approvedEvent.RefundAmount.String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("refund applied to commission ledger",
		zap.String("case_number", approvedEvent.CaseNumber),
		zap.String("refunded_amount", record.RefundedAmount.String()),
		zap.String("net_commission", record.NetCommission.String()),
		zap.String("net_payout", record.NetPayout.String()),
	)
	return nil
}

// Ensure handlers implement shared.EventHandler
var (
	_ shared.EventHandler = (*SubOrderPaidHandler)(nil)
	_ shared.EventHandler = (*CaseApprovedHandler)(nil)
)
