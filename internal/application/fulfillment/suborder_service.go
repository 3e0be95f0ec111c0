package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
)

// SubOrderService handles seller sub-order business operations
type SubOrderService struct {
	subOrderRepo   fulfillment.SubOrderRepository
	eventPublisher shared.EventPublisher
}

// NewSubOrderService creates a new SubOrderService
func NewSubOrderService(subOrderRepo fulfillment.SubOrderRepository) *SubOrderService {
	return &SubOrderService{subOrderRepo: subOrderRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SubOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Transition moves a sub-order along its fulfillment path on behalf of a
// seller. The acting store must own the sub-order.
func (s *SubOrderService) Transition(ctx context.Context, subOrderID, actingStoreID uuid.UUID, req TransitionRequest) (*SubOrderResponse, error) {
	so, err := s.subOrderRepo.FindByID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	if !so.BelongsToStore(actingStoreID) {
		return nil, shared.ErrNotAuthorized
	}

	target := fulfillment.SubOrderStatus(req.Target)
	if target == fulfillment.SubOrderStatusRefunded {
		return nil, shared.NewDomainError("INVALID_TRANSITION",
			"Refunds are issued through an approved case, not a seller transition")
	}
	if err := so.Transition(target, fmt.Sprintf("store:%s", actingStoreID), fulfillment.ShippingInfo{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
	}); err != nil {
		return nil, err
	}

	if err := s.subOrderRepo.SaveWithLock(ctx, so); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, so)

	response := ToSubOrderResponse(so)
	return &response, nil
}

// OverrideTransition is the administrative correction path. It may skip
// statuses but never move backward.
func (s *SubOrderService) OverrideTransition(ctx context.Context, subOrderID uuid.UUID, adminID string, req TransitionRequest) (*SubOrderResponse, error) {
	so, err := s.subOrderRepo.FindByID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}

	target := fulfillment.SubOrderStatus(req.Target)
	if err := so.OverrideTransition(target, fmt.Sprintf("admin:%s", adminID), fulfillment.ShippingInfo{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Note:           req.Note,
	}); err != nil {
		return nil, err
	}

	if err := s.subOrderRepo.SaveWithLock(ctx, so); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, so)

	response := ToSubOrderResponse(so)
	return &response, nil
}

// TransitionItem moves a single line item on behalf of a seller
func (s *SubOrderService) TransitionItem(ctx context.Context, subOrderID, itemID, actingStoreID uuid.UUID, req TransitionItemRequest) (*SubOrderResponse, error) {
	so, err := s.subOrderRepo.FindByID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	if !so.BelongsToStore(actingStoreID) {
		return nil, shared.ErrNotAuthorized
	}

	if err := so.TransitionItem(itemID, fulfillment.ItemStatus(req.Target)); err != nil {
		return nil, err
	}

	if err := s.subOrderRepo.SaveWithLock(ctx, so); err != nil {
		return nil, err
	}

	response := ToSubOrderResponse(so)
	return &response, nil
}

// GetByID retrieves a sub-order
func (s *SubOrderService) GetByID(ctx context.Context, subOrderID uuid.UUID) (*SubOrderResponse, error) {
	so, err := s.subOrderRepo.FindByID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	response := ToSubOrderResponse(so)
	return &response, nil
}

// ListByStore retrieves a store's sub-orders
func (s *SubOrderService) ListByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]SubOrderResponse, error) {
	subOrders, err := s.subOrderRepo.FindByStore(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	return ToSubOrderResponses(subOrders), nil
}

// GetShippingHistory returns the append-only status history, oldest first
func (s *SubOrderService) GetShippingHistory(ctx context.Context, subOrderID uuid.UUID) ([]ShippingHistoryResponse, error) {
	entries, err := s.subOrderRepo.GetShippingHistory(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	return ToShippingHistoryResponses(entries), nil
}

func (s *SubOrderService) publishEvents(ctx context.Context, so *fulfillment.SellerSubOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range so.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	so.ClearDomainEvents()
}
