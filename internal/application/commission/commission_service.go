package commission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/commission"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommissionService handles the settlement ledger
type CommissionService struct {
	commissionRepo commission.CommissionRepository
	commissionRate decimal.Decimal
	eventPublisher shared.EventPublisher
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(commissionRepo commission.CommissionRepository, commissionRate decimal.Decimal) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		commissionRate: commissionRate,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CommissionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateForSubOrder opens the ledger line when payment is captured for a
// sub-order. Re-delivery of the capture event is a no-op.
func (s *CommissionService) CreateForSubOrder(ctx context.Context, orderID, subOrderID, storeID uuid.UUID, amount decimal.Decimal) (*CommissionResponse, error) {
	if existing, err := s.commissionRepo.FindBySubOrder(ctx, subOrderID); err == nil && existing != nil {
		response := ToCommissionResponse(existing)
		return &response, nil
	}

	record, err := commission.NewCommissionRecord(orderID, subOrderID, storeID,
		valueobject.NewMoneyUSD(amount), s.commissionRate)
	if err != nil {
		return nil, err
	}

	if err := s.commissionRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	response := ToCommissionResponse(record)
	return &response, nil
}

// ApplyRefund applies an approved case's refund to the ledger line and
// recomputes commission and payout. Idempotent per case.
func (s *CommissionService) ApplyRefund(ctx context.Context, subOrderID, caseID uuid.UUID, amount decimal.Decimal) (*CommissionResponse, error) {
	record, err := s.commissionRepo.FindBySubOrder(ctx, subOrderID)
	if err != nil {
		return nil, err
	}

	changed, err := record.ApplyRefund(caseID, amount)
	if err != nil {
		return nil, err
	}

	if changed {
		if err := s.commissionRepo.SaveWithLock(ctx, record); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, record)
	}

	response := ToCommissionResponse(record)
	return &response, nil
}

// GetBySubOrder retrieves the ledger line for a sub-order
func (s *CommissionService) GetBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*CommissionResponse, error) {
	record, err := s.commissionRepo.FindBySubOrder(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	response := ToCommissionResponse(record)
	return &response, nil
}

// GetSellerSummary aggregates a store's ledger over a date range
func (s *CommissionService) GetSellerSummary(ctx context.Context, storeID uuid.UUID, from, to time.Time) (*SellerSummaryResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Summary range must end after it starts")
	}

	summary, err := s.commissionRepo.SummarizeByStore(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}

	response := ToSellerSummaryResponse(summary)
	return &response, nil
}

func (s *CommissionService) publishEvents(ctx context.Context, record *commission.CommissionRecord) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range record.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	record.ClearDomainEvents()
}
