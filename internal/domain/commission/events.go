package commission

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for CommissionRecord
const AggregateTypeCommissionRecord = "CommissionRecord"

// Event type constants
const (
	EventTypeCommissionRecalculated = "CommissionRecalculated"
)

// CommissionRecalculatedEvent is raised when an approved refund changes
// a ledger line
type CommissionRecalculatedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	StoreID        uuid.UUID       `json:"store_id"`
	CaseID         uuid.UUID       `json:"case_id"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	NetCommission  decimal.Decimal `json:"net_commission"`
	NetPayout      decimal.Decimal `json:"net_payout"`
}

// NewCommissionRecalculatedEvent creates a new CommissionRecalculatedEvent
func NewCommissionRecalculatedEvent(r *CommissionRecord, caseID uuid.UUID) *CommissionRecalculatedEvent {
	return &CommissionRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionRecalculated, AggregateTypeCommissionRecord, r.ID),
		RecordID:        r.ID,
		OrderID:         r.OrderID,
		StoreID:         r.StoreID,
		CaseID:          caseID,
		RefundedAmount:  r.RefundedAmount.Amount(),
		NetCommission:   r.NetCommissionAmount.Amount(),
		NetPayout:       r.NetPayout().Amount(),
	}
}

// EventType returns the event type name
func (e *CommissionRecalculatedEvent) EventType() string {
	return EventTypeCommissionRecalculated
}
