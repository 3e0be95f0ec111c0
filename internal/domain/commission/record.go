package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RefundEntry records one approved case's contribution to the refunded
// total. CaseID is the replay key: the same approval applied twice only
// counts once.
type RefundEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	RecordID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_refund_record_case,priority:1"`
	CaseID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_refund_record_case,priority:2"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RefundEntry) TableName() string {
	return "commission_refund_entries"
}

// CommissionRecord is the settlement ledger line for one (order, store)
// pair. GMV and payout are derived, never stored independently, so the
// ledger cannot drift from its inputs.
type CommissionRecord struct {
	shared.BaseAggregateRoot
	OrderID             uuid.UUID         `gorm:"type:uuid;not null;index"`
	SubOrderID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	StoreID             uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderAmount         valueobject.Money `gorm:"type:decimal(18,4);not null"` // sub-order total at capture time
	RefundedAmount      valueobject.Money `gorm:"type:decimal(18,4);not null"`
	CommissionRate      decimal.Decimal   `gorm:"type:decimal(8,6);not null"` // fraction, e.g. 0.05
	NetCommissionAmount valueobject.Money `gorm:"type:decimal(18,4);not null"`
	Refunds             []RefundEntry     `gorm:"foreignKey:RecordID;references:ID"`
	CalculatedAt        time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommissionRecord) TableName() string {
	return "commission_records"
}

// NewCommissionRecord creates the ledger line when payment is captured
// for a sub-order
func NewCommissionRecord(orderID, subOrderID, storeID uuid.UUID, orderAmount valueobject.Money, rate decimal.Decimal) (*CommissionRecord, error) {
	if orderID == uuid.Nil || subOrderID == uuid.Nil || storeID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order, sub-order and store IDs cannot be empty")
	}
	if orderAmount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order amount cannot be negative")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Commission rate must be between 0 and 1")
	}

	r := &CommissionRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		SubOrderID:        subOrderID,
		StoreID:           storeID,
		OrderAmount:       orderAmount,
		RefundedAmount:    valueobject.Zero(),
		CommissionRate:    rate,
		CalculatedAt:      time.Now(),
	}
	r.recompute()

	return r, nil
}

// GMV is the order amount net of refunds
func (r *CommissionRecord) GMV() valueobject.Money {
	gmv, _ := r.OrderAmount.Subtract(r.RefundedAmount)
	return gmv
}

// NetPayout is what the store receives: GMV minus commission
func (r *CommissionRecord) NetPayout() valueobject.Money {
	payout, _ := r.GMV().Subtract(r.NetCommissionAmount)
	return payout
}

// recompute derives the commission from the current GMV. A fully
// refunded order yields zero commission and zero payout, never a
// negative line.
func (r *CommissionRecord) recompute() {
	gmv := r.GMV()
	if gmv.IsNegative() {
		gmv = valueobject.Zero()
	}
	r.NetCommissionAmount = gmv.Mul(r.CommissionRate)
	r.CalculatedAt = time.Now()
	r.UpdatedAt = r.CalculatedAt
}

// HasRefundForCase reports whether a case's refund was already applied
func (r *CommissionRecord) HasRefundForCase(caseID uuid.UUID) bool {
	for _, entry := range r.Refunds {
		if entry.CaseID == caseID {
			return true
		}
	}
	return false
}

// ApplyRefund applies an approved case's refund and recomputes the
// commission. Keyed by case ID: replaying the same approval is a no-op,
// so event redelivery cannot double-refund. Returns true when the ledger
// line changed.
func (r *CommissionRecord) ApplyRefund(caseID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if caseID == uuid.Nil {
		return false, shared.NewDomainError("VALIDATION_ERROR", "Case ID cannot be empty")
	}
	if amount.IsNegative() {
		return false, shared.NewDomainError("VALIDATION_ERROR", "Refund amount cannot be negative")
	}
	if r.HasRefundForCase(caseID) {
		return false, nil
	}

	refund := valueobject.NewMoneyUSD(amount)
	refunded, err := r.RefundedAmount.Add(refund)
	if err != nil {
		return false, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if refunded.Amount().GreaterThan(r.OrderAmount.Amount()) {
		return false, shared.NewDomainError("REFUND_EXCEEDS_ORDER", "Cumulative refunds cannot exceed the order amount")
	}

	r.RefundedAmount = refunded
	r.Refunds = append(r.Refunds, RefundEntry{
		ID:        uuid.New(),
		RecordID:  r.ID,
		CaseID:    caseID,
		Amount:    amount,
		AppliedAt: time.Now(),
	})
	r.recompute()

	r.AddDomainEvent(NewCommissionRecalculatedEvent(r, caseID))

	return true, nil
}

// IsFullyRefunded reports whether the entire order amount came back
func (r *CommissionRecord) IsFullyRefunded() bool {
	return r.RefundedAmount.Equal(r.OrderAmount)
}
