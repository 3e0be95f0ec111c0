package commission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerSummary aggregates a store's ledger over a date range
type SellerSummary struct {
	StoreID        uuid.UUID       `json:"store_id"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OrderCount     int64           `json:"order_count"` // distinct orders
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	GMV            decimal.Decimal `json:"gmv"`
	NetCommission  decimal.Decimal `json:"net_commission"`
	NetPayout      decimal.Decimal `json:"net_payout"`
}

// CommissionRepository defines the interface for ledger persistence
type CommissionRepository interface {
	// FindByID finds a record by ID, refund entries included
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionRecord, error)

	// FindBySubOrder finds the record for a sub-order
	FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*CommissionRecord, error)

	// FindByOrderAndStore finds the record for an (order, store) pair
	FindByOrderAndStore(ctx context.Context, orderID, storeID uuid.UUID) (*CommissionRecord, error)

	// FindByStore finds all records for a store created inside [from, to)
	FindByStore(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]CommissionRecord, error)

	// SummarizeByStore aggregates a store's records over [from, to).
	// OrderCount counts distinct orders, not ledger lines.
	SummarizeByStore(ctx context.Context, storeID uuid.UUID, from, to time.Time) (*SellerSummary, error)

	// Save creates or updates a record
	Save(ctx context.Context, r *CommissionRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, r *CommissionRecord) error
}
