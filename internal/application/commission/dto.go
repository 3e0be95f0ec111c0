package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/commission"
	"github.com/shopspring/decimal"
)

// RefundEntryResponse represents one applied refund in API responses
type RefundEntryResponse struct {
	CaseID    uuid.UUID       `json:"case_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// CommissionResponse represents a ledger line in API responses
type CommissionResponse struct {
	ID             uuid.UUID             `json:"id"`
	OrderID        uuid.UUID             `json:"order_id"`
	SubOrderID     uuid.UUID             `json:"sub_order_id"`
	StoreID        uuid.UUID             `json:"store_id"`
	OrderAmount    decimal.Decimal       `json:"order_amount"`
	RefundedAmount decimal.Decimal       `json:"refunded_amount"`
	GMV            decimal.Decimal       `json:"gmv"`
	CommissionRate decimal.Decimal       `json:"commission_rate"`
	NetCommission  decimal.Decimal       `json:"net_commission"`
	NetPayout      decimal.Decimal       `json:"net_payout"`
	Refunds        []RefundEntryResponse `json:"refunds,omitempty"`
	CalculatedAt   time.Time             `json:"calculated_at"`
	Version        int                   `json:"version"`
}

// SellerSummaryResponse aggregates a store's ledger in API responses
type SellerSummaryResponse struct {
	StoreID        uuid.UUID       `json:"store_id"`
	StoreName      string          `json:"store_name,omitempty"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OrderCount     int64           `json:"order_count"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	GMV            decimal.Decimal `json:"gmv"`
	NetCommission  decimal.Decimal `json:"net_commission"`
	NetPayout      decimal.Decimal `json:"net_payout"`
}

// ToCommissionResponse converts a domain CommissionRecord to a DTO
func ToCommissionResponse(r *commission.CommissionRecord) CommissionResponse {
	refunds := make([]RefundEntryResponse, len(r.Refunds))
	for i, entry := range r.Refunds {
		refunds[i] = RefundEntryResponse{
			CaseID:    entry.CaseID,
			Amount:    entry.Amount,
			AppliedAt: entry.AppliedAt,
		}
	}

	return CommissionResponse{
		ID:             r.ID,
		OrderID:        r.OrderID,
		SubOrderID:     r.SubOrderID,
		StoreID:        r.StoreID,
		OrderAmount:    r.OrderAmount.Amount(),
		RefundedAmount: r.RefundedAmount.Amount(),
		GMV:            r.GMV().Amount(),
		CommissionRate: r.CommissionRate,
		NetCommission:  r.NetCommissionAmount.Amount(),
		NetPayout:      r.NetPayout().Amount(),
		Refunds:        refunds,
		CalculatedAt:   r.CalculatedAt,
		Version:        r.Version,
	}
}

// ToSellerSummaryResponse converts a domain SellerSummary to a DTO
func ToSellerSummaryResponse(s *commission.SellerSummary) SellerSummaryResponse {
	return SellerSummaryResponse{
		StoreID:        s.StoreID,
		From:           s.From,
		To:             s.To,
		OrderCount:     s.OrderCount,
		GrossAmount:    s.GrossAmount,
		RefundedAmount: s.RefundedAmount,
		GMV:            s.GMV,
		NetCommission:  s.NetCommission,
		NetPayout:      s.NetPayout,
	}
}
