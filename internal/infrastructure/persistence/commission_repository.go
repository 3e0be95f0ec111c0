package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/commission"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCommissionRepository implements CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// FindByID finds a record by ID, refund entries included
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.CommissionRecord, error) {
	var record commission.CommissionRecord
	if err := r.db.WithContext(ctx).
		Preload("Refunds").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindBySubOrder finds the record for a sub-order
func (r *GormCommissionRepository) FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*commission.CommissionRecord, error) {
	var record commission.CommissionRecord
	if err := r.db.WithContext(ctx).
		Preload("Refunds").
		Where("sub_order_id = ?", subOrderID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByOrderAndStore finds the record for an (order, store) pair
func (r *GormCommissionRepository) FindByOrderAndStore(ctx context.Context, orderID, storeID uuid.UUID) (*commission.CommissionRecord, error) {
	var record commission.CommissionRecord
	if err := r.db.WithContext(ctx).
		Preload("Refunds").
		Where("order_id = ? AND store_id = ?", orderID, storeID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByStore finds all records for a store created inside [from, to)
func (r *GormCommissionRepository) FindByStore(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]commission.CommissionRecord, error) {
	var records []commission.CommissionRecord
	if err := r.db.WithContext(ctx).
		Preload("Refunds").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SummarizeByStore aggregates a store's records over [from, to).
// OrderCount counts distinct orders, not ledger lines: a store can have at
// most one line per order, but the distinction matters if that ever changes.
func (r *GormCommissionRepository) SummarizeByStore(ctx context.Context, storeID uuid.UUID, from, to time.Time) (*commission.SellerSummary, error) {
	var row struct {
		OrderCount    int64
		GrossAmount   decimal.Decimal
		Refunded      decimal.Decimal
		NetCommission decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&commission.CommissionRecord{}).
		Select("COUNT(DISTINCT order_id) AS order_count, "+
			"COALESCE(SUM(order_amount), 0) AS gross_amount, "+
			"COALESCE(SUM(refunded_amount), 0) AS refunded, "+
			"COALESCE(SUM(net_commission_amount), 0) AS net_commission").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	gmv := row.GrossAmount.Sub(row.Refunded)
	return &commission.SellerSummary{
		StoreID:        storeID,
		From:           from,
		To:             to,
		OrderCount:     row.OrderCount,
		GrossAmount:    row.GrossAmount,
		RefundedAmount: row.Refunded,
		GMV:            gmv,
		NetCommission:  row.NetCommission,
		NetPayout:      gmv.Sub(row.NetCommission),
	}, nil
}

// Save creates or updates a record
func (r *GormCommissionRepository) Save(ctx context.Context, record *commission.CommissionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Refunds").Save(record).Error; err != nil {
			return err
		}
		return saveRefundEntries(tx, record)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCommissionRepository) SaveWithLock(ctx context.Context, record *commission.CommissionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&commission.CommissionRecord{}).
			Where("id = ?", record.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != record.Version {
			return shared.ErrConcurrencyConflict
		}

		record.Version++
		record.UpdatedAt = time.Now()

		result := tx.Model(&commission.CommissionRecord{}).
			Where("id = ? AND version = ?", record.ID, currentVersion).
			Updates(map[string]any{
				"refunded_amount":       record.RefundedAmount,
				"net_commission_amount": record.NetCommissionAmount,
				"calculated_at":         record.CalculatedAt,
				"version":               record.Version,
				"updated_at":            record.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveRefundEntries(tx, record)
	})
}

// saveRefundEntries upserts refund entries. Entries are append-only and
// keyed by their own IDs, so replays are harmless.
func saveRefundEntries(tx *gorm.DB, record *commission.CommissionRecord) error {
	for i := range record.Refunds {
		record.Refunds[i].RecordID = record.ID
		if err := tx.Save(&record.Refunds[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormCommissionRepository implements CommissionRepository
var _ commission.CommissionRepository = (*GormCommissionRepository)(nil)
