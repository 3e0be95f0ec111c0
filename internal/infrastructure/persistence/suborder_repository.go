package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/fulfillment"
	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSubOrderRepository implements SubOrderRepository using GORM
type GormSubOrderRepository struct {
	db *gorm.DB
}

// NewGormSubOrderRepository creates a new GormSubOrderRepository
func NewGormSubOrderRepository(db *gorm.DB) *GormSubOrderRepository {
	return &GormSubOrderRepository{db: db}
}

// FindByID finds a sub-order by ID, items and history included
func (r *GormSubOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.SellerSubOrder, error) {
	var so fulfillment.SellerSubOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		First(&so, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &so, nil
}

// FindByOrder finds all sub-orders of a buyer order
func (r *GormSubOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]fulfillment.SellerSubOrder, error) {
	var subOrders []fulfillment.SellerSubOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("sub_order_number ASC").
		Find(&subOrders).Error; err != nil {
		return nil, err
	}
	return subOrders, nil
}

// FindByStore finds sub-orders belonging to a store
func (r *GormSubOrderRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]fulfillment.SellerSubOrder, error) {
	var subOrders []fulfillment.SellerSubOrder
	query := r.db.WithContext(ctx).Model(&fulfillment.SellerSubOrder{}).
		Preload("Items").
		Where("store_id = ?", storeID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	query = applyPagination(query, filter, "created_at", "sub_order_number", "status")
	if err := query.Find(&subOrders).Error; err != nil {
		return nil, err
	}
	return subOrders, nil
}

// FindByItemID finds the sub-order owning a given line item
func (r *GormSubOrderRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*fulfillment.SellerSubOrder, error) {
	var item fulfillment.SubOrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, item.SubOrderID)
}

// Save creates or updates a sub-order
func (r *GormSubOrderRepository) Save(ctx context.Context, so *fulfillment.SellerSubOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveSubOrderGraph(tx, so)
	})
}

// saveSubOrderGraph upserts the sub-order row plus its items and history.
// Items and history rows are keyed by their own IDs, so re-saving the same
// aggregate is idempotent.
func saveSubOrderGraph(tx *gorm.DB, so *fulfillment.SellerSubOrder) error {
	if err := tx.Omit("Items", "StatusHistory").Save(so).Error; err != nil {
		return err
	}
	for i := range so.Items {
		so.Items[i].SubOrderID = so.ID
		if err := tx.Save(&so.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range so.StatusHistory {
		so.StatusHistory[i].SubOrderID = so.ID
		if err := tx.Save(&so.StatusHistory[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSubOrderRepository) SaveWithLock(ctx context.Context, so *fulfillment.SellerSubOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&fulfillment.SellerSubOrder{}).
			Where("id = ?", so.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != so.Version {
			return shared.ErrConcurrencyConflict
		}

		so.Version++
		so.UpdatedAt = time.Now()

		result := tx.Model(&fulfillment.SellerSubOrder{}).
			Where("id = ? AND version = ?", so.ID, currentVersion).
			Updates(map[string]any{
				"status":           so.Status,
				"payment_captured": so.PaymentCaptured,
				"delivered_at":     so.DeliveredAt,
				"version":          so.Version,
				"updated_at":       so.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range so.Items {
			so.Items[i].SubOrderID = so.ID
			if err := tx.Save(&so.Items[i]).Error; err != nil {
				return err
			}
		}
		for i := range so.StatusHistory {
			so.StatusHistory[i].SubOrderID = so.ID
			if err := tx.Save(&so.StatusHistory[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetShippingHistory returns the append-only status history, oldest first
func (r *GormSubOrderRepository) GetShippingHistory(ctx context.Context, subOrderID uuid.UUID) ([]fulfillment.ShippingStatusEntry, error) {
	var entries []fulfillment.ShippingStatusEntry
	if err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormSubOrderRepository implements SubOrderRepository
var _ fulfillment.SubOrderRepository = (*GormSubOrderRepository)(nil)
