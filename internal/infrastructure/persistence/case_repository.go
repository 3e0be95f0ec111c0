package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCaseRepository implements CaseRepository using GORM
type GormCaseRepository struct {
	db *gorm.DB
}

// NewGormCaseRepository creates a new GormCaseRepository
func NewGormCaseRepository(db *gorm.DB) *GormCaseRepository {
	return &GormCaseRepository{db: db}
}

// FindByID finds a case by ID, items/history/messages included
func (r *GormCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Case, error) {
	var c dispute.Case
	if err := r.preloadAll(r.db.WithContext(ctx)).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByCaseNumber finds a case by its case number
func (r *GormCaseRepository) FindByCaseNumber(ctx context.Context, caseNumber string) (*dispute.Case, error) {
	var c dispute.Case
	if err := r.preloadAll(r.db.WithContext(ctx)).
		Where("case_number = ?", caseNumber).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindBySubOrder finds all cases raised against a sub-order
func (r *GormCaseRepository) FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]dispute.Case, error) {
	var cases []dispute.Case
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sub_order_id = ?", subOrderID).
		Order("created_at DESC").
		Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// FindByBuyer finds cases opened by a buyer
func (r *GormCaseRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]dispute.Case, error) {
	return r.findFiltered(ctx, "buyer_id = ?", buyerID, filter)
}

// FindByStore finds cases against a store
func (r *GormCaseRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]dispute.Case, error) {
	return r.findFiltered(ctx, "store_id = ?", storeID, filter)
}

func (r *GormCaseRepository) findFiltered(ctx context.Context, cond string, id uuid.UUID, filter shared.Filter) ([]dispute.Case, error) {
	var cases []dispute.Case
	query := r.db.WithContext(ctx).Model(&dispute.Case{}).
		Preload("Items").
		Where(cond, id)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
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

	query = applyPagination(query, filter, "created_at", "case_number", "status")
	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// FindByStoreAndRange finds cases against a store created inside [from, to)
func (r *GormCaseRepository) FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]dispute.Case, error) {
	var cases []dispute.Case
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Order("created_at ASC").
		Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// FindOpenItemIDs returns, out of the given sub-order item IDs, those
// already covered by an open case
func (r *GormCaseRepository) FindOpenItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var blocked []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&dispute.CaseItem{}).
		Select("case_items.sub_order_item_id").
		Joins("JOIN cases ON cases.id = case_items.case_id").
		Where("case_items.sub_order_item_id IN ?", itemIDs).
		Where("cases.status IN ?", dispute.OpenCaseStatuses()).
		Scan(&blocked).Error; err != nil {
		return nil, err
	}
	return blocked, nil
}

// Save creates or updates a case
func (r *GormCaseRepository) Save(ctx context.Context, c *dispute.Case) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "StatusHistory", "Messages").Save(c).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, c)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCaseRepository) SaveWithLock(ctx context.Context, c *dispute.Case) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&dispute.Case{}).
			Where("id = ?", c.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != c.Version {
			return shared.ErrConcurrencyConflict
		}

		c.Version++
		c.UpdatedAt = time.Now()

		result := tx.Model(&dispute.Case{}).
			Where("id = ? AND version = ?", c.ID, currentVersion).
			Updates(map[string]any{
				"status":            c.Status,
				"category":          c.Category,
				"first_response_at": c.FirstResponseAt,
				"resolved_at":       c.ResolvedAt,
				"version":           c.Version,
				"updated_at":        c.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.saveChildren(tx, c)
	})
}

// saveChildren upserts items, history and messages. All three are
// append-only for a case, so rows are never deleted here.
func (r *GormCaseRepository) saveChildren(tx *gorm.DB, c *dispute.Case) error {
	for i := range c.Items {
		c.Items[i].CaseID = c.ID
		if err := tx.Save(&c.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range c.StatusHistory {
		c.StatusHistory[i].CaseID = c.ID
		if err := tx.Save(&c.StatusHistory[i]).Error; err != nil {
			return err
		}
	}
	for i := range c.Messages {
		c.Messages[i].CaseID = c.ID
		if err := tx.Save(&c.Messages[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateCaseNumber generates a unique case number.
// Format: CASE-YYYY-NNNNN (e.g., CASE-2026-00001)
func (r *GormCaseRepository) GenerateCaseNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CASE-%d-", year)

	var lastCase dispute.Case
	err := r.db.WithContext(ctx).
		Model(&dispute.Case{}).
		Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		First(&lastCase).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastCase.CaseNumber != "" {
		parts := strings.Split(lastCase.CaseNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormCaseRepository) preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// Ensure GormCaseRepository implements CaseRepository
var _ dispute.CaseRepository = (*GormCaseRepository)(nil)
