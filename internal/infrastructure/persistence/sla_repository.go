package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/sla"
	"gorm.io/gorm"
)

// GormSlaConfigurationRepository implements ConfigurationRepository using GORM
type GormSlaConfigurationRepository struct {
	db *gorm.DB
}

// NewGormSlaConfigurationRepository creates a new GormSlaConfigurationRepository
func NewGormSlaConfigurationRepository(db *gorm.DB) *GormSlaConfigurationRepository {
	return &GormSlaConfigurationRepository{db: db}
}

// FindByID finds a configuration by ID
func (r *GormSlaConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sla.Configuration, error) {
	var c sla.Configuration
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllActive returns every configuration effective at the given time
func (r *GormSlaConfigurationRepository) FindAllActive(ctx context.Context, now time.Time) ([]sla.Configuration, error) {
	var configs []sla.Configuration
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("effective_from <= ?", now).
		Where("effective_to IS NULL OR effective_to > ?", now).
		Order("priority ASC, effective_from DESC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// Save creates or updates a configuration
func (r *GormSlaConfigurationRepository) Save(ctx context.Context, c *sla.Configuration) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Deactivate marks a configuration inactive
func (r *GormSlaConfigurationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&sla.Configuration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSlaConfigurationRepository implements ConfigurationRepository
var _ sla.ConfigurationRepository = (*GormSlaConfigurationRepository)(nil)

// GormSlaTrackingRepository implements TrackingRepository using GORM
type GormSlaTrackingRepository struct {
	db *gorm.DB
}

// NewGormSlaTrackingRepository creates a new GormSlaTrackingRepository
func NewGormSlaTrackingRepository(db *gorm.DB) *GormSlaTrackingRepository {
	return &GormSlaTrackingRepository{db: db}
}

// FindByCase finds the record paired with a case
func (r *GormSlaTrackingRepository) FindByCase(ctx context.Context, caseID uuid.UUID) (*sla.TrackingRecord, error) {
	var record sla.TrackingRecord
	if err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByStoreAndRange finds records for cases created inside [from, to)
func (r *GormSlaTrackingRepository) FindByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]sla.TrackingRecord, error) {
	var records []sla.TrackingRecord
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND case_created_at >= ? AND case_created_at < ?", storeID, from, to).
		Order("case_created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindUnresolved returns unresolved records ordered by ID, starting after
// the given cursor. The stable order lets an interrupted sweep resume
// without skipping or repeating records.
func (r *GormSlaTrackingRepository) FindUnresolved(ctx context.Context, afterID uuid.UUID, limit int) ([]sla.TrackingRecord, error) {
	var records []sla.TrackingRecord
	query := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("id ASC").
		Limit(limit)
	if afterID != uuid.Nil {
		query = query.Where("id > ?", afterID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBreachedUnresolved returns records with a breach flag set and no
// resolution yet
func (r *GormSlaTrackingRepository) FindBreachedUnresolved(ctx context.Context, storeID *uuid.UUID, limit int) ([]sla.TrackingRecord, error) {
	var records []sla.TrackingRecord
	query := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Where("is_first_response_breach = ? OR is_resolution_breach = ?", true, true).
		Order("case_created_at ASC").
		Limit(limit)
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record
func (r *GormSlaTrackingRepository) Save(ctx context.Context, record *sla.TrackingRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSlaTrackingRepository) SaveWithLock(ctx context.Context, record *sla.TrackingRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&sla.TrackingRecord{}).
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

		result := tx.Model(&sla.TrackingRecord{}).
			Where("id = ? AND version = ?", record.ID, currentVersion).
			Updates(map[string]any{
				"first_response_at":        record.FirstResponseAt,
				"resolved_at":              record.ResolvedAt,
				"is_first_response_breach": record.IsFirstResponseBreach,
				"is_resolution_breach":     record.IsResolutionBreach,
				"last_evaluated_at":        record.LastEvaluatedAt,
				"version":                  record.Version,
				"updated_at":               record.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// Ensure GormSlaTrackingRepository implements TrackingRepository
var _ sla.TrackingRepository = (*GormSlaTrackingRepository)(nil)
