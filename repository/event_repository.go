package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eventdesk/eventdesk/models"
)

// EventRepositoryImpl implements EventRepository
type EventRepositoryImpl struct {
	*BaseRepository[models.Event, models.EventFilter]
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &EventRepositoryImpl{BaseRepository: NewBaseRepository[models.Event, models.EventFilter](db)}
}

func (r *EventRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Event, error) {
	db := r.getDB(ctx)
	var row models.Event
	if err := db.Where("uuid = ?", uuid).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find event by uuid %s: %w", uuid, err)
	}
	return &row, nil
}

func (r *EventRepositoryImpl) applyFilter(db *gorm.DB, f models.EventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.IsDefault != nil {
		db = db.Where("is_default = ?", *f.IsDefault)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *EventRepositoryImpl) ByFilter(ctx context.Context, filter models.EventFilter, orderBy string, limit, offset int) ([]*models.Event, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Event{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find events by filter: %w", err)
	}
	return rows, nil
}

// ListAll returns every event row in insertion order. The idempotent-create
// dedup scan runs over this, so no filtering happens here.
func (r *EventRepositoryImpl) ListAll(ctx context.Context) ([]*models.Event, error) {
	return r.ByFilter(ctx, models.EventFilter{}, "id ASC", 0, 0)
}

func (r *EventRepositoryImpl) Count(ctx context.Context, filter models.EventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Event{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *EventRepositoryImpl) Exists(ctx context.Context, filter models.EventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *EventRepositoryImpl) UpdateStatus(ctx context.Context, uuid string, status string) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Event{}).Where("uuid = ?", uuid).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update event status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetDefault marks one event as default and clears the flag on all others,
// inside a single transaction.
func (r *EventRepositoryImpl) SetDefault(ctx context.Context, uuid string) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)
		if err := db.Model(&models.Event{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default flags: %w", err)
		}
		res := db.Model(&models.Event{}).Where("uuid = ?", uuid).Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set default event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, uuid string) error {
	db := r.getDB(ctx)
	res := db.Where("uuid = ?", uuid).Delete(&models.Event{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
