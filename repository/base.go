package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository carries the gorm handle and the shared read/write plumbing
// for concrete repositories. A transaction placed in the context via
// WithTransaction takes precedence over the root handle, so multi-statement
// operations compose without each method knowing about transactions.
type BaseRepository[T any, F any] struct {
	DB *gorm.DB
}

func NewBaseRepository[T any, F any](db *gorm.DB) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{DB: db}
}

// getDB picks the context transaction when one is active, else the root handle.
func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.DB
}

// ByID fetches one row by primary key. A missing row is (nil, nil).
func (r *BaseRepository[T, F]) ByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.getDB(ctx).Last(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity by ID %d: %w", id, err)
	}
	return &entity, nil
}

// Save inserts the entity, filling its generated fields.
func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction, exposing it to repository
// calls through the context. A panic inside fn rolls back and resurfaces as
// an error.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	if err := fn(context.WithValue(ctx, TxContextKey, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
