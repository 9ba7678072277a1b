package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/utils"
)

// PostgresProperties implements PropertyStore on the properties table.
// Set upserts on the primary key, so each write is atomic per key.
type PostgresProperties struct {
	db *gorm.DB
}

// NewPostgresProperties creates a durable property store on the given database.
func NewPostgresProperties(db *gorm.DB) *PostgresProperties {
	return &PostgresProperties{db: db}
}

func (s *PostgresProperties) Get(ctx context.Context, key string) (string, error) {
	var row models.Property
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: properties get %s: %v", ErrStoreUnavailable, key, err)
	}
	return row.Value, nil
}

func (s *PostgresProperties) Set(ctx context.Context, key, value string) error {
	row := models.Property{Key: key, Value: value, UpdatedAt: utils.UTCNow()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: properties set %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *PostgresProperties) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Property{}).Error
	if err != nil {
		return fmt.Errorf("%w: properties delete %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
