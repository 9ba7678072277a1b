// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/eventdesk/eventdesk/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// EventRepository defines operations for event rows. ListAll returns every
// row in insertion order; the idempotent-create flow scans it linearly for
// name matches, so the table is expected to stay small.
type EventRepository interface {
	Repository[models.Event, models.EventFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Event, error)
	ListAll(ctx context.Context) ([]*models.Event, error)
	UpdateStatus(ctx context.Context, uuid string, status string) error
	SetDefault(ctx context.Context, uuid string) error
	Delete(ctx context.Context, uuid string) error
}

// ShortLinkRepository persists the four shortlink tables as whole JSON blobs
// in the durable property store. Each Save* writes its entire table back;
// blob writes are atomic per key but concurrent writers race at the blob
// level (last writer wins). Malformed stored JSON loads as an empty table.
type ShortLinkRepository interface {
	LoadKeyMap(ctx context.Context) (models.KeyTokenMap, error)
	SaveKeyMap(ctx context.Context, m models.KeyTokenMap) error

	LoadTargets(ctx context.Context) (models.TokenTargetMap, error)
	SaveTargets(ctx context.Context, m models.TokenTargetMap) error

	LoadMetadata(ctx context.Context) (models.TokenMetadataMap, error)
	SaveMetadata(ctx context.Context, m models.TokenMetadataMap) error

	LoadAnalytics(ctx context.Context) (models.TokenAnalyticsMap, error)
	SaveAnalytics(ctx context.Context, m models.TokenAnalyticsMap) error
}
