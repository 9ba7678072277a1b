package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/storage"
)

// ShortLinkRepositoryImpl implements ShortLinkRepository on the durable
// property store. Each table is one JSON blob under a fixed key.
//
// Corrupt blobs load as empty tables rather than failing the operation
// (degrade-to-empty): the registry stays available with partially corrupted
// state, and the next save overwrites the bad blob. Store errors, by
// contrast, are surfaced so callers never overwrite state they could not
// read.
type ShortLinkRepositoryImpl struct {
	props storage.PropertyStore
}

func NewShortLinkRepository(props storage.PropertyStore) ShortLinkRepository {
	return &ShortLinkRepositoryImpl{props: props}
}

func loadTable[M any](ctx context.Context, props storage.PropertyStore, key string, empty func() M) (M, error) {
	raw, err := props.Get(ctx, key)
	if err != nil {
		return empty(), fmt.Errorf("failed to load %s: %w", key, err)
	}
	if raw == "" {
		return empty(), nil
	}
	var m M
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Printf("Corrupt blob under %s, treating as empty: %v", key, err)
		return empty(), nil
	}
	return m, nil
}

func saveTable[M any](ctx context.Context, props storage.PropertyStore, key string, m M) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := props.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (r *ShortLinkRepositoryImpl) LoadKeyMap(ctx context.Context) (models.KeyTokenMap, error) {
	return loadTable(ctx, r.props, models.ShortLinkMapKey, func() models.KeyTokenMap {
		return models.KeyTokenMap{}
	})
}

func (r *ShortLinkRepositoryImpl) SaveKeyMap(ctx context.Context, m models.KeyTokenMap) error {
	return saveTable(ctx, r.props, models.ShortLinkMapKey, m)
}

func (r *ShortLinkRepositoryImpl) LoadTargets(ctx context.Context) (models.TokenTargetMap, error) {
	return loadTable(ctx, r.props, models.ShortLinkTargetsKey, func() models.TokenTargetMap {
		return models.TokenTargetMap{}
	})
}

func (r *ShortLinkRepositoryImpl) SaveTargets(ctx context.Context, m models.TokenTargetMap) error {
	return saveTable(ctx, r.props, models.ShortLinkTargetsKey, m)
}

func (r *ShortLinkRepositoryImpl) LoadMetadata(ctx context.Context) (models.TokenMetadataMap, error) {
	return loadTable(ctx, r.props, models.ShortLinkMetadataKey, func() models.TokenMetadataMap {
		return models.TokenMetadataMap{}
	})
}

func (r *ShortLinkRepositoryImpl) SaveMetadata(ctx context.Context, m models.TokenMetadataMap) error {
	return saveTable(ctx, r.props, models.ShortLinkMetadataKey, m)
}

func (r *ShortLinkRepositoryImpl) LoadAnalytics(ctx context.Context) (models.TokenAnalyticsMap, error) {
	return loadTable(ctx, r.props, models.ShortLinkAnalyticsKey, func() models.TokenAnalyticsMap {
		return models.TokenAnalyticsMap{}
	})
}

func (r *ShortLinkRepositoryImpl) SaveAnalytics(ctx context.Context, m models.TokenAnalyticsMap) error {
	return saveTable(ctx, r.props, models.ShortLinkAnalyticsKey, m)
}

// IsStoreUnavailable reports whether err came from the backing store rather
// than from registry logic.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, storage.ErrStoreUnavailable)
}
