package repo

import (
	"context"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"gorm.io/gorm"
)

// IdentifierBridge maps external record ids to internal keys and back.
// Single lookups fail with apperr.ErrNotFound; batch lookups omit misses.
type IdentifierBridge interface {
	ResolveInternal(ctx context.Context, kind model.Kind, externalID string) (uint, error)
	ResolveExternal(ctx context.Context, kind model.Kind, key uint) (string, error)
	ResolveInternalMany(ctx context.Context, kind model.Kind, externalIDs []string) (map[string]uint, error)
	ResolveExternalMany(ctx context.Context, kind model.Kind, keys []uint) (map[uint]string, error)
}

type keyPair struct {
	ID       uint
	RecordID string
}

type bridgeRepo struct{ db *gorm.DB }

func NewIdentifierBridge(db *gorm.DB) IdentifierBridge {
	return &bridgeRepo{db: db}
}

func (r *bridgeRepo) ResolveInternal(ctx context.Context, kind model.Kind, externalID string) (uint, error) {
	if externalID == "" {
		return 0, apperr.NotFound("%s record not found", kind)
	}
	var pairs []keyPair
	err := r.db.WithContext(ctx).Table(model.SchemaOf(kind).Table).
		Select("id, record_id").Where("record_id = ?", externalID).Limit(1).Scan(&pairs).Error
	if err != nil {
		return 0, storeErr(err)
	}
	if len(pairs) == 0 {
		return 0, apperr.NotFound("%s record not found", kind)
	}
	return pairs[0].ID, nil
}

func (r *bridgeRepo) ResolveExternal(ctx context.Context, kind model.Kind, key uint) (string, error) {
	var pairs []keyPair
	err := r.db.WithContext(ctx).Table(model.SchemaOf(kind).Table).
		Select("id, record_id").Where("id = ?", key).Limit(1).Scan(&pairs).Error
	if err != nil {
		return "", storeErr(err)
	}
	if len(pairs) == 0 {
		return "", apperr.NotFound("%s record not found", kind)
	}
	return pairs[0].RecordID, nil
}

func (r *bridgeRepo) ResolveInternalMany(ctx context.Context, kind model.Kind, externalIDs []string) (map[string]uint, error) {
	out := make(map[string]uint, len(externalIDs))
	for _, part := range chunks(externalIDs, inChunk) {
		var pairs []keyPair
		err := r.db.WithContext(ctx).Table(model.SchemaOf(kind).Table).
			Select("id, record_id").Where("record_id IN ?", part).Scan(&pairs).Error
		if err != nil {
			return nil, storeErr(err)
		}
		for _, p := range pairs {
			out[p.RecordID] = p.ID
		}
	}
	return out, nil
}

func (r *bridgeRepo) ResolveExternalMany(ctx context.Context, kind model.Kind, keys []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(keys))
	for _, part := range chunks(keys, inChunk) {
		var pairs []keyPair
		err := r.db.WithContext(ctx).Table(model.SchemaOf(kind).Table).
			Select("id, record_id").Where("id IN ?", part).Scan(&pairs).Error
		if err != nil {
			return nil, storeErr(err)
		}
		for _, p := range pairs {
			out[p.ID] = p.RecordID
		}
	}
	return out, nil
}
