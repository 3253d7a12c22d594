package service

import (
	"context"

	"github.com/recordgraph/recordgraph/internal/modules/model"
)

// Backend is one record store answering the record contract. Implementations
// return identical record shapes; callers never branch on which one is active.
type Backend interface {
	// Get returns one record or apperr.ErrNotFound.
	Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error)
	// GetMany returns the records of ids in input order. Unknown ids are
	// dropped and duplicates collapse to their first occurrence.
	GetMany(ctx context.Context, kind model.Kind, ids []string) ([]model.Record, error)
	ListAll(ctx context.Context, kind model.Kind) ([]model.Record, error)
	// ListLinked returns the records of kind whose link field points at parentID.
	ListLinked(ctx context.Context, kind model.Kind, linkField string, parentID string) ([]model.Record, error)
	Create(ctx context.Context, kind model.Kind, fields model.Fields) (*model.Record, error)
	Update(ctx context.Context, kind model.Kind, id string, fields model.Fields) (*model.Record, error)
	// Authenticate returns the user owning the secret digest.
	Authenticate(ctx context.Context, secretDigest string) (*model.Record, error)
	SetSecret(ctx context.Context, userID string, secretDigest string) error
}

// dedupe keeps the first occurrence of every non-empty id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
