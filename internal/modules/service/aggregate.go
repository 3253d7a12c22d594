package service

import (
	"context"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/repo"
)

// AggregationResolver derives the link arrays of a row from the rows that
// point at it. Nothing it returns is stored.
type AggregationResolver struct {
	entities repo.EntityRepo
}

func NewAggregationResolver(entities repo.EntityRepo) *AggregationResolver {
	return &AggregationResolver{entities: entities}
}

// Resolve returns every aggregate of root keyed by field name. Empty edges
// map to an empty slice.
func (a *AggregationResolver) Resolve(ctx context.Context, root model.Entity) (map[string][]string, error) {
	edges := model.SchemaOf(root.EntityKind()).Aggregates()
	out := make(map[string][]string, len(edges))
	for _, edge := range edges {
		ids, err := a.entities.Inbound(ctx, edge, root.PrimaryKey())
		if err != nil {
			return nil, err
		}
		out[edge.Name] = distinct(ids)
	}
	return out, nil
}

func distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
