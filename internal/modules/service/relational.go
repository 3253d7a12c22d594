package service

import (
	"context"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/repo"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/recordgraph/recordgraph/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type relationalBackend struct {
	bridge      repo.IdentifierBridge
	entities    repo.EntityRepo
	aggregates  *AggregationResolver
	mutations   *MutationResolver
	concurrency int
	log         *zap.Logger
}

// NewRelationalBackend serves records from the relational entity store.
// concurrency bounds the aggregation fan-out of one bulk read.
func NewRelationalBackend(bridge repo.IdentifierBridge, entities repo.EntityRepo, concurrency int, log *zap.Logger) Backend {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &relationalBackend{
		bridge:      bridge,
		entities:    entities,
		aggregates:  NewAggregationResolver(entities),
		mutations:   NewMutationResolver(bridge, entities),
		concurrency: concurrency,
		log:         log,
	}
}

func (b *relationalBackend) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	key, err := b.bridge.ResolveInternal(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return b.getByKey(ctx, kind, key)
}

func (b *relationalBackend) getByKey(ctx context.Context, kind model.Kind, key uint) (*model.Record, error) {
	e, err := b.entities.Get(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	recs, err := b.assemble(ctx, []model.Entity{e})
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// GetMany resolves all ids in one batch, loads the rows in one query and
// aggregates rows concurrently.
func (b *relationalBackend) GetMany(ctx context.Context, kind model.Kind, ids []string) ([]model.Record, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []model.Record{}, nil
	}

	resolved, err := b.bridge.ResolveInternalMany(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	if missing := len(ids) - len(resolved); missing > 0 {
		telemetry.UnresolvedIDs.WithLabelValues("relational", string(kind)).Add(float64(missing))
		b.log.Debug("bulk read dropped unresolved ids", zap.String("kind", string(kind)), zap.Int("count", missing))
	}
	keys := make([]uint, 0, len(resolved))
	for _, k := range resolved {
		keys = append(keys, k)
	}

	rows, err := b.entities.FindByKeys(ctx, kind, keys)
	if err != nil {
		return nil, err
	}
	recs, err := b.assemble(ctx, rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(recs))
	for i := range recs {
		byID[recs[i].ID] = i
	}
	out := make([]model.Record, 0, len(recs))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			out = append(out, recs[i])
		}
	}
	return out, nil
}

func (b *relationalBackend) ListAll(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	rows, err := b.entities.FindAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	return b.assemble(ctx, rows)
}

func (b *relationalBackend) ListLinked(ctx context.Context, kind model.Kind, linkField string, parentID string) ([]model.Record, error) {
	f, ok := model.SchemaOf(kind).Field(linkField)
	if !ok || f.Type != model.FieldLink {
		return nil, apperr.ConstraintViolation("%q is not a link field of %s", linkField, kind)
	}
	parent, err := b.bridge.ResolveInternal(ctx, f.Target, parentID)
	if err != nil {
		return nil, err
	}
	rows, err := b.entities.FindByColumn(ctx, kind, f.Column, parent)
	if err != nil {
		return nil, err
	}
	return b.assemble(ctx, rows)
}

func (b *relationalBackend) Create(ctx context.Context, kind model.Kind, fields model.Fields) (*model.Record, error) {
	e, err := b.mutations.Create(ctx, kind, fields)
	if err != nil {
		return nil, err
	}
	return b.getByKey(ctx, kind, e.PrimaryKey())
}

func (b *relationalBackend) Update(ctx context.Context, kind model.Kind, id string, fields model.Fields) (*model.Record, error) {
	key, err := b.bridge.ResolveInternal(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := b.mutations.Update(ctx, kind, key, fields); err != nil {
		return nil, err
	}
	return b.getByKey(ctx, kind, key)
}

func (b *relationalBackend) Authenticate(ctx context.Context, secretDigest string) (*model.Record, error) {
	u, err := b.entities.FindUserBySecret(ctx, secretDigest)
	if err != nil {
		return nil, err
	}
	recs, err := b.assemble(ctx, []model.Entity{u})
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

func (b *relationalBackend) SetSecret(ctx context.Context, userID string, secretDigest string) error {
	key, err := b.bridge.ResolveInternal(ctx, model.KindUser, userID)
	if err != nil {
		return err
	}
	return b.entities.SetUserSecret(ctx, key, secretDigest)
}

// assemble formats rows of one kind, keeping their order. Forward links and
// lookups are resolved per link field in one batch; aggregates run per row.
func (b *relationalBackend) assemble(ctx context.Context, rows []model.Entity) ([]model.Record, error) {
	if len(rows) == 0 {
		return []model.Record{}, nil
	}
	s := model.SchemaOf(rows[0].EntityKind())

	resolved := make([]Resolved, len(rows))
	for i := range resolved {
		resolved[i] = Resolved{Links: map[string]string{}, Lookups: map[string]string{}}
	}

	lookupsVia := make(map[string][]*model.Field)
	for _, lf := range s.Lookups() {
		lookupsVia[lf.Via] = append(lookupsVia[lf.Via], lf)
	}

	for _, link := range s.Links() {
		keys := make([]uint, 0, len(rows))
		for _, row := range rows {
			if k, ok := linkKey(row.Columns()[link.Column]); ok {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			continue
		}

		var refs map[uint]model.Ref
		if len(lookupsVia[link.Name]) > 0 {
			var err error
			if refs, err = b.entities.Lookup(ctx, link.Target, keys); err != nil {
				return nil, err
			}
		} else {
			ext, err := b.bridge.ResolveExternalMany(ctx, link.Target, keys)
			if err != nil {
				return nil, err
			}
			refs = make(map[uint]model.Ref, len(ext))
			for k, id := range ext {
				refs[k] = model.Ref{RecordID: id}
			}
		}

		for i, row := range rows {
			k, ok := linkKey(row.Columns()[link.Column])
			if !ok {
				continue
			}
			ref, ok := refs[k]
			if !ok {
				continue
			}
			resolved[i].Links[link.Name] = ref.RecordID
			for _, lf := range lookupsVia[link.Name] {
				resolved[i].Lookups[lf.Name] = ref.Name
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			aggs, err := b.aggregates.Resolve(gctx, row)
			if err != nil {
				return err
			}
			resolved[i].Aggregates = aggs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Record, len(rows))
	for i, row := range rows {
		out[i] = FormatRecord(row, resolved[i])
	}
	return out, nil
}
