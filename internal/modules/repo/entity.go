package repo

import (
	"context"
	"errors"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EntityRepo persists and reads entity rows by internal key. It never sees
// external field names; callers work with columns and keys.
type EntityRepo interface {
	Create(ctx context.Context, e model.Entity) error
	// Update applies only the given columns and fails with NotFound when no row matched.
	Update(ctx context.Context, kind model.Kind, key uint, columns map[string]any) error
	Get(ctx context.Context, kind model.Kind, key uint) (model.Entity, error)
	// FindByKeys omits keys without a row. Rows come back in primary key order.
	FindByKeys(ctx context.Context, kind model.Kind, keys []uint) ([]model.Entity, error)
	FindAll(ctx context.Context, kind model.Kind) ([]model.Entity, error)
	FindByColumn(ctx context.Context, kind model.Kind, column string, key uint) ([]model.Entity, error)
	// Inbound lists the external ids of edge.Target rows whose edge.Column equals rootKey.
	Inbound(ctx context.Context, edge *model.Field, rootKey uint) ([]string, error)
	// Lookup returns external id and display name for each existing key.
	Lookup(ctx context.Context, kind model.Kind, keys []uint) (map[uint]model.Ref, error)
	FindUserBySecret(ctx context.Context, digest string) (*model.User, error)
	SetUserSecret(ctx context.Context, key uint, digest string) error
}

type entityRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEntityRepo(db *gorm.DB, log *zap.Logger) EntityRepo {
	return &entityRepo{db: db, log: log}
}

// NewEntity returns an empty row of kind k.
func NewEntity(k model.Kind) model.Entity {
	switch k {
	case model.KindUser:
		return &model.User{}
	case model.KindAccount:
		return &model.Account{}
	case model.KindProject:
		return &model.Project{}
	case model.KindTask:
		return &model.Task{}
	case model.KindUpdate:
		return &model.Update{}
	}
	panic("repo: unknown kind " + string(k))
}

func (r *entityRepo) Create(ctx context.Context, e model.Entity) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a colliding generated id means the id generator or the schema is broken
		r.log.Error("entity insert collided on a unique key",
			zap.String("kind", string(e.EntityKind())),
			zap.String("record_id", e.ExternalID()),
			zap.Error(err))
	}
	return storeErr(err)
}

func (r *entityRepo) Update(ctx context.Context, kind model.Kind, key uint, columns map[string]any) error {
	if len(columns) == 0 {
		return apperr.ConstraintViolation("no fields to update")
	}
	res := r.db.WithContext(ctx).Model(NewEntity(kind)).Where("id = ?", key).Updates(columns)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s record not found", kind)
	}
	return nil
}

func (r *entityRepo) Get(ctx context.Context, kind model.Kind, key uint) (model.Entity, error) {
	rows, err := r.find(ctx, kind, func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", key).Limit(1) })
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("%s record not found", kind)
	}
	return rows[0], nil
}

func (r *entityRepo) FindByKeys(ctx context.Context, kind model.Kind, keys []uint) ([]model.Entity, error) {
	var out []model.Entity
	for _, part := range chunks(keys, inChunk) {
		rows, err := r.find(ctx, kind, func(q *gorm.DB) *gorm.DB { return q.Where("id IN ?", part) })
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (r *entityRepo) FindAll(ctx context.Context, kind model.Kind) ([]model.Entity, error) {
	return r.find(ctx, kind, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *entityRepo) FindByColumn(ctx context.Context, kind model.Kind, column string, key uint) ([]model.Entity, error) {
	if _, ok := model.SchemaOf(kind).FieldByColumn(column); !ok {
		return nil, apperr.Internal("unknown column "+column, nil)
	}
	return r.find(ctx, kind, func(q *gorm.DB) *gorm.DB { return q.Where(column+" = ?", key) })
}

func (r *entityRepo) Inbound(ctx context.Context, edge *model.Field, rootKey uint) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Table(model.SchemaOf(edge.Target).Table).
		Where(edge.Column+" = ?", rootKey).Order("id ASC").Pluck("record_id", &ids).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return ids, nil
}

type refRow struct {
	ID       uint
	RecordID string
	Name     string
}

func (r *entityRepo) Lookup(ctx context.Context, kind model.Kind, keys []uint) (map[uint]model.Ref, error) {
	s := model.SchemaOf(kind)
	sel := "id, record_id, '' AS name"
	if s.NameColumn != "" {
		sel = "id, record_id, " + s.NameColumn + " AS name"
	}
	out := make(map[uint]model.Ref, len(keys))
	for _, part := range chunks(keys, inChunk) {
		var rows []refRow
		if err := r.db.WithContext(ctx).Table(s.Table).Select(sel).Where("id IN ?", part).Scan(&rows).Error; err != nil {
			return nil, storeErr(err)
		}
		for _, row := range rows {
			out[row.ID] = model.Ref{RecordID: row.RecordID, Name: row.Name}
		}
	}
	return out, nil
}

func (r *entityRepo) FindUserBySecret(ctx context.Context, digest string) (*model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("secret_key_hmac = ?", digest).Limit(1).Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user not found")
	}
	return &users[0], nil
}

func (r *entityRepo) SetUserSecret(ctx context.Context, key uint, digest string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", key).Update("secret_key_hmac", digest)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *entityRepo) find(ctx context.Context, kind model.Kind, scope func(*gorm.DB) *gorm.DB) ([]model.Entity, error) {
	q := scope(r.db.WithContext(ctx)).Order("id ASC")
	switch kind {
	case model.KindUser:
		return findRows[model.User](q)
	case model.KindAccount:
		return findRows[model.Account](q)
	case model.KindProject:
		return findRows[model.Project](q)
	case model.KindTask:
		return findRows[model.Task](q)
	case model.KindUpdate:
		return findRows[model.Update](q)
	}
	return nil, apperr.Internal("unknown kind "+string(kind), nil)
}

func findRows[T any, PT interface {
	*T
	model.Entity
}](q *gorm.DB) ([]model.Entity, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]model.Entity, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}
