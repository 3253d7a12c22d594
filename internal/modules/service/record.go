package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recordgraph/recordgraph/internal/infra/blob"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/recordgraph/recordgraph/internal/pkg/utils"
	"github.com/recordgraph/recordgraph/internal/pkg/utils/tokens"
	"github.com/recordgraph/recordgraph/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	EventRecordCreated = "record.created"
	EventRecordUpdated = "record.updated"
)

// Roles accepted by Mine for tasks.
const (
	RoleAssigned = "assigned"
	RoleCreated  = "created"
)

// RecordEvent is published after every successful write.
type RecordEvent struct {
	EventID  uuid.UUID         `json:"event_id"`
	Type     string            `json:"type"`
	Kind     model.Kind        `json:"kind"`
	RecordID string            `json:"record_id"`
	Actor    string            `json:"actor,omitempty"`
	Fields   datatypes.JSONMap `json:"fields"`
	At       time.Time         `json:"at"`
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type ExportStore interface {
	UploadJSON(ctx context.Context, keyPrefix string, data interface{}) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type ExportResult struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// IssuedSecret is returned once; only its digest is kept.
type IssuedSecret struct {
	UserID    string `json:"user_id"`
	SecretKey string `json:"secret_key"`
}

type RecordService interface {
	Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error)
	GetMany(ctx context.Context, kind model.Kind, ids []string) ([]model.Record, error)
	Create(ctx context.Context, caller string, kind model.Kind, fields model.Fields) (*model.Record, error)
	Update(ctx context.Context, caller string, kind model.Kind, id string, fields model.Fields) (*model.Record, error)
	Mine(ctx context.Context, caller string, kind model.Kind, role string) ([]model.Record, error)
	ProjectUpdates(ctx context.Context, projectID string, date string) ([]model.Record, error)
	Directory(ctx context.Context) ([]model.Record, error)
	Export(ctx context.Context, kind model.Kind) (*ExportResult, error)
	Authenticate(ctx context.Context, secret string) (*model.Record, error)
	CreateUser(ctx context.Context, name string) (*model.Record, error)
	IssueSecret(ctx context.Context, userID string) (*IssuedSecret, error)
}

type RecordServiceOptions struct {
	Events        EventPublisher
	Exports       ExportStore
	ExportPrefix  string
	PresignExpire time.Duration
	SecretPepper  string
	TokenPrefix   string
}

type recordService struct {
	backend Backend
	opts    RecordServiceOptions
	log     *zap.Logger
}

func NewRecordService(backend Backend, opts RecordServiceOptions, log *zap.Logger) RecordService {
	if opts.PresignExpire <= 0 {
		opts.PresignExpire = 15 * time.Minute
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "exports"
	}
	return &recordService{backend: backend, opts: opts, log: log}
}

func (s *recordService) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	return s.backend.Get(ctx, kind, id)
}

func (s *recordService) GetMany(ctx context.Context, kind model.Kind, ids []string) ([]model.Record, error) {
	return s.backend.GetMany(ctx, kind, ids)
}

// Create fills the kind's owner field with the caller when the payload leaves it out.
func (s *recordService) Create(ctx context.Context, caller string, kind model.Kind, fields model.Fields) (*model.Record, error) {
	if owner := model.SchemaOf(kind).OwnerField; owner != "" && caller != "" {
		if _, ok := fields[owner]; !ok {
			filled := make(model.Fields, len(fields)+1)
			for k, v := range fields {
				filled[k] = v
			}
			filled[owner] = caller
			fields = filled
		}
	}

	rec, err := s.backend.Create(ctx, kind, fields)
	s.countWrite(kind, "create", err)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventRecordCreated, caller, kind, rec)
	return rec, nil
}

func (s *recordService) Update(ctx context.Context, caller string, kind model.Kind, id string, fields model.Fields) (*model.Record, error) {
	rec, err := s.backend.Update(ctx, kind, id, fields)
	s.countWrite(kind, "update", err)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventRecordUpdated, caller, kind, rec)
	return rec, nil
}

// Mine lists the caller's records of kind. For tasks, role picks between
// assigned (default) and created.
func (s *recordService) Mine(ctx context.Context, caller string, kind model.Kind, role string) ([]model.Record, error) {
	var link string
	switch kind {
	case model.KindTask:
		switch role {
		case "", RoleAssigned:
			link = model.FieldAssignedTo
		case RoleCreated:
			link = model.FieldCreatedBy
		default:
			return nil, apperr.ConstraintViolation("role must be %q or %q", RoleAssigned, RoleCreated)
		}
	case model.KindUser:
		return nil, apperr.ConstraintViolation("users have no owner")
	default:
		link = model.SchemaOf(kind).OwnerField
	}
	return s.backend.ListLinked(ctx, kind, link, caller)
}

// ProjectUpdates lists the updates of a project, optionally only those of one day.
func (s *recordService) ProjectUpdates(ctx context.Context, projectID string, date string) ([]model.Record, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, apperr.ConstraintViolation("date must be YYYY-MM-DD")
		}
	}
	recs, err := s.backend.ListLinked(ctx, model.KindUpdate, model.FieldUpdateProject, projectID)
	if err != nil {
		return nil, err
	}
	if date == "" {
		return recs, nil
	}
	out := make([]model.Record, 0, len(recs))
	for _, r := range recs {
		if d, _ := r.Fields[model.FieldUpdateDate].(string); d == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// Directory lists every user ordered by name.
func (s *recordService) Directory(ctx context.Context) ([]model.Record, error) {
	users, err := s.backend.ListAll(ctx, model.KindUser)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		a, _ := users[i].Fields[model.FieldUserName].(string)
		b, _ := users[j].Fields[model.FieldUserName].(string)
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return users, nil
}

// Export writes every record of kind to object storage and returns a presigned link.
func (s *recordService) Export(ctx context.Context, kind model.Kind) (*ExportResult, error) {
	if s.opts.Exports == nil {
		return nil, apperr.Unavailable(errors.New("export storage is not configured"))
	}
	recs, err := s.backend.ListAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	meta, err := s.opts.Exports.UploadJSON(ctx, fmt.Sprintf("%s/%s", s.opts.ExportPrefix, kind), recs)
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("upload export: %w", err))
	}
	url, err := s.opts.Exports.PresignGet(ctx, meta.Key, s.opts.PresignExpire)
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("presign export: %w", err))
	}
	return &ExportResult{Key: meta.Key, URL: url, Count: len(recs)}, nil
}

func (s *recordService) Authenticate(ctx context.Context, secret string) (*model.Record, error) {
	return s.backend.Authenticate(ctx, tokens.HMAC256Hex(s.opts.SecretPepper, secret))
}

func (s *recordService) CreateUser(ctx context.Context, name string) (*model.Record, error) {
	return s.Create(ctx, "", model.KindUser, model.Fields{model.FieldUserName: name})
}

// IssueSecret generates a new bearer secret for a user, replacing any previous one.
func (s *recordService) IssueSecret(ctx context.Context, userID string) (*IssuedSecret, error) {
	token, err := utils.GenerateKey(s.opts.TokenPrefix)
	if err != nil {
		return nil, apperr.Internal("generate secret", err)
	}
	secret, ok := tokens.ParseToken(token, s.opts.TokenPrefix)
	if !ok {
		return nil, apperr.Internal("generated secret lacks the token prefix", nil)
	}
	if err := s.backend.SetSecret(ctx, userID, tokens.HMAC256Hex(s.opts.SecretPepper, secret)); err != nil {
		return nil, err
	}
	return &IssuedSecret{UserID: userID, SecretKey: token}, nil
}

func (s *recordService) countWrite(kind model.Kind, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	telemetry.RecordWrites.WithLabelValues(string(kind), op, outcome).Inc()
}

// publish is best effort; the write already happened.
func (s *recordService) publish(ctx context.Context, eventType, actor string, kind model.Kind, rec *model.Record) {
	if s.opts.Events == nil {
		return
	}
	ev := RecordEvent{
		EventID:  uuid.New(),
		Type:     eventType,
		Kind:     kind,
		RecordID: rec.ID,
		Actor:    actor,
		Fields:   datatypes.JSONMap(rec.Fields),
		At:       time.Now().UTC(),
	}
	if err := s.opts.Events.PublishJSON(ctx, eventType+"."+string(kind), ev); err != nil {
		s.log.Warn("publish record event", zap.String("type", eventType), zap.String("record_id", rec.ID), zap.Error(err))
	}
}
