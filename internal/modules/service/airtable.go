package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/recordgraph/recordgraph/internal/infra/httpclient"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/recordgraph/recordgraph/internal/telemetry"
	"go.uber.org/zap"
)

// secretField holds the user's secret digest in the remote Users table.
const secretField = "secret_key"

// formulaChunk bounds the ids per OR(RECORD_ID()=...) formula to keep URLs short.
const formulaChunk = 50

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AirtableAPI is the subset of the remote record API the backend needs.
type AirtableAPI interface {
	GetRecord(ctx context.Context, table, id string) (*httpclient.AirtableRecord, error)
	ListRecords(ctx context.Context, table, formula string) ([]httpclient.AirtableRecord, error)
	CreateRecord(ctx context.Context, table string, fields map[string]any) (*httpclient.AirtableRecord, error)
	UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*httpclient.AirtableRecord, error)
}

type airtableBackend struct {
	api AirtableAPI
	log *zap.Logger
}

// NewAirtableBackend serves records from an Airtable base. Link ids are
// passed through; the remote store enforces that they exist.
func NewAirtableBackend(api AirtableAPI, log *zap.Logger) Backend {
	return &airtableBackend{api: api, log: log}
}

func (b *airtableBackend) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	if !recordIDPattern.MatchString(id) {
		return nil, apperr.NotFound("%s record not found", kind)
	}
	rec, err := b.api.GetRecord(ctx, model.SchemaOf(kind).AirtableTable, id)
	if err != nil {
		return nil, remoteErr(err)
	}
	out := project(kind, rec)
	return &out, nil
}

func (b *airtableBackend) GetMany(ctx context.Context, kind model.Kind, ids []string) ([]model.Record, error) {
	ids = dedupe(ids)
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if recordIDPattern.MatchString(id) {
			valid = append(valid, id)
		}
	}

	table := model.SchemaOf(kind).AirtableTable
	byID := make(map[string]model.Record, len(valid))
	for start := 0; start < len(valid); start += formulaChunk {
		end := min(start+formulaChunk, len(valid))
		recs, err := b.api.ListRecords(ctx, table, recordIDFormula(valid[start:end]))
		if err != nil {
			return nil, remoteErr(err)
		}
		for i := range recs {
			byID[recs[i].ID] = project(kind, &recs[i])
		}
	}

	out := make([]model.Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	if missing := len(ids) - len(out); missing > 0 {
		telemetry.UnresolvedIDs.WithLabelValues("airtable", string(kind)).Add(float64(missing))
	}
	return out, nil
}

func (b *airtableBackend) ListAll(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	recs, err := b.api.ListRecords(ctx, model.SchemaOf(kind).AirtableTable, "")
	if err != nil {
		return nil, remoteErr(err)
	}
	out := make([]model.Record, len(recs))
	for i := range recs {
		out[i] = project(kind, &recs[i])
	}
	return out, nil
}

// ListLinked reads the inverse link array of the parent and fetches its members.
func (b *airtableBackend) ListLinked(ctx context.Context, kind model.Kind, linkField string, parentID string) ([]model.Record, error) {
	f, ok := model.SchemaOf(kind).Field(linkField)
	if !ok || f.Type != model.FieldLink {
		return nil, apperr.ConstraintViolation("%q is not a link field of %s", linkField, kind)
	}
	parent, err := b.Get(ctx, f.Target, parentID)
	if err != nil {
		return nil, err
	}
	ids, _ := parent.Fields[f.Inverse].([]string)
	return b.GetMany(ctx, kind, ids)
}

func (b *airtableBackend) Create(ctx context.Context, kind model.Kind, fields model.Fields) (*model.Record, error) {
	m, err := NormalizeCreate(kind, fields)
	if err != nil {
		return nil, err
	}
	body, err := remoteFields(m)
	if err != nil {
		return nil, err
	}
	rec, err := b.api.CreateRecord(ctx, model.SchemaOf(kind).AirtableTable, body)
	if err != nil {
		return nil, remoteErr(err)
	}
	out := project(kind, rec)
	return &out, nil
}

func (b *airtableBackend) Update(ctx context.Context, kind model.Kind, id string, fields model.Fields) (*model.Record, error) {
	if !recordIDPattern.MatchString(id) {
		return nil, apperr.NotFound("%s record not found", kind)
	}
	m, err := NormalizeUpdate(kind, fields)
	if err != nil {
		return nil, err
	}
	body, err := remoteFields(m)
	if err != nil {
		return nil, err
	}
	rec, err := b.api.UpdateRecord(ctx, model.SchemaOf(kind).AirtableTable, id, body)
	if err != nil {
		return nil, remoteErr(err)
	}
	out := project(kind, rec)
	return &out, nil
}

func (b *airtableBackend) Authenticate(ctx context.Context, secretDigest string) (*model.Record, error) {
	if !recordIDPattern.MatchString(secretDigest) {
		return nil, apperr.NotFound("user not found")
	}
	formula := fmt.Sprintf(`{%s}="%s"`, secretField, secretDigest)
	recs, err := b.api.ListRecords(ctx, model.SchemaOf(model.KindUser).AirtableTable, formula)
	if err != nil {
		return nil, remoteErr(err)
	}
	if len(recs) == 0 {
		return nil, apperr.NotFound("user not found")
	}
	out := project(model.KindUser, &recs[0])
	return &out, nil
}

func (b *airtableBackend) SetSecret(ctx context.Context, userID string, secretDigest string) error {
	if !recordIDPattern.MatchString(userID) {
		return apperr.NotFound("user not found")
	}
	_, err := b.api.UpdateRecord(ctx, model.SchemaOf(model.KindUser).AirtableTable, userID, map[string]any{secretField: secretDigest})
	return remoteErr(err)
}

func recordIDFormula(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("RECORD_ID()='%s'", id)
	}
	return "OR(" + strings.Join(parts, ",") + ")"
}

// remoteFields renders a validated mutation in the remote store's field format.
func remoteFields(m *Mutation) (map[string]any, error) {
	out := make(map[string]any, len(m.Values))
	for _, v := range m.Values {
		name := v.Field.Name
		switch v.Field.Type {
		case model.FieldLink:
			if v.Null {
				out[name] = []string{}
				continue
			}
			if !recordIDPattern.MatchString(v.Ref) {
				return nil, apperr.InvalidReference("field %q references an unknown %s record", name, v.Field.Target)
			}
			out[name] = []string{v.Ref}
		case model.FieldDate:
			if v.Null {
				out[name] = nil
			} else {
				out[name] = time.Time(*v.Date).Format(dateLayout)
			}
		case model.FieldNumber:
			if v.Null {
				out[name] = nil
			} else {
				out[name] = *v.Num
			}
		default:
			out[name] = v.Text
		}
	}
	return out, nil
}

// project maps a remote record onto the catalog so both backends return the
// same shape. Fields the catalog does not know are dropped.
func project(kind model.Kind, rec *httpclient.AirtableRecord) model.Record {
	s := model.SchemaOf(kind)
	fields := make(model.Fields, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		raw, ok := rec.Fields[f.Name]
		if f.Listy() {
			fields[f.Name] = stringList(raw)
			continue
		}
		if !ok || raw == nil {
			continue
		}
		if str, isStr := raw.(string); isStr && str == "" {
			continue
		}
		fields[f.Name] = raw
	}
	return model.Record{ID: rec.ID, Fields: fields}
}

func stringList(raw any) []string {
	switch x := raw.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, v := range x {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if x != "" {
			return []string{x}
		}
	}
	return []string{}
}

// remoteErr maps remote API failures onto record error kinds.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) {
		return apperr.Unavailable(err)
	}
	switch {
	case apiErr.Status == 404:
		return &apperr.Error{Kind: apperr.KindNotFound, Msg: "record not found", Err: err}
	case apiErr.Status == 422 && isReferenceError(apiErr.Type):
		return &apperr.Error{Kind: apperr.KindInvalidReference, Msg: "referenced record does not exist", Err: err}
	case apiErr.Status == 401 || apiErr.Status == 403 || apiErr.Status == 429 || apiErr.Status >= 500:
		return apperr.Unavailable(err)
	case apiErr.Status >= 400:
		return &apperr.Error{Kind: apperr.KindConstraintViolation, Msg: "record rejected by the store", Err: err}
	}
	return apperr.Unavailable(err)
}

func isReferenceError(t string) bool {
	switch t {
	case "ROW_DOES_NOT_EXIST", "INVALID_RECORD_ID", "ROW_TABLE_DOES_NOT_MATCH_LINKED_TABLE":
		return true
	}
	return false
}
