package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/repo"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/recordgraph/recordgraph/internal/pkg/utils"
	"gorm.io/datatypes"
)

// maxNumber is the first magnitude a numeric(14,2) column cannot hold.
const maxNumber = 1e12

// Value is one validated payload field. Exactly one of the typed members is
// meaningful, chosen by Field.Type; Null marks an explicit clear.
type Value struct {
	Field *model.Field
	Null  bool
	Text  string
	Date  *datatypes.Date
	Num   *float64
	// Ref is the external id a link points at.
	Ref string
}

// Mutation is a payload checked against the field catalog, before any
// reference has been resolved.
type Mutation struct {
	Kind   model.Kind
	Values []Value
}

func (m *Mutation) has(name string) bool {
	for _, v := range m.Values {
		if v.Field.Name == name {
			return true
		}
	}
	return false
}

// NormalizeCreate validates a create payload and fills column defaults.
func NormalizeCreate(kind model.Kind, fields model.Fields) (*Mutation, error) {
	m, err := normalize(kind, fields)
	if err != nil {
		return nil, err
	}
	s := model.SchemaOf(kind)
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Required && !m.has(f.Name) {
			return nil, apperr.ConstraintViolation("missing required field %q", f.Name)
		}
		if f.Type == model.FieldStatus && !m.has(f.Name) {
			m.Values = append(m.Values, Value{Field: f, Text: string(model.TaskStatusToDo)})
		}
	}
	return m, nil
}

// NormalizeUpdate validates a partial update payload. At least one field is required.
func NormalizeUpdate(kind model.Kind, fields model.Fields) (*Mutation, error) {
	if len(fields) == 0 {
		return nil, apperr.ConstraintViolation("no fields to update")
	}
	return normalize(kind, fields)
}

func normalize(kind model.Kind, fields model.Fields) (*Mutation, error) {
	s := model.SchemaOf(kind)
	m := &Mutation{Kind: kind, Values: make([]Value, 0, len(fields))}
	// catalog order keeps resolution and error reporting deterministic
	for i := range s.Fields {
		f := &s.Fields[i]
		raw, ok := fields[f.Name]
		if !ok {
			continue
		}
		if !f.Writable() {
			return nil, apperr.ConstraintViolation("field %q is read-only", f.Name)
		}
		v, err := parseValue(f, raw)
		if err != nil {
			return nil, err
		}
		if v.Null && f.Required {
			return nil, apperr.ConstraintViolation("field %q cannot be empty", f.Name)
		}
		m.Values = append(m.Values, v)
	}
	for name := range fields {
		if _, ok := s.Field(name); !ok {
			return nil, apperr.ConstraintViolation("unknown field %q", name)
		}
	}
	return m, nil
}

func parseValue(f *model.Field, raw any) (Value, error) {
	v := Value{Field: f}
	switch f.Type {
	case model.FieldText:
		if raw == nil {
			v.Null = true
			return v, nil
		}
		s, ok := raw.(string)
		if !ok {
			return v, apperr.ConstraintViolation("field %q must be a string", f.Name)
		}
		if strings.ContainsRune(s, 0) {
			return v, apperr.ConstraintViolation("field %q must not contain NUL characters", f.Name)
		}
		v.Text, v.Null = s, s == ""
	case model.FieldStatus:
		s, _ := raw.(string)
		if !model.TaskStatus(s).Valid() {
			return v, apperr.ConstraintViolation("field %q must be one of To Do, In Progress, Done, Blocked", f.Name)
		}
		v.Text = s
	case model.FieldDate:
		s, ok := raw.(string)
		if raw != nil && !ok {
			return v, apperr.ConstraintViolation("field %q must be a YYYY-MM-DD date", f.Name)
		}
		if s == "" {
			v.Null = true
			return v, nil
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return v, apperr.ConstraintViolation("field %q must be a YYYY-MM-DD date", f.Name)
		}
		d := datatypes.Date(t)
		v.Date = &d
	case model.FieldNumber:
		n, null, err := parseNumber(raw)
		if err != nil {
			return v, apperr.ConstraintViolation("field %q must be a finite number below 1e12", f.Name)
		}
		v.Num, v.Null = n, null
	case model.FieldLink:
		ref, err := parseRef(raw)
		if err != nil {
			return v, apperr.ConstraintViolation("field %q must be a record id or a list of at most one record id", f.Name)
		}
		v.Ref, v.Null = ref, ref == ""
	}
	return v, nil
}

func parseNumber(raw any) (*float64, bool, error) {
	var n float64
	switch x := raw.(type) {
	case nil:
		return nil, true, nil
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, false, err
		}
		n = f
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, true, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, false, err
		}
		n = f
	default:
		return nil, false, errors.New("not a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) >= maxNumber {
		return nil, false, errors.New("number out of range")
	}
	return &n, false, nil
}

// parseRef accepts "id", ["id"], [] and null.
func parseRef(raw any) (string, error) {
	switch x := raw.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []string:
		if len(x) > 1 {
			return "", errors.New("too many ids")
		}
		if len(x) == 1 {
			return x[0], nil
		}
		return "", nil
	case []any:
		if len(x) > 1 {
			return "", errors.New("too many ids")
		}
		if len(x) == 0 {
			return "", nil
		}
		s, ok := x[0].(string)
		if !ok {
			return "", errors.New("id is not a string")
		}
		return s, nil
	}
	return "", errors.New("unsupported link value")
}

// MutationResolver turns validated payloads into normalized writes. Every
// link is resolved to an internal key before the store is touched.
type MutationResolver struct {
	bridge   repo.IdentifierBridge
	entities repo.EntityRepo
}

func NewMutationResolver(bridge repo.IdentifierBridge, entities repo.EntityRepo) *MutationResolver {
	return &MutationResolver{bridge: bridge, entities: entities}
}

// Create inserts a new row with a fresh external id.
func (r *MutationResolver) Create(ctx context.Context, kind model.Kind, fields model.Fields) (model.Entity, error) {
	m, err := NormalizeCreate(kind, fields)
	if err != nil {
		return nil, err
	}
	cols, err := r.columns(ctx, m)
	if err != nil {
		return nil, err
	}
	recordID, err := utils.GenerateRecordID(model.SchemaOf(kind).IDPrefix)
	if err != nil {
		return nil, apperr.Internal("generate record id", err)
	}
	e := buildEntity(kind, recordID, cols)
	if err := r.entities.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies a partial payload to the row behind key.
func (r *MutationResolver) Update(ctx context.Context, kind model.Kind, key uint, fields model.Fields) error {
	m, err := NormalizeUpdate(kind, fields)
	if err != nil {
		return err
	}
	cols, err := r.columns(ctx, m)
	if err != nil {
		return err
	}
	return r.entities.Update(ctx, kind, key, cols)
}

// columns resolves links and maps every value to its column. A cleared value
// maps to nil.
func (r *MutationResolver) columns(ctx context.Context, m *Mutation) (map[string]any, error) {
	cols := make(map[string]any, len(m.Values))
	for _, v := range m.Values {
		switch {
		case v.Field.Type == model.FieldLink:
			if v.Null {
				cols[v.Field.Column] = nil
				continue
			}
			key, err := r.bridge.ResolveInternal(ctx, v.Field.Target, v.Ref)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.InvalidReference("field %q references an unknown %s record", v.Field.Name, v.Field.Target)
			}
			if err != nil {
				return nil, err
			}
			cols[v.Field.Column] = key
		case v.Field.Type == model.FieldDate:
			if v.Null {
				cols[v.Field.Column] = nil
			} else {
				cols[v.Field.Column] = *v.Date
			}
		case v.Field.Type == model.FieldNumber:
			if v.Null {
				cols[v.Field.Column] = nil
			} else {
				cols[v.Field.Column] = *v.Num
			}
		default:
			cols[v.Field.Column] = v.Text
		}
	}
	return cols, nil
}

func buildEntity(kind model.Kind, recordID string, cols map[string]any) model.Entity {
	text := func(c string) string { s, _ := cols[c].(string); return s }
	key := func(c string) uint { k, _ := cols[c].(uint); return k }
	date := func(c string) *datatypes.Date {
		if d, ok := cols[c].(datatypes.Date); ok {
			return &d
		}
		return nil
	}

	switch kind {
	case model.KindUser:
		return &model.User{RecordID: recordID, UserName: text("user_name")}
	case model.KindAccount:
		return &model.Account{
			RecordID:           recordID,
			AccountName:        text("account_name"),
			AccountType:        text("account_type"),
			AccountDescription: text("account_description"),
			AccountOwnerID:     key("account_owner_id"),
		}
	case model.KindProject:
		p := &model.Project{
			RecordID:           recordID,
			ProjectName:        text("project_name"),
			ProjectStatus:      text("project_status"),
			StartDate:          date("start_date"),
			EndDate:            date("end_date"),
			ProjectDescription: text("project_description"),
			AccountID:          key("account_id"),
			ProjectOwnerID:     key("project_owner_id"),
		}
		if n, ok := cols["project_value"].(float64); ok {
			p.ProjectValue = &n
		}
		return p
	case model.KindTask:
		return &model.Task{
			RecordID:     recordID,
			TaskName:     text("task_name"),
			Description:  text("description"),
			Status:       model.TaskStatus(text("status")),
			DueDate:      date("due_date"),
			ProjectID:    key("project_id"),
			AssignedToID: key("assigned_to_id"),
			CreatedByID:  key("created_by_id"),
		}
	case model.KindUpdate:
		u := &model.Update{
			RecordID:      recordID,
			Notes:         text("notes"),
			UpdateType:    text("update_type"),
			Date:          date("date"),
			ProjectID:     key("project_id"),
			UpdateOwnerID: key("update_owner_id"),
		}
		if k := key("task_id"); k != 0 {
			u.TaskID = &k
		}
		return u
	}
	panic("service: unknown kind " + string(kind))
}
