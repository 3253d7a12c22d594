package service

import (
	"time"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// Resolved carries what a row needs besides its own columns, keyed by field name.
type Resolved struct {
	Links      map[string]string
	Lookups    map[string]string
	Aggregates map[string][]string
}

// FormatRecord renders a row as a record. Scalars without a value are left
// out; link, lookup and aggregate fields are always arrays. Internal keys
// never appear in the output.
func FormatRecord(e model.Entity, r Resolved) model.Record {
	s := model.SchemaOf(e.EntityKind())
	cols := e.Columns()
	fields := make(model.Fields, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Type {
		case model.FieldLink:
			fields[f.Name] = single(r.Links[f.Name])
		case model.FieldLookup:
			fields[f.Name] = single(r.Lookups[f.Name])
		case model.FieldAggregate:
			ids := r.Aggregates[f.Name]
			if ids == nil {
				ids = []string{}
			}
			fields[f.Name] = ids
		default:
			if v, ok := scalar(cols[f.Column]); ok {
				fields[f.Name] = v
			}
		}
	}
	return model.Record{ID: e.ExternalID(), Fields: fields}
}

func single(v string) []string {
	if v == "" {
		return []string{}
	}
	return []string{v}
}

// scalar converts a column value to its wire form.
func scalar(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		return x, x != ""
	case model.TaskStatus:
		return string(x), x != ""
	case *datatypes.Date:
		if x == nil {
			return nil, false
		}
		return time.Time(*x).Format(dateLayout), true
	case datatypes.Date:
		return time.Time(x).Format(dateLayout), true
	case *float64:
		if x == nil {
			return nil, false
		}
		return *x, true
	case float64:
		return x, true
	default:
		return v, true
	}
}

// linkKey extracts a foreign key from a column value.
func linkKey(v any) (uint, bool) {
	switch x := v.(type) {
	case uint:
		return x, x != 0
	case *uint:
		if x == nil {
			return 0, false
		}
		return *x, *x != 0
	}
	return 0, false
}
