package model

// Kind names an entity kind. The value doubles as the URL segment and table name.
type Kind string

const (
	KindUser    Kind = "users"
	KindAccount Kind = "accounts"
	KindProject Kind = "projects"
	KindTask    Kind = "tasks"
	KindUpdate  Kind = "updates"
)

var Kinds = []Kind{KindUser, KindAccount, KindProject, KindTask, KindUpdate}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Entity is implemented by every persisted row type.
type Entity interface {
	EntityKind() Kind
	PrimaryKey() uint
	ExternalID() string
	// Columns returns scalar and foreign-key column values keyed by column name.
	Columns() map[string]any
}

// Fields is the external, denormalized field set of a record.
type Fields map[string]any

// Record is the caller-facing shape shared by every backend.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields" swaggertype:"object"`
}

// Ref is the external id and display name behind a foreign key.
type Ref struct {
	RecordID string
	Name     string
}
