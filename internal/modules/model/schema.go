package model

// FieldType tells the formatter and the mutation resolver how to treat a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldDate
	FieldStatus
	// FieldLink is a single-valued forward reference stored as a FK column on this table.
	FieldLink
	// FieldAggregate is a derived link array: rows of Target whose Column points at this row.
	FieldAggregate
	// FieldLookup is the display name of the row referenced by the Via link.
	FieldLookup
)

// External field names.
const (
	FieldUserName       = "User Name"
	FieldUserAccounts   = "Accounts"
	FieldUserProjects   = "Projects"
	FieldTasksAssigned  = "Tasks (Assigned To)"
	FieldTasksCreated   = "Tasks (Created By)"
	FieldUserUpdates    = "Updates"
	FieldAccountName    = "Account Name"
	FieldAccountType    = "Account Type"
	FieldAccountDesc    = "Account Description"
	FieldAccountOwner   = "Account Owner"
	FieldAccountProjs   = "Projects"
	FieldProjectName    = "Project Name"
	FieldProjectStatus  = "Project Status"
	FieldStartDate      = "Start Date"
	FieldEndDate        = "End Date"
	FieldProjectValue   = "Project Value"
	FieldProjectDesc    = "Project Description"
	FieldProjectAccount = "Account"
	FieldProjectOwner   = "Project Owner"
	FieldAccountLookup  = "Account Name (from Account)"
	FieldProjectTasks   = "Tasks"
	FieldProjectUpdates = "Updates"
	FieldTaskName       = "Task Name"
	FieldTaskDesc       = "Description"
	FieldTaskStatus     = "Status"
	FieldDueDate        = "Due Date"
	FieldTaskProject    = "Project"
	FieldAssignedTo     = "Assigned To"
	FieldCreatedBy      = "Created By"
	FieldProjectLookup  = "Project Name"
	FieldAssigneeLookup = "Assigned To Name"
	FieldTaskUpdates    = "Updates"
	FieldNotes          = "Notes"
	FieldUpdateType     = "Update Type"
	FieldUpdateDate     = "Date"
	FieldUpdateProject  = "Project"
	FieldUpdateTask     = "Task"
	FieldUpdateOwner    = "Update Owner"
	FieldTaskLookup     = "Task Name"
	FieldOwnerLookup    = "Update Owner Name"
)

type Field struct {
	Name   string
	Column string
	Type   FieldType
	Target Kind
	// Required applies to creation; a required link can never be cleared.
	Required bool
	// Via names the link field a lookup reads through.
	Via string
	// Inverse names the aggregate on Target that lists rows through this link.
	Inverse string
}

// Schema is the static bidirectional mapping between external field names and
// columns for one kind.
type Schema struct {
	Kind          Kind
	Table         string
	AirtableTable string
	IDPrefix      string
	NameColumn    string
	// OwnerField is filled with the caller's id on create when omitted.
	OwnerField string
	Fields     []Field

	byName   map[string]*Field
	byColumn map[string]*Field
}

var schemas = map[Kind]*Schema{
	KindUser: {
		Kind: KindUser, Table: "users", AirtableTable: "Users", IDPrefix: "usr", NameColumn: "user_name",
		Fields: []Field{
			{Name: FieldUserName, Column: "user_name", Type: FieldText, Required: true},
			{Name: FieldUserAccounts, Column: "account_owner_id", Type: FieldAggregate, Target: KindAccount},
			{Name: FieldUserProjects, Column: "project_owner_id", Type: FieldAggregate, Target: KindProject},
			{Name: FieldTasksAssigned, Column: "assigned_to_id", Type: FieldAggregate, Target: KindTask},
			{Name: FieldTasksCreated, Column: "created_by_id", Type: FieldAggregate, Target: KindTask},
			{Name: FieldUserUpdates, Column: "update_owner_id", Type: FieldAggregate, Target: KindUpdate},
		},
	},
	KindAccount: {
		Kind: KindAccount, Table: "accounts", AirtableTable: "Accounts", IDPrefix: "acc", NameColumn: "account_name",
		OwnerField: FieldAccountOwner,
		Fields: []Field{
			{Name: FieldAccountName, Column: "account_name", Type: FieldText, Required: true},
			{Name: FieldAccountType, Column: "account_type", Type: FieldText},
			{Name: FieldAccountDesc, Column: "account_description", Type: FieldText},
			{Name: FieldAccountOwner, Column: "account_owner_id", Type: FieldLink, Target: KindUser, Required: true, Inverse: FieldUserAccounts},
			{Name: FieldAccountProjs, Column: "account_id", Type: FieldAggregate, Target: KindProject},
		},
	},
	KindProject: {
		Kind: KindProject, Table: "projects", AirtableTable: "Projects", IDPrefix: "prj", NameColumn: "project_name",
		OwnerField: FieldProjectOwner,
		Fields: []Field{
			{Name: FieldProjectName, Column: "project_name", Type: FieldText, Required: true},
			{Name: FieldProjectStatus, Column: "project_status", Type: FieldText},
			{Name: FieldStartDate, Column: "start_date", Type: FieldDate},
			{Name: FieldEndDate, Column: "end_date", Type: FieldDate},
			{Name: FieldProjectValue, Column: "project_value", Type: FieldNumber},
			{Name: FieldProjectDesc, Column: "project_description", Type: FieldText},
			{Name: FieldProjectAccount, Column: "account_id", Type: FieldLink, Target: KindAccount, Required: true, Inverse: FieldAccountProjs},
			{Name: FieldProjectOwner, Column: "project_owner_id", Type: FieldLink, Target: KindUser, Required: true, Inverse: FieldUserProjects},
			{Name: FieldAccountLookup, Type: FieldLookup, Via: FieldProjectAccount},
			{Name: FieldProjectTasks, Column: "project_id", Type: FieldAggregate, Target: KindTask},
			{Name: FieldProjectUpdates, Column: "project_id", Type: FieldAggregate, Target: KindUpdate},
		},
	},
	KindTask: {
		Kind: KindTask, Table: "tasks", AirtableTable: "Tasks", IDPrefix: "tsk", NameColumn: "task_name",
		OwnerField: FieldCreatedBy,
		Fields: []Field{
			{Name: FieldTaskName, Column: "task_name", Type: FieldText, Required: true},
			{Name: FieldTaskDesc, Column: "description", Type: FieldText},
			{Name: FieldTaskStatus, Column: "status", Type: FieldStatus},
			{Name: FieldDueDate, Column: "due_date", Type: FieldDate},
			{Name: FieldTaskProject, Column: "project_id", Type: FieldLink, Target: KindProject, Required: true, Inverse: FieldProjectTasks},
			{Name: FieldAssignedTo, Column: "assigned_to_id", Type: FieldLink, Target: KindUser, Required: true, Inverse: FieldTasksAssigned},
			{Name: FieldCreatedBy, Column: "created_by_id", Type: FieldLink, Target: KindUser, Required: true, Inverse: FieldTasksCreated},
			{Name: FieldProjectLookup, Type: FieldLookup, Via: FieldTaskProject},
			{Name: FieldAssigneeLookup, Type: FieldLookup, Via: FieldAssignedTo},
			{Name: FieldTaskUpdates, Column: "task_id", Type: FieldAggregate, Target: KindUpdate},
		},
	},
	KindUpdate: {
		Kind: KindUpdate, Table: "updates", AirtableTable: "Updates", IDPrefix: "upd",
		OwnerField: FieldUpdateOwner,
		Fields: []Field{
			{Name: FieldNotes, Column: "notes", Type: FieldText},
			{Name: FieldUpdateType, Column: "update_type", Type: FieldText},
			{Name: FieldUpdateDate, Column: "date", Type: FieldDate},
			{Name: FieldUpdateProject, Column: "project_id", Type: FieldLink, Target: KindProject, Required: true, Inverse: FieldProjectUpdates},
			{Name: FieldUpdateTask, Column: "task_id", Type: FieldLink, Target: KindTask, Inverse: FieldTaskUpdates},
			{Name: FieldUpdateOwner, Column: "update_owner_id", Type: FieldLink, Target: KindUser, Required: true, Inverse: FieldUserUpdates},
			{Name: FieldProjectLookup, Type: FieldLookup, Via: FieldUpdateProject},
			{Name: FieldTaskLookup, Type: FieldLookup, Via: FieldUpdateTask},
			{Name: FieldOwnerLookup, Type: FieldLookup, Via: FieldUpdateOwner},
		},
	},
}

func init() {
	for _, s := range schemas {
		s.byName = make(map[string]*Field, len(s.Fields))
		s.byColumn = make(map[string]*Field, len(s.Fields))
		for i := range s.Fields {
			f := &s.Fields[i]
			s.byName[f.Name] = f
			if f.Column != "" && f.Type != FieldAggregate {
				s.byColumn[f.Column] = f
			}
		}
	}
}

// SchemaOf returns the catalog entry of k. It panics on an unknown kind since
// kinds only come from ParseKind or the Kind constants.
func SchemaOf(k Kind) *Schema {
	s, ok := schemas[k]
	if !ok {
		panic("model: unknown kind " + string(k))
	}
	return s
}

func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldByColumn maps a column of this kind's table back to its external field.
func (s *Schema) FieldByColumn(column string) (*Field, bool) {
	f, ok := s.byColumn[column]
	return f, ok
}

func (s *Schema) fieldsOf(t FieldType) []*Field {
	var out []*Field
	for i := range s.Fields {
		if s.Fields[i].Type == t {
			out = append(out, &s.Fields[i])
		}
	}
	return out
}

func (s *Schema) Links() []*Field      { return s.fieldsOf(FieldLink) }
func (s *Schema) Aggregates() []*Field { return s.fieldsOf(FieldAggregate) }
func (s *Schema) Lookups() []*Field    { return s.fieldsOf(FieldLookup) }

// Writable reports whether callers may set the field directly.
func (f *Field) Writable() bool {
	return f.Type != FieldAggregate && f.Type != FieldLookup
}

// Listy reports whether the field is always rendered as an array.
func (f *Field) Listy() bool {
	return f.Type == FieldLink || f.Type == FieldAggregate || f.Type == FieldLookup
}
