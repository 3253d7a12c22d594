package model

import (
	"time"

	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
	TaskStatusBlocked    TaskStatus = "Blocked"
)

var TaskStatuses = []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	RecordID     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	TaskName     string          `gorm:"type:text;not null" json:"task_name"`
	Description  string          `gorm:"type:text" json:"description"`
	Status       TaskStatus      `gorm:"type:text;not null;default:'To Do';check:status IN ('To Do','In Progress','Done','Blocked')" json:"status"`
	DueDate      *datatypes.Date `gorm:"type:date" json:"due_date"`
	ProjectID    uint            `gorm:"not null;index" json:"-"`
	AssignedToID uint            `gorm:"not null;index" json:"-"`
	CreatedByID  uint            `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Task <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`

	// Task <-> User (assignee, creator)
	AssignedTo *User `gorm:"foreignKey:AssignedToID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`
	CreatedBy  *User `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`
}

func (Task) TableName() string { return "tasks" }

func (Task) EntityKind() Kind      { return KindTask }
func (t *Task) PrimaryKey() uint   { return t.ID }
func (t *Task) ExternalID() string { return t.RecordID }
func (t *Task) Columns() map[string]any {
	return map[string]any{
		"task_name":      t.TaskName,
		"description":    t.Description,
		"status":         t.Status,
		"due_date":       t.DueDate,
		"project_id":     t.ProjectID,
		"assigned_to_id": t.AssignedToID,
		"created_by_id":  t.CreatedByID,
	}
}
