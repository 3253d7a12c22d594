package model

import (
	"time"

	"gorm.io/datatypes"
)

// Update is a dated note on a project, optionally about one of its tasks.
type Update struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	RecordID      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	UpdateType    string          `gorm:"type:text" json:"update_type"`
	Date          *datatypes.Date `gorm:"type:date;index" json:"date"`
	ProjectID     uint            `gorm:"not null;index" json:"-"`
	TaskID        *uint           `gorm:"index" json:"-"`
	UpdateOwnerID uint            `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Update <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`

	// Update <-> Task (optional)
	Task *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`

	// Update <-> User
	UpdateOwner *User `gorm:"foreignKey:UpdateOwnerID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`
}

func (Update) TableName() string { return "updates" }

func (Update) EntityKind() Kind      { return KindUpdate }
func (u *Update) PrimaryKey() uint   { return u.ID }
func (u *Update) ExternalID() string { return u.RecordID }
func (u *Update) Columns() map[string]any {
	return map[string]any{
		"notes":           u.Notes,
		"update_type":     u.UpdateType,
		"date":            u.Date,
		"project_id":      u.ProjectID,
		"task_id":         u.TaskID,
		"update_owner_id": u.UpdateOwnerID,
	}
}
