package model

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	ID                 uint            `gorm:"primaryKey" json:"-"`
	RecordID           string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	ProjectName        string          `gorm:"type:text;not null" json:"project_name"`
	ProjectStatus      string          `gorm:"type:text" json:"project_status"`
	StartDate          *datatypes.Date `gorm:"type:date" json:"start_date"`
	EndDate            *datatypes.Date `gorm:"type:date" json:"end_date"`
	ProjectValue       *float64        `gorm:"type:numeric(14,2)" json:"project_value"`
	ProjectDescription string          `gorm:"type:text" json:"project_description"`
	AccountID          uint            `gorm:"not null;index" json:"-"`
	ProjectOwnerID     uint            `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> Account
	Account *Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`

	// Project <-> User
	ProjectOwner *User `gorm:"foreignKey:ProjectOwnerID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

func (Project) EntityKind() Kind      { return KindProject }
func (p *Project) PrimaryKey() uint   { return p.ID }
func (p *Project) ExternalID() string { return p.RecordID }
func (p *Project) Columns() map[string]any {
	return map[string]any{
		"project_name":        p.ProjectName,
		"project_status":      p.ProjectStatus,
		"start_date":          p.StartDate,
		"end_date":            p.EndDate,
		"project_value":       p.ProjectValue,
		"project_description": p.ProjectDescription,
		"account_id":          p.AccountID,
		"project_owner_id":    p.ProjectOwnerID,
	}
}
