package model

import "time"

type Account struct {
	ID                 uint   `gorm:"primaryKey" json:"-"`
	RecordID           string `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	AccountName        string `gorm:"type:text;not null" json:"account_name"`
	AccountType        string `gorm:"type:text" json:"account_type"`
	AccountDescription string `gorm:"type:text" json:"account_description"`
	AccountOwnerID     uint   `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Account <-> User
	AccountOwner *User `gorm:"foreignKey:AccountOwnerID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"-"`
}

func (Account) TableName() string { return "accounts" }

func (Account) EntityKind() Kind      { return KindAccount }
func (a *Account) PrimaryKey() uint   { return a.ID }
func (a *Account) ExternalID() string { return a.RecordID }
func (a *Account) Columns() map[string]any {
	return map[string]any{
		"account_name":        a.AccountName,
		"account_type":        a.AccountType,
		"account_description": a.AccountDescription,
		"account_owner_id":    a.AccountOwnerID,
	}
}
