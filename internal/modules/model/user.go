package model

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	RecordID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	UserName string `gorm:"type:text;not null" json:"user_name"`

	// HMAC digest of the user's secret key; the key itself is never stored.
	SecretKeyHMAC *string `gorm:"type:char(64);uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (User) EntityKind() Kind      { return KindUser }
func (u *User) PrimaryKey() uint   { return u.ID }
func (u *User) ExternalID() string { return u.RecordID }
func (u *User) Columns() map[string]any {
	return map[string]any{"user_name": u.UserName}
}
