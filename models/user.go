package models

import (
	"strings"
	"time"
)

// User holds a journal participant. Role membership is a set of
// independent flags, not a single enum: one user may be managing editor,
// area editor, referee and author at the same time.
type User struct {
	UserID         int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName      string     `gorm:"column:first_name" json:"first_name"`
	LastName       string     `gorm:"column:last_name" json:"last_name"`
	Email          string     `gorm:"column:email;unique" json:"email"`
	Password       string     `gorm:"column:password" json:"-"`
	ManagingEditor bool       `gorm:"column:managing_editor" json:"managing_editor"`
	AreaEditor     bool       `gorm:"column:area_editor" json:"area_editor"`
	Author         bool       `gorm:"column:author" json:"author"`
	Referee        bool       `gorm:"column:referee" json:"referee"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns "First Last", tolerating blank parts.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
