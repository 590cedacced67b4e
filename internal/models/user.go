package models

import (
	"time"
)

// User represents a platform account known to the bot.
// ReferrerID is set once at first contact and never overwritten afterwards.
type User struct {
	UserID     int64     `gorm:"primaryKey;column:user_id" json:"user_id"`
	ReferrerID *int64    `gorm:"index" json:"referrer_id,omitempty"`
	JoinedOK   bool      `gorm:"default:false" json:"joined_ok"`
	Banned     bool      `gorm:"default:false" json:"banned"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
