package models

import (
	"time"
)

// Flag keys used by the reward engine.
const (
	FlagNearSent = "near_sent"
	FlagWinSent  = "win_sent"
)

// UserFlag is a one-shot marker: the (user_id, key) uniqueness constraint
// guarantees a named event fires at most once per user.
type UserFlag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_user_flag" json:"user_id"`
	Key       string    `gorm:"size:50;not null;uniqueIndex:idx_user_flag" json:"key"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for UserFlag model
func (UserFlag) TableName() string {
	return "user_flags"
}
