package models

import (
	"time"
)

// Referral represents one credited invitation. The unique index on
// InvitedUserID is the deduplication invariant: an invited user can be
// credited to exactly one referrer, exactly once, ever.
type Referral struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReferrerID    int64     `gorm:"not null;index" json:"referrer_id"`
	InvitedUserID int64     `gorm:"not null;uniqueIndex" json:"invited_user_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Referral model
func (Referral) TableName() string {
	return "referrals"
}
