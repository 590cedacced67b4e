package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"referral-bot/internal/models"
)

// ReferralService owns the referral ledger.
type ReferralService struct {
	db *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

// CreditIfUnique attempts to credit the invited user to the referrer. The
// insert is guarded by the unique index on invited_user_id, so of any number
// of concurrent or repeated attempts for the same invited user exactly one
// returns true. A duplicate is not an error: it is the steady-state outcome
// of repeated confirmation attempts.
func (s *ReferralService) CreditIfUnique(referrerID, invitedUserID int64) (bool, error) {
	referral := models.Referral{
		ReferrerID:    referrerID,
		InvitedUserID: invitedUserID,
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&referral)
	if result.Error != nil {
		return false, fmt.Errorf("failed to credit referral: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Count returns the referrer's lifetime credited-referral count.
func (s *ReferralService) Count(referrerID int64) (int64, error) {
	var n int64
	err := s.db.Model(&models.Referral{}).Where("referrer_id = ?", referrerID).Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CountSince returns referrals credited at or after the given time.
func (s *ReferralService) CountSince(referrerID int64, since time.Time) (int64, error) {
	var n int64
	err := s.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND created_at >= ?", referrerID, since).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Total returns the global credited-referral count.
func (s *ReferralService) Total() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Referral{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ResetUser deletes the user's progress: every referral they are credited
// with as referrer, and all their flags. Rows where the user is the invited
// party are untouched.
func (s *ReferralService) ResetUser(userID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("referrer_id = ?", userID).Delete(&models.Referral{}).Error; err != nil {
			return fmt.Errorf("failed to reset referrals for %d: %w", userID, err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserFlag{}).Error; err != nil {
			return fmt.Errorf("failed to clear flags for %d: %w", userID, err)
		}
		return nil
	})
}

// WipeAll deletes every referral and every flag. Users and settings survive.
func (s *ReferralService) WipeAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Referral{}).Error; err != nil {
			return fmt.Errorf("failed to wipe referrals: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.UserFlag{}).Error; err != nil {
			return fmt.Errorf("failed to wipe flags: %w", err)
		}
		return nil
	})
}
