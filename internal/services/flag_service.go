package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"referral-bot/internal/models"
)

// FlagService stores one-shot per-user markers.
type FlagService struct {
	db *gorm.DB
}

func NewFlagService(db *gorm.DB) *FlagService {
	return &FlagService{db: db}
}

// IsSet reports whether the marker exists.
func (s *FlagService) IsSet(userID int64, key string) bool {
	var flag models.UserFlag
	err := s.db.Where("user_id = ? AND key = ?", userID, key).First(&flag).Error
	return err == nil
}

// TrySet creates the (user_id, key) marker and returns true iff this call is
// the one that created it. The uniqueness constraint makes the insert the
// arbiter of the race; callers must branch on the return value, never on a
// separate IsSet check.
func (s *FlagService) TrySet(userID int64, key string) (bool, error) {
	flag := models.UserFlag{
		UserID: userID,
		Key:    key,
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&flag)
	if result.Error != nil {
		return false, fmt.Errorf("failed to set flag %s for %d: %w", key, userID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Clear removes all flags for a user.
func (s *FlagService) Clear(userID int64) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.UserFlag{}).Error
}

// ClearAll removes every flag.
func (s *FlagService) ClearAll() error {
	return s.db.Where("1 = 1").Delete(&models.UserFlag{}).Error
}
