package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"referral-bot/internal/models"
)

// UserService is the registry of known platform users.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Ensure creates the user record if it does not exist yet. The referrer set
// at creation is first-touch: an existing record is never modified here.
func (s *UserService) Ensure(userID int64, referrerID *int64) error {
	user := models.User{
		UserID:     userID,
		ReferrerID: referrerID,
	}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("failed to ensure user %d: %w", userID, err)
	}
	return nil
}

// Get returns the user record, or gorm.ErrRecordNotFound when absent.
func (s *UserService) Get(userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetJoinedOK updates the subscription-confirmed state. Updating an absent
// user silently affects zero rows.
func (s *UserService) SetJoinedOK(userID int64, ok bool) error {
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		Update("joined_ok", ok).Error
}

// IsBanned reports the ban state; an absent user is never banned.
func (s *UserService) IsBanned(userID int64) bool {
	var user models.User
	if err := s.db.Select("banned").Where("user_id = ?", userID).First(&user).Error; err != nil {
		return false
	}
	return user.Banned
}

// Ban marks a user as banned.
func (s *UserService) Ban(userID int64) error {
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		Update("banned", true).Error
}

// Unban lifts a ban.
func (s *UserService) Unban(userID int64) error {
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		Update("banned", false).Error
}

// Count returns the number of known users.
func (s *UserService) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
