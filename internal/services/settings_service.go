package services

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"referral-bot/internal/models"
)

// SettingsService is the persisted key/value configuration store.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the stored value for key, or def when the key is absent.
func (s *SettingsService) Get(key, def string) string {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return def
	}
	return setting.Value
}

// Set upserts a setting in a single statement.
func (s *SettingsService) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Target returns the current invite target, falling back to def when the
// setting is absent or does not parse as an integer.
func (s *SettingsService) Target(def int) int {
	raw := s.Get(models.SettingInviteTarget, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// SetTarget stores a new invite target. Bounds are validated by the caller
// before any write happens.
func (s *SettingsService) SetTarget(n int) error {
	return s.Set(models.SettingInviteTarget, strconv.Itoa(n))
}
