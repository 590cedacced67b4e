package services

import (
	"testing"

	"referral-bot/internal/models"
)

func TestSettingsGetDefault(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	if got := service.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for absent key, got %q", got)
	}
	if got := service.Target(5); got != 5 {
		t.Errorf("expected default target 5, got %d", got)
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	if err := service.SetTarget(3); err != nil {
		t.Fatalf("SetTarget failed: %v", err)
	}
	if got := service.Target(5); got != 3 {
		t.Errorf("expected target 3, got %d", got)
	}

	// Second set overwrites, it does not duplicate the key.
	if err := service.SetTarget(10); err != nil {
		t.Fatalf("SetTarget failed: %v", err)
	}
	if got := service.Target(5); got != 10 {
		t.Errorf("expected target 10, got %d", got)
	}

	var n int64
	db.Model(&models.Setting{}).Count(&n)
	if n != 1 {
		t.Errorf("expected a single settings row, got %d", n)
	}
}

func TestTargetUnparseableFallsBack(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	if err := service.Set(models.SettingInviteTarget, "not-a-number"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := service.Target(5); got != 5 {
		t.Errorf("expected fallback target 5 on parse failure, got %d", got)
	}
}
