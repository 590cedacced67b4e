package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestEnsureFirstTouchWins(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	referrer := int64(10)
	if err := service.Ensure(1, &referrer); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	// Re-ensuring with a different referrer must not overwrite anything.
	other := int64(20)
	if err := service.Ensure(1, &other); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := service.Ensure(1, nil); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	user, err := service.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if user.ReferrerID == nil || *user.ReferrerID != 10 {
		t.Errorf("expected referrer 10 to stick, got %v", user.ReferrerID)
	}
}

func TestGetAbsentUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	_, err := service.Get(999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSetJoinedOK(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	// Absent user: silent zero rows, not an error.
	if err := service.SetJoinedOK(999, true); err != nil {
		t.Errorf("expected no error for absent user, got %v", err)
	}

	if err := service.Ensure(1, nil); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := service.SetJoinedOK(1, true); err != nil {
		t.Fatalf("SetJoinedOK failed: %v", err)
	}

	user, err := service.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !user.JoinedOK {
		t.Error("expected joined_ok true")
	}

	if err := service.SetJoinedOK(1, false); err != nil {
		t.Fatalf("SetJoinedOK failed: %v", err)
	}
	user, _ = service.Get(1)
	if user.JoinedOK {
		t.Error("expected joined_ok false after re-check")
	}
}

func TestBanUnban(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	// An absent user is never banned.
	if service.IsBanned(999) {
		t.Error("absent user must not be banned")
	}

	if err := service.Ensure(1, nil); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if service.IsBanned(1) {
		t.Error("fresh user must not be banned")
	}

	if err := service.Ban(1); err != nil {
		t.Fatalf("Ban failed: %v", err)
	}
	if !service.IsBanned(1) {
		t.Error("expected user banned")
	}

	if err := service.Unban(1); err != nil {
		t.Fatalf("Unban failed: %v", err)
	}
	if service.IsBanned(1) {
		t.Error("expected user unbanned")
	}
}
