package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"referral-bot/internal/models"
)

// setupTestDB opens a fresh named in-memory database per test. The name
// keeps the shared cache isolated between tests while letting gorm's pool
// open more than one connection to the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.UserFlag{},
		&models.Setting{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// fakeNotifier records every delivered message.
type fakeNotifier struct {
	mu       sync.Mutex
	messages map[int64][]string
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[int64][]string)}
}

func (f *fakeNotifier) SendMessage(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages[userID] = append(f.messages[userID], text)
	return nil
}

// sent returns the messages delivered to userID containing substr.
func (f *fakeNotifier) sent(userID int64, substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msg := range f.messages[userID] {
		if strings.Contains(msg, substr) {
			n++
		}
	}
	return n
}

// fakeIssuer hands out invite links and counts requests.
type fakeIssuer struct {
	mu    sync.Mutex
	calls int
	link  string
	err   error
}

func (f *fakeIssuer) CreateInviteLink(_ context.Context, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.link, nil
}

func (f *fakeIssuer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeChecker answers subscription checks from a fixed map.
type fakeChecker struct {
	subscribed map[int64]bool
	err        error
}

func (f *fakeChecker) IsSubscribed(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.subscribed[userID], nil
}
