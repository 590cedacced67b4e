package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"referral-bot/internal/platform"
)

// SignupService handles first contact and subscription confirmation, the
// only path through which referrals are credited.
type SignupService struct {
	users     *UserService
	referrals *ReferralService
	settings  *SettingsService
	reward    *RewardService

	checker  platform.SubscriptionChecker
	notifier platform.Notifier

	defaultTarget int
}

func NewSignupService(db *gorm.DB, checker platform.SubscriptionChecker, notifier platform.Notifier,
	reward *RewardService, defaultTarget int) *SignupService {
	return &SignupService{
		users:         NewUserService(db),
		referrals:     NewReferralService(db),
		settings:      NewSettingsService(db),
		reward:        reward,
		checker:       checker,
		notifier:      notifier,
		defaultTarget: defaultTarget,
	}
}

// ErrBanned is returned for users excluded from the bot.
var ErrBanned = errors.New("user is banned")

// Register records first contact. Self-referrals are rejected here, before
// the registry ever sees them; re-registration is a no-op.
func (s *SignupService) Register(userID int64, referrerID *int64) error {
	if referrerID != nil && *referrerID == userID {
		referrerID = nil
	}
	if err := s.users.Ensure(userID, referrerID); err != nil {
		return err
	}
	if s.users.IsBanned(userID) {
		return ErrBanned
	}
	return nil
}

// ConfirmResult reports what a confirmation attempt did.
type ConfirmResult struct {
	Subscribed bool `json:"subscribed"`
	Credited   bool `json:"credited"`
}

// ConfirmSubscription verifies channel membership and, on the very first
// successful confirmation of a referred user, credits their referrer.
// Repeated confirmations are expected traffic and credit nothing.
func (s *SignupService) ConfirmSubscription(ctx context.Context, userID int64) (*ConfirmResult, error) {
	if s.users.IsBanned(userID) {
		return nil, ErrBanned
	}

	// Any verification error counts as not subscribed.
	subscribed, err := s.checker.IsSubscribed(ctx, userID)
	if err != nil {
		log.Printf("Subscription check failed for %d: %v", userID, err)
		subscribed = false
	}
	if !subscribed {
		return &ConfirmResult{Subscribed: false}, nil
	}

	if err := s.users.SetJoinedOK(userID, true); err != nil {
		return nil, fmt.Errorf("failed to mark %d joined: %w", userID, err)
	}

	result := &ConfirmResult{Subscribed: true}

	user, err := s.users.Get(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}

	if user.Banned || !user.JoinedOK || user.ReferrerID == nil || *user.ReferrerID == userID {
		return result, nil
	}

	credited, err := s.referrals.CreditIfUnique(*user.ReferrerID, userID)
	if err != nil {
		return nil, err
	}
	if !credited {
		return result, nil
	}
	result.Credited = true

	s.notifyProgress(ctx, *user.ReferrerID)

	if err := s.reward.MaybeNotifyAndReward(ctx, *user.ReferrerID); err != nil {
		log.Printf("Reward decision failed for %d: %v", *user.ReferrerID, err)
	}

	return result, nil
}

// notifyProgress tells the referrer about the fresh credit. A blocked
// recipient is not an error and never rolls anything back.
func (s *SignupService) notifyProgress(ctx context.Context, referrerID int64) {
	target := s.settings.Target(s.defaultTarget)
	count, err := s.referrals.Count(referrerID)
	if err != nil {
		log.Printf("Failed to count referrals for %d: %v", referrerID, err)
		return
	}

	err = s.notifier.SendMessage(ctx, referrerID,
		fmt.Sprintf("✅ New referral: +1\n📈 %d/%d", count, target))
	if err != nil && !errors.Is(err, platform.ErrRecipientBlocked) {
		log.Printf("Failed to notify %d: %v", referrerID, err)
	}
}
