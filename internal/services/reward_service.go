package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referral-bot/internal/models"
	"referral-bot/internal/platform"
)

// RewardService decides when the near-goal and goal-reached events fire.
// It is stateless orchestration over the ledger, the flag store and the
// settings store: the one-shot flags are the only guard, so invoking it any
// number of times at the same count emits each event at most once.
type RewardService struct {
	settings  *SettingsService
	flags     *FlagService
	referrals *ReferralService

	notifier platform.Notifier
	invites  platform.InviteIssuer

	privateChannelID int64
	defaultTarget    int
}

func NewRewardService(db *gorm.DB, notifier platform.Notifier, invites platform.InviteIssuer,
	privateChannelID int64, defaultTarget int) *RewardService {
	return &RewardService{
		settings:         NewSettingsService(db),
		flags:            NewFlagService(db),
		referrals:        NewReferralService(db),
		notifier:         notifier,
		invites:          invites,
		privateChannelID: privateChannelID,
		defaultTarget:    defaultTarget,
	}
}

// MaybeNotifyAndReward runs the per-referrer state machine once. Called
// after every successful credit, and safe to call on retries.
func (s *RewardService) MaybeNotifyAndReward(ctx context.Context, referrerID int64) error {
	target := s.settings.Target(s.defaultTarget)

	count, err := s.referrals.Count(referrerID)
	if err != nil {
		return fmt.Errorf("failed to count referrals for %d: %w", referrerID, err)
	}

	if count == int64(target-1) {
		won, err := s.flags.TrySet(referrerID, models.FlagNearSent)
		if err != nil {
			return err
		}
		if won {
			s.send(ctx, referrerID, fmt.Sprintf(
				"🔥 Almost there!\n\nYou are at %d/%d.\nJust 1 more person to go 💪",
				count, target))
		}
	}

	if count >= int64(target) {
		won, err := s.flags.TrySet(referrerID, models.FlagWinSent)
		if err != nil {
			return err
		}
		if won {
			s.issueReward(ctx, referrerID, target)
		}
	}

	return nil
}

// issueReward requests the single-use invite link and delivers it. On
// failure the win flag stays set: the user is never rewarded twice, and the
// operator's recovery path is an explicit reset.
func (s *RewardService) issueReward(ctx context.Context, referrerID int64, target int) {
	name := fmt.Sprintf("reward_%d_%s", referrerID, uuid.NewString()[:8])

	link, err := s.invites.CreateInviteLink(ctx, s.privateChannelID, name)
	if err != nil {
		log.Printf("Invite link issuance failed for %d: %v", referrerID, err)
		if errors.Is(err, platform.ErrForbidden) {
			s.send(ctx, referrerID,
				"❌ Could not create your invite link.\n"+
					"The bot is not an admin of the private channel or lacks the invite permission.")
		} else {
			s.send(ctx, referrerID, fmt.Sprintf("❌ Invite link error: %v", err))
		}
		return
	}

	s.send(ctx, referrerID, fmt.Sprintf(
		"🏁 You made it! 🎉\n\nYou invited %d people.\n🔐 Single-use link to the private channel:\n%s",
		target, link))
}

// send delivers a notification, swallowing the recipient-blocked class of
// delivery failure. Reward state is never rolled back on a send failure.
func (s *RewardService) send(ctx context.Context, userID int64, text string) {
	if err := s.notifier.SendMessage(ctx, userID, text); err != nil {
		if errors.Is(err, platform.ErrRecipientBlocked) {
			return
		}
		log.Printf("Failed to notify %d: %v", userID, err)
	}
}
