package platform

import (
	"context"
	"errors"
)

// Error classes the reward flow must tell apart. ErrRecipientBlocked is the
// "user blocked the bot" delivery failure and is swallowed by callers;
// ErrForbidden means the bot lacks rights in the target chat.
var (
	ErrRecipientBlocked = errors.New("recipient has blocked the bot")
	ErrForbidden        = errors.New("bot is not permitted to perform this action")
)

// SubscriptionChecker verifies public-channel membership. Callers treat any
// error as "not subscribed".
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64) (bool, error)
}

// Notifier delivers a plain message to a user.
type Notifier interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}

// InviteIssuer creates a single-use invite link for a private chat.
type InviteIssuer interface {
	CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error)
}
