package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func newSignupFixture(t *testing.T) (*SignupService, *gorm.DB, *fakeChecker, *fakeNotifier, *fakeIssuer) {
	t.Helper()
	db := setupTestDB(t)
	checker := &fakeChecker{subscribed: make(map[int64]bool)}
	notifier := newFakeNotifier()
	issuer := &fakeIssuer{link: "https://t.me/+abc"}
	reward := NewRewardService(db, notifier, issuer, testChannelID, 5)
	signup := NewSignupService(db, checker, notifier, reward, 5)
	return signup, db, checker, notifier, issuer
}

func TestFullReferralScenario(t *testing.T) {
	signup, db, checker, notifier, issuer := newSignupFixture(t)
	refs := NewReferralService(db)
	ctx := context.Background()
	referrer := int64(1)

	if err := signup.Register(referrer, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// U1..U5 arrive via R's link and confirm subscription one by one.
	for i := int64(1); i <= 5; i++ {
		invited := 100 + i
		if err := signup.Register(invited, &referrer); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		checker.subscribed[invited] = true

		result, err := signup.ConfirmSubscription(ctx, invited)
		if err != nil {
			t.Fatalf("ConfirmSubscription failed: %v", err)
		}
		if !result.Subscribed || !result.Credited {
			t.Fatalf("confirmation %d: expected subscribed and credited, got %+v", i, result)
		}

		count, _ := refs.Count(referrer)
		if count != i {
			t.Fatalf("after confirmation %d: expected count %d, got %d", i, i, count)
		}
	}

	// One progress message per fresh credit.
	if got := notifier.sent(referrer, "New referral"); got != 5 {
		t.Errorf("expected 5 progress messages, got %d", got)
	}
	// "Near" fired once at 4/5, "win" once at 5/5 with a single link.
	if got := notifier.sent(referrer, "Almost there"); got != 1 {
		t.Errorf("expected one near message, got %d", got)
	}
	if got := notifier.sent(referrer, "Single-use link"); got != 1 {
		t.Errorf("expected one win message, got %d", got)
	}
	if issuer.callCount() != 1 {
		t.Errorf("expected one invite link request, got %d", issuer.callCount())
	}

	// A replayed confirmation credits nothing and fires nothing.
	result, err := signup.ConfirmSubscription(ctx, 105)
	if err != nil {
		t.Fatalf("ConfirmSubscription replay failed: %v", err)
	}
	if !result.Subscribed || result.Credited {
		t.Errorf("replay: expected subscribed without credit, got %+v", result)
	}
	count, _ := refs.Count(referrer)
	if count != 5 {
		t.Errorf("replay changed count: expected 5, got %d", count)
	}
	if got := notifier.sent(referrer, "Almost there"); got != 1 {
		t.Errorf("replay re-fired near: got %d", got)
	}
	if got := notifier.sent(referrer, "Single-use link"); got != 1 {
		t.Errorf("replay re-fired win: got %d", got)
	}
}

func TestSelfReferralRejected(t *testing.T) {
	signup, db, checker, _, _ := newSignupFixture(t)
	users := NewUserService(db)
	refs := NewReferralService(db)
	ctx := context.Background()

	self := int64(42)
	if err := signup.Register(self, &self); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := users.Get(self)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if user.ReferrerID != nil {
		t.Errorf("expected self-referral dropped, got referrer %v", *user.ReferrerID)
	}

	checker.subscribed[self] = true
	result, err := signup.ConfirmSubscription(ctx, self)
	if err != nil {
		t.Fatalf("ConfirmSubscription failed: %v", err)
	}
	if result.Credited {
		t.Error("self-referral must never credit")
	}
	total, _ := refs.Total()
	if total != 0 {
		t.Errorf("expected empty ledger, got %d", total)
	}
}

func TestConfirmNotSubscribed(t *testing.T) {
	signup, db, _, _, _ := newSignupFixture(t)
	users := NewUserService(db)
	ctx := context.Background()

	referrer := int64(1)
	if err := signup.Register(7, &referrer); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := signup.ConfirmSubscription(ctx, 7)
	if err != nil {
		t.Fatalf("ConfirmSubscription failed: %v", err)
	}
	if result.Subscribed || result.Credited {
		t.Errorf("expected nothing to happen, got %+v", result)
	}

	user, _ := users.Get(7)
	if user.JoinedOK {
		t.Error("joined_ok must stay false without subscription")
	}
}

func TestCheckerErrorTreatedAsNotSubscribed(t *testing.T) {
	signup, _, checker, _, _ := newSignupFixture(t)
	ctx := context.Background()

	referrer := int64(1)
	if err := signup.Register(7, &referrer); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	checker.subscribed[7] = true
	checker.err = fmt.Errorf("transport down")

	result, err := signup.ConfirmSubscription(ctx, 7)
	if err != nil {
		t.Fatalf("ConfirmSubscription failed: %v", err)
	}
	if result.Subscribed {
		t.Error("verification failure must count as not subscribed")
	}
}

func TestBannedUserBlocked(t *testing.T) {
	signup, db, checker, _, _ := newSignupFixture(t)
	users := NewUserService(db)
	ctx := context.Background()

	if err := signup.Register(7, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := users.Ban(7); err != nil {
		t.Fatalf("Ban failed: %v", err)
	}
	checker.subscribed[7] = true

	if err := signup.Register(7, nil); !errors.Is(err, ErrBanned) {
		t.Errorf("expected ErrBanned from Register, got %v", err)
	}
	if _, err := signup.ConfirmSubscription(ctx, 7); !errors.Is(err, ErrBanned) {
		t.Errorf("expected ErrBanned from ConfirmSubscription, got %v", err)
	}
}

func TestCreditSurvivesReferrerBan(t *testing.T) {
	signup, db, checker, _, _ := newSignupFixture(t)
	users := NewUserService(db)
	refs := NewReferralService(db)
	ctx := context.Background()

	referrer := int64(1)
	if err := signup.Register(referrer, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := signup.Register(7, &referrer); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Banning the invited user blocks the flow outright; banning only the
	// referrer still lets the invited user in, and the credit still lands
	// on the ledger for when the ban is lifted.
	checker.subscribed[7] = true
	result, err := signup.ConfirmSubscription(ctx, 7)
	if err != nil {
		t.Fatalf("ConfirmSubscription failed: %v", err)
	}
	if !result.Credited {
		t.Fatal("expected credit")
	}

	if err := users.Ban(referrer); err != nil {
		t.Fatalf("Ban failed: %v", err)
	}
	count, _ := refs.Count(referrer)
	if count != 1 {
		t.Errorf("expected credited referral to survive the ban, got %d", count)
	}
}
