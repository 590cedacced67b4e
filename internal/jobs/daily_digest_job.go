package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"referral-bot/internal/platform"
	"referral-bot/internal/services"
)

// DailyDigestJob sends each admin a summary of the past day's referrals at
// midnight in the configured timezone.
type DailyDigestJob struct {
	ranking  *services.RankingService
	notifier platform.Notifier
	adminIDs []int64
	tz       *time.Location
}

func NewDailyDigestJob(db *gorm.DB, notifier platform.Notifier, adminIDs []int64, tz *time.Location) *DailyDigestJob {
	return &DailyDigestJob{
		ranking:  services.NewRankingService(db),
		notifier: notifier,
		adminIDs: adminIDs,
		tz:       tz,
	}
}

// Start schedules the digest. The returned shutdown func stops the scheduler.
func (j *DailyDigestJob) Start() (func() error, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(j.tz))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			if err := j.run(context.Background()); err != nil {
				log.Printf("[Digest] %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule digest job: %w", err)
	}

	sched.Start()
	log.Println("Daily digest job scheduled")
	return sched.Shutdown, nil
}

// run builds and delivers the digest for the day that just ended.
func (j *DailyDigestJob) run(ctx context.Context) error {
	now := time.Now().In(j.tz)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.tz).AddDate(0, 0, -1)

	top, err := j.ranking.TopSince(dayStart, 10)
	if err != nil {
		return fmt.Errorf("failed to compute daily top: %w", err)
	}

	text := j.format(dayStart, top)
	for _, adminID := range j.adminIDs {
		if err := j.notifier.SendMessage(ctx, adminID, text); err != nil {
			log.Printf("[Digest] failed to notify admin %d: %v", adminID, err)
		}
	}
	return nil
}

func (j *DailyDigestJob) format(day time.Time, top []services.ReferrerCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Daily digest for %s\n", day.Format("2006-01-02"))
	if len(top) == 0 {
		b.WriteString("No referrals yesterday.")
		return b.String()
	}
	for i, row := range top {
		fmt.Fprintf(&b, "%d) %d — %d\n", i+1, row.ReferrerID, row.Count)
	}
	return b.String()
}
