package services

import (
	"time"

	"gorm.io/gorm"

	"referral-bot/internal/models"
)

// ReferrerCount is one leaderboard row.
type ReferrerCount struct {
	ReferrerID int64 `json:"referrer_id"`
	Count      int64 `json:"count"`
}

// RankingService derives leaderboards and ranks from the ledger. It holds no
// state of its own: every call recomputes from the current rows, trading
// query cost for zero drift.
type RankingService struct {
	db        *gorm.DB
	referrals *ReferralService
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{
		db:        db,
		referrals: NewReferralService(db),
	}
}

// Rank returns the user's 1-based rank: one plus the number of referrers
// with a strictly greater count. Tied users share a rank, and a user with
// zero referrals still gets a well-defined one.
func (s *RankingService) Rank(userID int64) (int, error) {
	myCount, err := s.referrals.Count(userID)
	if err != nil {
		return 0, err
	}

	var greater int64
	err = s.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT referrer_id, COUNT(*) AS c
			FROM referrals
			GROUP BY referrer_id
		) t
		WHERE t.c > ?
	`, myCount).Scan(&greater).Error
	if err != nil {
		return 0, err
	}

	return int(greater) + 1, nil
}

// Top returns referrers ordered by descending count.
func (s *RankingService) Top(limit int) ([]ReferrerCount, error) {
	var rows []ReferrerCount
	err := s.db.Model(&models.Referral{}).
		Select("referrer_id, COUNT(*) AS count").
		Group("referrer_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopSince is Top restricted to referrals credited at or after the given
// time, with counts recomputed on that window only.
func (s *RankingService) TopSince(since time.Time, limit int) ([]ReferrerCount, error) {
	var rows []ReferrerCount
	err := s.db.Model(&models.Referral{}).
		Select("referrer_id, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("referrer_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// NearGoal lists non-banned referrers whose lifetime count equals exactly
// threshold, ascending by user id, for admin review.
func (s *RankingService) NearGoal(threshold int, limit int) ([]ReferrerCount, error) {
	var rows []ReferrerCount
	err := s.db.Model(&models.Referral{}).
		Select("referrals.referrer_id, COUNT(*) AS count").
		Joins("JOIN users ON users.user_id = referrals.referrer_id").
		Where("users.banned = ?", false).
		Group("referrals.referrer_id").
		Having("COUNT(*) = ?", threshold).
		Order("referrals.referrer_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
