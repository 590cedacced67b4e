package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report is the admin-facing snapshot of the whole system.
type Report struct {
	Users          int64           `json:"users"`
	Referrals      int64           `json:"referrals"`
	Target         int             `json:"target"`
	ConversionRate decimal.Decimal `json:"conversion_rate"` // credited referrals per user, percent
	TopToday       []ReferrerCount `json:"top_today"`
}

// StatsService assembles admin reports from the other read paths.
type StatsService struct {
	users     *UserService
	referrals *ReferralService
	ranking   *RankingService
	settings  *SettingsService

	defaultTarget int
	tz            *time.Location
}

func NewStatsService(db *gorm.DB, defaultTarget int, tz *time.Location) *StatsService {
	return &StatsService{
		users:         NewUserService(db),
		referrals:     NewReferralService(db),
		ranking:       NewRankingService(db),
		settings:      NewSettingsService(db),
		defaultTarget: defaultTarget,
		tz:            tz,
	}
}

// TodayStart returns midnight of the current day in the configured timezone.
func (s *StatsService) TodayStart() time.Time {
	now := time.Now().In(s.tz)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.tz)
}

// BuildReport computes the admin report from current rows.
func (s *StatsService) BuildReport() (*Report, error) {
	users, err := s.users.Count()
	if err != nil {
		return nil, err
	}

	referrals, err := s.referrals.Total()
	if err != nil {
		return nil, err
	}

	topToday, err := s.ranking.TopSince(s.TodayStart(), 10)
	if err != nil {
		return nil, err
	}

	conversion := decimal.Zero
	if users > 0 {
		conversion = decimal.NewFromInt(referrals).
			Div(decimal.NewFromInt(users)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return &Report{
		Users:          users,
		Referrals:      referrals,
		Target:         s.settings.Target(s.defaultTarget),
		ConversionRate: conversion,
		TopToday:       topToday,
	}, nil
}
