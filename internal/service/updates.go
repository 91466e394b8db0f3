package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"standup-bot/internal/model"
)

// UpdateService owns the updates table: raw status texts, their AI summaries,
// and the per-week check-in counts derived from them. Timestamps are stored
// in the member's own time zone so "this week" means their Monday, not UTC's.
type UpdateService struct{ db *gorm.DB }

func NewUpdateService(db *gorm.DB) *UpdateService { return &UpdateService{db: db} }

func (s *UpdateService) InsertStatus(ctx context.Context, discordID int64, status, timeZone string) error {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return fmt.Errorf("insert status: bad time zone %q: %w", timeZone, err)
	}
	row := model.StatusUpdate{
		DiscordID: discordID,
		Status:    status,
		Timestamp: time.Now().In(loc),
		TimeZone:  timeZone,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert status: %w", err)
	}
	return nil
}

// SetSummarized attaches the AI summary to the member's most recent update.
func (s *UpdateService) SetSummarized(ctx context.Context, discordID int64, summary string) error {
	var latest model.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Order("timestamp DESC").
		First(&latest).Error
	if err != nil {
		return fmt.Errorf("set summarized status: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&latest).Update("summarized_status", summary).Error; err != nil {
		return fmt.Errorf("set summarized status: %w", err)
	}
	return nil
}

// WeeklyCheckinCount counts updates since Monday 00:00 in the member's zone.
func (s *UpdateService) WeeklyCheckinCount(ctx context.Context, discordID int64, timeZone string) (int, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return 0, fmt.Errorf("weekly checkin count: bad time zone %q: %w", timeZone, err)
	}
	now := time.Now().In(loc)
	weekday := int(now.Weekday()+6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -weekday)

	var count int64
	err = s.db.WithContext(ctx).Model(&model.StatusUpdate{}).
		Where("discord_id = ? AND timestamp >= ?", discordID, monday).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("weekly checkin count: %w", err)
	}
	return int(count), nil
}

// StatusesInRange returns raw status texts within [start, end), oldest first.
func (s *UpdateService) StatusesInRange(ctx context.Context, discordID int64, start, end time.Time) ([]string, error) {
	var rows []model.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("discord_id = ? AND timestamp >= ? AND timestamp < ?", discordID, start, end).
		Order("timestamp").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("statuses in range: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Status)
	}
	return out, nil
}

func (s *UpdateService) AllForUser(ctx context.Context, discordID int64) ([]model.StatusUpdate, error) {
	var rows []model.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	return rows, nil
}
