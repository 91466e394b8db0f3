package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"standup-bot/internal/model"
)

// StreakService owns the streaks table. A member with no row reads as 0.
type StreakService struct{ db *gorm.DB }

func NewStreakService(db *gorm.DB) *StreakService { return &StreakService{db: db} }

func (s *StreakService) Get(ctx context.Context, discordID int64) (int, error) {
	var row model.Streak
	err := s.db.WithContext(ctx).First(&row, "discord_id = ?", discordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get streak: %w", err)
	}
	return row.CurrentStreak, nil
}

func (s *StreakService) Set(ctx context.Context, discordID int64, streak int) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_streak"}),
	}).Create(&model.Streak{DiscordID: discordID, CurrentStreak: streak}).Error
	if err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	return nil
}

// Increment bumps the streak by one and returns the new value.
func (s *StreakService) Increment(ctx context.Context, discordID int64) (int, error) {
	current, err := s.Get(ctx, discordID)
	if err != nil {
		return 0, err
	}
	if err := s.Set(ctx, discordID, current+1); err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (s *StreakService) Reset(ctx context.Context, discordID int64) error {
	return s.Set(ctx, discordID, 0)
}
