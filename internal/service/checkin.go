package service

import (
	"context"
	"fmt"

	"standup-bot/internal/logger"
	"standup-bot/internal/model"
)

type statusStore interface {
	InsertStatus(ctx context.Context, discordID int64, status, timeZone string) error
	SetSummarized(ctx context.Context, discordID int64, summary string) error
}

type streakCounter interface {
	Increment(ctx context.Context, discordID int64) (int, error)
}

type summarizer interface {
	SummarizeDaily(ctx context.Context, status string) (string, error)
}

type scoreboardRecorder interface {
	RecordCheckin(ctx context.Context, member model.TeamMember) error
}

// CheckinService runs one qualifying status event end to end: persist the raw
// status, summarize it, bump the streak, then hand the member to the
// scoreboard. The streak increment happens before the scoreboard re-reads it,
// so the patched line already shows the new count.
type CheckinService struct {
	updates statusStore
	streaks streakCounter
	ai      summarizer
	board   scoreboardRecorder
}

func NewCheckinService(updates statusStore, streaks streakCounter, ai summarizer, board scoreboardRecorder) *CheckinService {
	return &CheckinService{updates: updates, streaks: streaks, ai: ai, board: board}
}

// ProcessStatus records a member's status update. Members on vacation are
// skipped. Summarization is best effort; a failed oracle call never blocks
// the check-in itself.
func (s *CheckinService) ProcessStatus(ctx context.Context, member model.TeamMember, status string) error {
	if member.OnVacation {
		logger.Debug("checkin.skipped_vacation", "member", member.Name)
		return nil
	}

	if err := s.updates.InsertStatus(ctx, member.DiscordID, status, member.TimeZone); err != nil {
		return fmt.Errorf("process status: %w", err)
	}

	if summary, err := s.ai.SummarizeDaily(ctx, status); err != nil {
		logger.Warn("checkin.summary_failed", "member", member.Name, "err", err)
	} else if err := s.updates.SetSummarized(ctx, member.DiscordID, summary); err != nil {
		logger.Warn("checkin.summary_store_failed", "member", member.Name, "err", err)
	}

	streak, err := s.streaks.Increment(ctx, member.DiscordID)
	if err != nil {
		return fmt.Errorf("process status: %w", err)
	}
	logger.Info("checkin.recorded", "member", member.Name, "streak", streak)

	if err := s.board.RecordCheckin(ctx, member); err != nil {
		return fmt.Errorf("process status: %w", err)
	}
	return nil
}
