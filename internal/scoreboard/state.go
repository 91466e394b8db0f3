package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"standup-bot/internal/model"
)

// PostState is the persisted pointer at the live scoreboard post.
type PostState struct {
	PostID    string
	CreatedAt time.Time
}

// StateStore survives restarts; Load returns nil on first run.
type StateStore interface {
	Load(ctx context.Context) (*PostState, error)
	Save(ctx context.Context, state PostState) error
}

// GormStateStore keeps the post pointer in the single-row weekly_posts table.
type GormStateStore struct {
	db *gorm.DB
}

func NewGormStateStore(db *gorm.DB) *GormStateStore { return &GormStateStore{db: db} }

func (s *GormStateStore) Load(ctx context.Context) (*PostState, error) {
	var row model.WeeklyPost
	err := s.db.WithContext(ctx).First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load weekly post state: %w", err)
	}
	return &PostState{PostID: row.PostID, CreatedAt: row.CreatedAt}, nil
}

func (s *GormStateStore) Save(ctx context.Context, state PostState) error {
	row := model.WeeklyPost{ID: 1, PostID: state.PostID, CreatedAt: state.CreatedAt}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"post_id", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save weekly post state: %w", err)
	}
	return nil
}
