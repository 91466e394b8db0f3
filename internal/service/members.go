package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"standup-bot/internal/model"
)

// MemberService keeps the roster in memory, mirrored to the team_members
// table on every mutation. Roster order is insertion order.
type MemberService struct {
	db *gorm.DB

	mu      sync.RWMutex
	members []model.TeamMember
}

func NewMemberService(db *gorm.DB) (*MemberService, error) {
	s := &MemberService{db: db}
	if err := s.db.Find(&s.members).Error; err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	return s, nil
}

// All returns the roster in order. The slice is a copy.
func (s *MemberService) All() []model.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TeamMember(nil), s.members...)
}

func (s *MemberService) Find(discordID int64) (model.TeamMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.DiscordID == discordID {
			return m, true
		}
	}
	return model.TeamMember{}, false
}

func (s *MemberService) Add(ctx context.Context, m model.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.DiscordID == m.DiscordID {
			return fmt.Errorf("add member: %d already on roster", m.DiscordID)
		}
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	s.members = append(s.members, m)
	return nil
}

func (s *MemberService) Remove(ctx context.Context, discordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.WithContext(ctx).Delete(&model.TeamMember{}, "discord_id = ?", discordID).Error; err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	kept := s.members[:0]
	for _, m := range s.members {
		if m.DiscordID != discordID {
			kept = append(kept, m)
		}
	}
	s.members = kept
	return nil
}

func (s *MemberService) UpdateTimeZone(ctx context.Context, discordID int64, timeZone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithContext(ctx).Model(&model.TeamMember{}).
		Where("discord_id = ?", discordID).
		Update("time_zone", timeZone).Error
	if err != nil {
		return fmt.Errorf("update time zone: %w", err)
	}
	for i := range s.members {
		if s.members[i].DiscordID == discordID {
			s.members[i].TimeZone = timeZone
		}
	}
	return nil
}

func (s *MemberService) SetVacation(ctx context.Context, discordID int64, onVacation bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithContext(ctx).Model(&model.TeamMember{}).
		Where("discord_id = ?", discordID).
		Update("on_vacation", onVacation).Error
	if err != nil {
		return fmt.Errorf("set vacation: %w", err)
	}
	for i := range s.members {
		if s.members[i].DiscordID == discordID {
			s.members[i].OnVacation = onVacation
		}
	}
	return nil
}
