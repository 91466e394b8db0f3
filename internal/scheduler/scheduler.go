// Package scheduler drives the timed jobs: per-member status prompts in the
// member's own time zone and the Monday rollover of the weekly scoreboard.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"standup-bot/internal/logger"
	"standup-bot/internal/model"
)

// Scheduler wraps one cron runner. Members get a weekday 10:00 and a weekend
// 11:00 prompt in their own zone; the weekly rollover fires Monday 09:10 in
// the roster's earliest zone so no member is still inside the old week.
type Scheduler struct {
	cron *cron.Cron

	mu        sync.Mutex
	jobs      map[int64][]cron.EntryID
	weeklyJob cron.EntryID
	hasWeekly bool
}

func New() *Scheduler {
	c := cron.New()
	c.Start()
	return &Scheduler{cron: c, jobs: make(map[int64][]cron.EntryID)}
}

func (s *Scheduler) Stop() { s.cron.Stop() }

// AddMember registers the member's status-prompt jobs.
func (s *Scheduler) AddMember(member model.TeamMember, prompt func(model.TeamMember)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs := []string{
		fmt.Sprintf("CRON_TZ=%s 0 10 * * MON-FRI", member.TimeZone),
		fmt.Sprintf("CRON_TZ=%s 0 11 * * SAT,SUN", member.TimeZone),
	}
	var ids []cron.EntryID
	for _, spec := range specs {
		m := member
		id, err := s.cron.AddFunc(spec, func() { prompt(m) })
		if err != nil {
			for _, added := range ids {
				s.cron.Remove(added)
			}
			return fmt.Errorf("schedule prompts for %s: %w", member.Name, err)
		}
		ids = append(ids, id)
	}
	s.jobs[member.DiscordID] = ids
	logger.Info("scheduler.member_added", "member", member.Name, "tz", member.TimeZone)
	return nil
}

// RemoveMember drops the member's prompt jobs, if any.
func (s *Scheduler) RemoveMember(discordID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.jobs[discordID] {
		s.cron.Remove(id)
	}
	delete(s.jobs, discordID)
}

// ScheduleWeeklyRollover (re)registers the Monday rollover job. Calling it
// again replaces the previous registration, so it tracks roster changes.
func (s *Scheduler) ScheduleWeeklyRollover(members []model.TeamMember, rollover func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tz := earliestTimeZone(members)
	spec := fmt.Sprintf("CRON_TZ=%s 10 9 * * MON", tz)
	id, err := s.cron.AddFunc(spec, rollover)
	if err != nil {
		return fmt.Errorf("schedule weekly rollover: %w", err)
	}
	if s.hasWeekly {
		s.cron.Remove(s.weeklyJob)
	}
	s.weeklyJob = id
	s.hasWeekly = true
	logger.Info("scheduler.weekly_rollover", "tz", tz)
	return nil
}

// MemberJobCount reports how many jobs are registered for a member.
func (s *Scheduler) MemberJobCount(discordID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs[discordID])
}

// earliestTimeZone picks the zone with the greatest UTC offset: the first
// zone to reach Monday morning, so the rollover never lags any member's week.
func earliestTimeZone(members []model.TeamMember) string {
	best := "UTC"
	bestOffset := int(-1 << 30)
	now := time.Now()
	for _, m := range members {
		loc, err := time.LoadLocation(m.TimeZone)
		if err != nil {
			logger.Warn("scheduler.bad_time_zone", "member", m.Name, "tz", m.TimeZone)
			continue
		}
		_, offset := now.In(loc).Zone()
		if offset > bestOffset {
			best, bestOffset = m.TimeZone, offset
		}
	}
	return best
}
