// Package scoreboard owns the weekly check-in post: one mutable chat message
// holding a per-member grid of five week slots plus a streak counter. The
// controller is the only writer of that message.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"standup-bot/internal/logger"
	"standup-bot/internal/model"
	"standup-bot/internal/platform"
)

// ErrCorruptPost reports post content that no longer parses into valid
// scoreboard lines. The controller recovers by starting a fresh post.
var ErrCorruptPost = errors.New("corrupt scoreboard content")

// StreakSource is the slice of the persistence gateway the controller needs.
type StreakSource interface {
	Get(ctx context.Context, discordID int64) (int, error)
	Set(ctx context.Context, discordID int64, streak int) error
}

// Controller drives the weekly post through its lifecycle: create on the
// first event of an iso-week, patch single lines on check-ins, rebuild on
// roster changes, and leave stale posts behind on rollover. Every content
// mutation is a read-modify-write against the platform, so all operations
// serialize through one mutex.
type Controller struct {
	mu      sync.Mutex
	posts   platform.ChannelPoster
	state   StateStore
	streaks StreakSource

	roster  []model.TeamMember
	postID  string
	content string

	now           func() time.Time
	maxRetries    uint64
	retryInterval time.Duration
}

func NewController(posts platform.ChannelPoster, state StateStore, streaks StreakSource) *Controller {
	return &Controller{
		posts:         posts,
		state:         state,
		streaks:       streaks,
		now:           time.Now,
		maxRetries:    3,
		retryInterval: 500 * time.Millisecond,
	}
}

// Initialize loads the persisted post pointer and adopts the post when it
// still belongs to the current iso-week. A missing, unreachable or corrupt
// post degrades to "no post", and a fresh one is created right away when the
// roster is non-empty.
func (c *Controller) Initialize(ctx context.Context, roster []model.TeamMember) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roster = append([]model.TeamMember(nil), roster...)
	c.postID = ""
	c.content = ""

	st, err := c.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("initialize scoreboard: %w", err)
	}

	if st != nil && st.PostID != "" && sameISOWeek(st.CreatedAt, c.now()) {
		content, err := c.fetchPost(ctx, st.PostID)
		switch {
		case errors.Is(err, platform.ErrPostGone):
			logger.Warn("scoreboard.post_gone", "post_id", st.PostID)
		case err != nil:
			return fmt.Errorf("initialize scoreboard: %w", err)
		default:
			if _, perr := parseContent(content); perr != nil {
				logger.Warn("scoreboard.corrupt", "post_id", st.PostID, "err", perr)
			} else {
				c.postID = st.PostID
				c.content = content
				return nil
			}
		}
	}

	return c.ensurePostLocked(ctx)
}

// RecordCheckin flips the first pending slot on the member's line and
// refreshes the streak annotation, leaving every other line byte-for-byte
// untouched. An unknown member or an already-complete week is a silent no-op.
func (c *Controller) RecordCheckin(ctx context.Context, member model.TeamMember) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensurePostLocked(ctx); err != nil {
		return err
	}
	if c.postID == "" {
		return nil
	}

	lines := strings.Split(c.content, "\n")
	idx := -1
	var marks Marks
	for i, line := range lines {
		name, m, _, err := parseLine(line)
		if err != nil {
			continue
		}
		if name == member.Name {
			idx, marks = i, m
			break
		}
	}
	if idx == -1 {
		logger.Warn("checkin.line_missing", "member", member.Name)
		return nil
	}

	slot := marks.FirstPending()
	if slot == -1 {
		logger.Debug("checkin.week_complete", "member", member.Name)
		return nil
	}
	marks[slot] = true

	streak, err := c.streaks.Get(ctx, member.DiscordID)
	if err != nil {
		return fmt.Errorf("record checkin: %w", err)
	}

	lines[idx] = renderLine(member.Name, lineWidth(lines[idx]), marks, streak)
	return c.applyContent(ctx, strings.Join(lines, "\n"))
}

// RosterChanged swaps in the new roster and rebuilds the post so padding and
// line membership match. Check-in state is carried over per member.
func (c *Controller) RosterChanged(ctx context.Context, roster []model.TeamMember) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roster = append([]model.TeamMember(nil), roster...)
	return c.rebuildLocked(ctx)
}

// Rebuild re-derives the whole post from the roster, the marks parsed out of
// the current content, and freshly fetched streaks. Running it twice without
// an intervening change produces identical text and performs no second edit.
func (c *Controller) Rebuild(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuildLocked(ctx)
}

// CloseWeek resets the streak of every roster member who finished the week
// with fewer than five done slots. It does not touch the post; the next
// week's post appears lazily on the next Initialize or check-in.
func (c *Controller) CloseWeek(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, m := range c.roster {
		if c.doneCountLocked(m) >= WeekSlots {
			continue
		}
		if err := c.streaks.Set(ctx, m.DiscordID, 0); err != nil {
			errs = append(errs, fmt.Errorf("reset streak for %s: %w", m.Name, err))
		}
	}
	return errors.Join(errs...)
}

// HasFullWeek reports whether the member has all five slots done.
func (c *Controller) HasFullWeek(member model.TeamMember) bool {
	return c.HasMinimumCheckmarks(member, WeekSlots)
}

// HasMinimumCheckmarks reports whether the member has at least n done slots.
func (c *Controller) HasMinimumCheckmarks(member model.TeamMember, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doneCountLocked(member) >= n
}

// Snapshot returns the current post id and content.
func (c *Controller) Snapshot() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.postID, c.content
}

func (c *Controller) doneCountLocked(member model.TeamMember) int {
	for _, line := range strings.Split(c.content, "\n") {
		name, marks, _, err := parseLine(line)
		if err != nil {
			continue
		}
		if name == member.Name {
			return marks.DoneCount()
		}
	}
	return 0
}

func (c *Controller) ensurePostLocked(ctx context.Context) error {
	if c.postID != "" || len(c.roster) == 0 {
		return nil
	}

	content := Render(c.roster, nil, c.fetchStreaksLocked(ctx))

	start, end := weekBounds(c.now())
	if err := c.posts.Announce(ctx, "# Weekly Status Updates"); err != nil {
		logger.Warn("scoreboard.announce_failed", "err", err)
	}
	header := fmt.Sprintf("## %s to %s", formatDate(start), formatDate(end))
	if err := c.posts.Announce(ctx, header); err != nil {
		logger.Warn("scoreboard.announce_failed", "err", err)
	}

	var id string
	err := c.retry(ctx, func() error {
		var err error
		id, err = c.posts.CreatePost(ctx, content)
		return err
	})
	if err != nil {
		return fmt.Errorf("create weekly post: %w", err)
	}

	if err := c.state.Save(ctx, PostState{PostID: id, CreatedAt: c.now()}); err != nil {
		return fmt.Errorf("create weekly post: %w", err)
	}

	c.postID = id
	c.content = content
	logger.Info("scoreboard.created", "post_id", id, "members", len(c.roster))
	return nil
}

func (c *Controller) rebuildLocked(ctx context.Context) error {
	if c.postID == "" {
		return c.ensurePostLocked(ctx)
	}

	prev, err := parseContent(c.content)
	if err != nil {
		logger.Warn("scoreboard.corrupt", "post_id", c.postID, "err", err)
		prev = map[string]Marks{}
	}

	marks := make(map[int64]Marks, len(c.roster))
	for _, m := range c.roster {
		marks[m.DiscordID] = prev[m.Name]
	}

	next := Render(c.roster, marks, c.fetchStreaksLocked(ctx))
	if next == c.content {
		return nil
	}
	return c.applyContent(ctx, next)
}

func (c *Controller) applyContent(ctx context.Context, next string) error {
	err := c.retry(ctx, func() error {
		return c.posts.EditPost(ctx, c.postID, next)
	})
	if errors.Is(err, platform.ErrPostGone) {
		// The live post vanished under us; forget it so the next event
		// recreates the scoreboard instead of editing a ghost.
		c.postID = ""
		c.content = ""
		return fmt.Errorf("update weekly post: %w", err)
	}
	if err != nil {
		return fmt.Errorf("update weekly post: %w", err)
	}
	c.content = next
	return nil
}

func (c *Controller) fetchPost(ctx context.Context, id string) (string, error) {
	var content string
	err := c.retry(ctx, func() error {
		var err error
		content, err = c.posts.FetchPost(ctx, id)
		return err
	})
	return content, err
}

func (c *Controller) fetchStreaksLocked(ctx context.Context) map[int64]int {
	streaks := make(map[int64]int, len(c.roster))
	for _, m := range c.roster {
		n, err := c.streaks.Get(ctx, m.DiscordID)
		if err != nil {
			logger.Warn("streak.fetch_failed", "member", m.Name, "err", err)
			continue
		}
		streaks[m.DiscordID] = n
	}
	return streaks
}

func (c *Controller) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	return backoff.Retry(func() error {
		err := op()
		if errors.Is(err, platform.ErrPostGone) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func weekBounds(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday()+6) % 7 // Monday = 0
	monday := now.AddDate(0, 0, -weekday)
	return monday, monday.AddDate(0, 0, 6)
}

func formatDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	if day < 4 || day > 20 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%s %d%s", t.Month(), day, suffix)
}
