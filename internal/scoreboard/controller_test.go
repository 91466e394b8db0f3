package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standup-bot/internal/model"
	"standup-bot/internal/platform"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
}

type fakePoster struct {
	posts     map[string]string
	nextID    int
	announced []string

	creates, edits, fetches int
	failEdits, failCreates  int
	goneIDs                 map[string]bool
}

func newFakePoster() *fakePoster {
	return &fakePoster{posts: map[string]string{}, goneIDs: map[string]bool{}}
}

func (f *fakePoster) CreatePost(_ context.Context, text string) (string, error) {
	f.creates++
	if f.failCreates > 0 {
		f.failCreates--
		return "", errors.New("create boom")
	}
	f.nextID++
	id := fmt.Sprintf("post-%d", f.nextID)
	f.posts[id] = text
	return id, nil
}

func (f *fakePoster) FetchPost(_ context.Context, id string) (string, error) {
	f.fetches++
	if f.goneIDs[id] {
		return "", fmt.Errorf("fetch: %w", platform.ErrPostGone)
	}
	text, ok := f.posts[id]
	if !ok {
		return "", fmt.Errorf("fetch: %w", platform.ErrPostGone)
	}
	return text, nil
}

func (f *fakePoster) EditPost(_ context.Context, id, text string) error {
	f.edits++
	if f.failEdits > 0 {
		f.failEdits--
		return errors.New("edit boom")
	}
	if f.goneIDs[id] {
		return fmt.Errorf("edit: %w", platform.ErrPostGone)
	}
	if _, ok := f.posts[id]; !ok {
		return fmt.Errorf("edit: %w", platform.ErrPostGone)
	}
	f.posts[id] = text
	return nil
}

func (f *fakePoster) DeletePost(_ context.Context, id string) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePoster) Announce(_ context.Context, text string) error {
	f.announced = append(f.announced, text)
	return nil
}

type fakeStreaks struct {
	values map[int64]int
	getErr error
}

func (f *fakeStreaks) Get(_ context.Context, id int64) (int, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.values[id], nil
}

func (f *fakeStreaks) Set(_ context.Context, id int64, n int) error {
	f.values[id] = n
	return nil
}

type memStateStore struct{ state *PostState }

func (s *memStateStore) Load(context.Context) (*PostState, error) { return s.state, nil }
func (s *memStateStore) Save(_ context.Context, st PostState) error {
	s.state = &st
	return nil
}

type fixture struct {
	ctl     *Controller
	posts   *fakePoster
	streaks *fakeStreaks
	state   *memStateStore
}

func newFixture() *fixture {
	posts := newFakePoster()
	streaks := &fakeStreaks{values: map[int64]int{}}
	state := &memStateStore{}
	ctl := NewController(posts, state, streaks)
	ctl.now = func() time.Time { return date(2026, 8, 19) } // a Wednesday
	ctl.retryInterval = time.Millisecond
	return &fixture{ctl: ctl, posts: posts, streaks: streaks, state: state}
}

func TestInitializeCreatesPost(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice", "Bob")))

	id, content := f.ctl.Snapshot()
	assert.Equal(t, "post-1", id)
	assert.Equal(t, "Alice ❓❓❓❓❓ (Streak: 0 days)\nBob   ❓❓❓❓❓ (Streak: 0 days)", content)
	require.NotNil(t, f.state.state)
	assert.Equal(t, "post-1", f.state.state.PostID)
	require.Len(t, f.posts.announced, 2)
	assert.Equal(t, "# Weekly Status Updates", f.posts.announced[0])
	assert.Equal(t, "## August 17th to August 23rd", f.posts.announced[1])
}

func TestInitializeEmptyRosterDefersCreation(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctl.Initialize(context.Background(), nil))
	id, _ := f.ctl.Snapshot()
	assert.Empty(t, id)
	assert.Zero(t, f.posts.creates)
}

func TestInitializeAdoptsCurrentWeekPost(t *testing.T) {
	f := newFixture()
	existing := Render(roster("Alice", "Bob"), map[int64]Marks{1: {true}}, map[int64]int{1: 3})
	f.posts.posts["post-9"] = existing
	f.state.state = &PostState{PostID: "post-9", CreatedAt: date(2026, 8, 17)}

	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice", "Bob")))

	id, content := f.ctl.Snapshot()
	assert.Equal(t, "post-9", id)
	assert.Equal(t, existing, content)
	assert.Zero(t, f.posts.creates)
}

func TestInitializeSupersedesPriorWeekPost(t *testing.T) {
	f := newFixture()
	f.posts.posts["post-9"] = Render(roster("Alice"), nil, nil)
	f.state.state = &PostState{PostID: "post-9", CreatedAt: date(2026, 8, 10)}

	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice")))

	id, _ := f.ctl.Snapshot()
	assert.Equal(t, "post-1", id)
	// Old post is superseded, never deleted.
	assert.Contains(t, f.posts.posts, "post-9")
}

func TestInitializeRecoversFromGonePost(t *testing.T) {
	f := newFixture()
	f.state.state = &PostState{PostID: "post-lost", CreatedAt: date(2026, 8, 17)}

	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice")))

	id, _ := f.ctl.Snapshot()
	assert.Equal(t, "post-1", id)
}

func TestInitializeRecoversFromCorruptContent(t *testing.T) {
	f := newFixture()
	f.posts.posts["post-9"] = "something that is not a scoreboard"
	f.state.state = &PostState{PostID: "post-9", CreatedAt: date(2026, 8, 17)}

	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice")))

	id, content := f.ctl.Snapshot()
	assert.Equal(t, "post-1", id)
	assert.Equal(t, "Alice ❓❓❓❓❓ (Streak: 0 days)", content)
}

func TestRecordCheckinFlipsFirstPending(t *testing.T) {
	f := newFixture()
	r := roster("Alice", "Bob")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))

	// The caller's business logic increments the streak before the patch.
	f.streaks.values[1] = 1
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	_, content := f.ctl.Snapshot()
	lines := strings.Split(content, "\n")
	assert.Equal(t, "Alice ✅❓❓❓❓ (Streak: 1 day)", lines[0])
	assert.Equal(t, "Bob   ❓❓❓❓❓ (Streak: 0 days)", lines[1])
	assert.Equal(t, content, f.posts.posts["post-1"])
}

func TestRecordCheckinUnknownMemberIsNoop(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctl.Initialize(context.Background(), roster("Alice")))
	_, before := f.ctl.Snapshot()
	edits := f.posts.edits

	ghost := model.TeamMember{DiscordID: 99, Name: "Zelda"}
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), ghost))

	_, after := f.ctl.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, edits, f.posts.edits)
}

func TestRecordCheckinCompleteWeekIsNoop(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	for i := 0; i < WeekSlots; i++ {
		require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
	}
	_, before := f.ctl.Snapshot()
	edits := f.posts.edits

	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	_, after := f.ctl.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, edits, f.posts.edits)
	assert.True(t, f.ctl.HasFullWeek(r[0]))
}

func TestRecordCheckinMonotonic(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))

	prev := 0
	for i := 0; i < 8; i++ {
		require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
		_, content := f.ctl.Snapshot()
		done := strings.Count(content, MarkDone)
		assert.GreaterOrEqual(t, done, prev)
		assert.LessOrEqual(t, done, WeekSlots)
		prev = done
	}
}

func TestRecordCheckinWholeLineMatch(t *testing.T) {
	f := newFixture()
	// "Ann" is a prefix of "Annabel"; a substring search would hit the
	// wrong line.
	r := roster("Annabel", "Ann")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))

	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[1]))

	_, content := f.ctl.Snapshot()
	lines := strings.Split(content, "\n")
	assert.Equal(t, "Annabel ❓❓❓❓❓ (Streak: 0 days)", lines[0])
	assert.Equal(t, "Ann     ✅❓❓❓❓ (Streak: 0 days)", lines[1])
}

func TestRebuildIdempotent(t *testing.T) {
	f := newFixture()
	r := roster("Alice", "Bob")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	require.NoError(t, f.ctl.Rebuild(context.Background()))
	_, first := f.ctl.Snapshot()
	edits := f.posts.edits

	require.NoError(t, f.ctl.Rebuild(context.Background()))
	_, second := f.ctl.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, edits, f.posts.edits, "no-change rebuild must not edit")
}

func TestRosterChangedAddLongerName(t *testing.T) {
	f := newFixture()
	r := roster("Alice", "Bob")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	f.streaks.values[3] = 7 // pre-existing streak for the newcomer
	grown := append(r, model.TeamMember{DiscordID: 3, Name: "Evangeline"})
	require.NoError(t, f.ctl.RosterChanged(context.Background(), grown))

	_, content := f.ctl.Snapshot()
	lines := strings.Split(content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Alice      ✅❓❓❓❓ (Streak: 0 days)", lines[0])
	assert.Equal(t, "Bob        ❓❓❓❓❓ (Streak: 0 days)", lines[1])
	assert.Equal(t, "Evangeline ❓❓❓❓❓ (Streak: 7 days)", lines[2])
}

func TestRosterChangedRemoveShrinksWidth(t *testing.T) {
	f := newFixture()
	r := roster("Alice", "Evangeline")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	require.NoError(t, f.ctl.RosterChanged(context.Background(), r[:1]))

	_, content := f.ctl.Snapshot()
	assert.Equal(t, "Alice ✅❓❓❓❓ (Streak: 0 days)", content)
}

func TestCloseWeekResetsIncompleteStreaks(t *testing.T) {
	f := newFixture()
	r := roster("Alice", "Bob")
	f.streaks.values[1] = 9
	f.streaks.values[2] = 4
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	for i := 0; i < 5; i++ {
		require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[1]))
	}

	require.NoError(t, f.ctl.CloseWeek(context.Background()))

	assert.Equal(t, 9, f.streaks.values[1], "full week keeps streak")
	assert.Equal(t, 0, f.streaks.values[2], "3/5 week resets streak")
}

func TestEditRetriesTransientFailure(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))

	f.posts.failEdits = 2
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
	assert.Equal(t, 3, f.posts.edits)
}

func TestEditFailureSurfacesAfterRetries(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	_, before := f.ctl.Snapshot()

	f.posts.failEdits = 10
	err := f.ctl.RecordCheckin(context.Background(), r[0])
	require.Error(t, err)

	// Content stays at the last known good state.
	_, after := f.ctl.Snapshot()
	assert.Equal(t, before, after)
}

func TestEditOnGonePostForgetsPost(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	f.posts.goneIDs["post-1"] = true

	err := f.ctl.RecordCheckin(context.Background(), r[0])
	require.ErrorIs(t, err, platform.ErrPostGone)

	// The next check-in recreates the scoreboard instead of editing a ghost.
	delete(f.posts.goneIDs, "post-1")
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
	id, content := f.ctl.Snapshot()
	assert.Equal(t, "post-2", id)
	assert.Equal(t, "Alice ✅❓❓❓❓ (Streak: 0 days)", content)
}

func TestHasMinimumCheckmarks(t *testing.T) {
	f := newFixture()
	r := roster("Alice")
	require.NoError(t, f.ctl.Initialize(context.Background(), r))
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))
	require.NoError(t, f.ctl.RecordCheckin(context.Background(), r[0]))

	assert.True(t, f.ctl.HasMinimumCheckmarks(r[0], 2))
	assert.False(t, f.ctl.HasMinimumCheckmarks(r[0], 3))
	assert.False(t, f.ctl.HasFullWeek(r[0]))
}
