package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standup-bot/internal/model"
)

type fakeStatusStore struct {
	inserted   []string
	summarized []string
	insertErr  error
}

func (f *fakeStatusStore) InsertStatus(_ context.Context, _ int64, status, _ string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, status)
	return nil
}

func (f *fakeStatusStore) SetSummarized(_ context.Context, _ int64, summary string) error {
	f.summarized = append(f.summarized, summary)
	return nil
}

type fakeCounter struct{ streak int }

func (f *fakeCounter) Increment(context.Context, int64) (int, error) {
	f.streak++
	return f.streak, nil
}

type fakeSummarizer struct {
	out string
	err error
}

func (f *fakeSummarizer) SummarizeDaily(context.Context, string) (string, error) {
	return f.out, f.err
}

type fakeBoard struct {
	recorded      []model.TeamMember
	streakAtEvent []int
	counter       *fakeCounter
}

func (f *fakeBoard) RecordCheckin(_ context.Context, m model.TeamMember) error {
	f.recorded = append(f.recorded, m)
	f.streakAtEvent = append(f.streakAtEvent, f.counter.streak)
	return nil
}

func alice() model.TeamMember {
	return model.TeamMember{DiscordID: 1, Name: "Alice", TimeZone: "America/New_York"}
}

func TestProcessStatusHappyPath(t *testing.T) {
	updates := &fakeStatusStore{}
	counter := &fakeCounter{}
	board := &fakeBoard{counter: counter}
	svc := NewCheckinService(updates, counter, &fakeSummarizer{out: "Did: stuff"}, board)

	require.NoError(t, svc.ProcessStatus(context.Background(), alice(), "shipped the thing"))

	assert.Equal(t, []string{"shipped the thing"}, updates.inserted)
	assert.Equal(t, []string{"Did: stuff"}, updates.summarized)
	require.Len(t, board.recorded, 1)
	assert.Equal(t, "Alice", board.recorded[0].Name)
	// The streak is already incremented when the scoreboard is patched.
	assert.Equal(t, []int{1}, board.streakAtEvent)
}

func TestProcessStatusVacationSkips(t *testing.T) {
	updates := &fakeStatusStore{}
	counter := &fakeCounter{}
	board := &fakeBoard{counter: counter}
	svc := NewCheckinService(updates, counter, &fakeSummarizer{}, board)

	m := alice()
	m.OnVacation = true
	require.NoError(t, svc.ProcessStatus(context.Background(), m, "hello from the beach"))

	assert.Empty(t, updates.inserted)
	assert.Zero(t, counter.streak)
	assert.Empty(t, board.recorded)
}

func TestProcessStatusSummaryFailureDoesNotBlock(t *testing.T) {
	updates := &fakeStatusStore{}
	counter := &fakeCounter{}
	board := &fakeBoard{counter: counter}
	svc := NewCheckinService(updates, counter, &fakeSummarizer{err: errors.New("oracle down")}, board)

	require.NoError(t, svc.ProcessStatus(context.Background(), alice(), "fixed the build"))

	assert.Equal(t, []string{"fixed the build"}, updates.inserted)
	assert.Empty(t, updates.summarized)
	assert.Equal(t, 1, counter.streak)
	assert.Len(t, board.recorded, 1)
}

func TestProcessStatusInsertFailureStops(t *testing.T) {
	updates := &fakeStatusStore{insertErr: errors.New("db down")}
	counter := &fakeCounter{}
	board := &fakeBoard{counter: counter}
	svc := NewCheckinService(updates, counter, &fakeSummarizer{}, board)

	err := svc.ProcessStatus(context.Background(), alice(), "anything")
	require.Error(t, err)
	assert.Zero(t, counter.streak)
	assert.Empty(t, board.recorded)
}
