package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScheduler(t *testing.T, at time.Time) *Scheduler {
	t.Helper()
	s, err := NewScheduler("America/Los_Angeles", 9, 13)
	require.NoError(t, err)
	s.now = func() time.Time { return at }
	s.jitter = func(min, max time.Duration) time.Duration { return min }
	return s
}

func localTime(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return time.Date(2026, 3, 10, hour, minute, 0, 0, loc)
}

func TestNextBeforeWindowOpens(t *testing.T) {
	now := localTime(t, 7, 0)
	s := testScheduler(t, now)

	got := s.Next()

	assert.Equal(t, time.UTC, got.Location())
	want := localTime(t, 9, 0)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestNextInsideWindow(t *testing.T) {
	now := localTime(t, 10, 0)
	s := testScheduler(t, now)

	got := s.Next()

	want := localTime(t, 10, 30)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestNextInsideWindowJitterRange(t *testing.T) {
	now := localTime(t, 10, 0)
	s := testScheduler(t, now)
	s.jitter = randomBetween

	for i := 0; i < 20; i++ {
		got := s.Next()
		assert.False(t, got.Before(now.Add(30*time.Minute)), "got %v", got)
		assert.False(t, got.After(now.Add(60*time.Minute)), "got %v", got)
	}
}

func TestNextSpillsPastClose(t *testing.T) {
	// 12:45 plus the minimum 30 minute delay lands after 13:00, so the email
	// moves to the next morning.
	now := localTime(t, 12, 45)
	s := testScheduler(t, now)

	got := s.Next()

	want := localTime(t, 9, 0).AddDate(0, 0, 1)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestNextLandingExactlyOnCloseSpills(t *testing.T) {
	// 12:30 plus the minimum 30 minute delay is 13:00:00 sharp, which is
	// already outside the window.
	now := localTime(t, 12, 30)
	s := testScheduler(t, now)

	got := s.Next()

	want := localTime(t, 9, 0).AddDate(0, 0, 1)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestNextAfterClose(t *testing.T) {
	now := localTime(t, 14, 0)
	s := testScheduler(t, now)

	got := s.Next()

	want := localTime(t, 9, 0).AddDate(0, 0, 1)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestNewSchedulerBadTimezone(t *testing.T) {
	_, err := NewScheduler("Not/AZone", 9, 13)
	assert.Error(t, err)
}
