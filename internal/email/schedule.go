package email

import (
	"fmt"
	"math/rand"
	"time"
)

// Scheduler picks delivery times inside the recipient's business-hours
// window. Times are computed in the configured timezone and stored in UTC.
type Scheduler struct {
	loc       *time.Location
	startHour int
	endHour   int

	// now and jitter are swappable so tests get deterministic clocks.
	now    func() time.Time
	jitter func(min, max time.Duration) time.Duration
}

func NewScheduler(timezone string, startHour, endHour int) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		loc:       loc,
		startHour: startHour,
		endHour:   endHour,
		now:       time.Now,
		jitter:    randomBetween,
	}, nil
}

func randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// Next returns the next send slot.
//
// Before the window opens the email lands shortly after opening time today.
// Inside the window it goes out 30 to 60 minutes from now, unless that would
// spill past closing time. After closing, or on spill, it moves to shortly
// after opening time tomorrow.
func (s *Scheduler) Next() time.Time {
	now := s.now().In(s.loc)

	openToday := time.Date(now.Year(), now.Month(), now.Day(),
		s.startHour, 0, 0, 0, s.loc)
	closeToday := time.Date(now.Year(), now.Month(), now.Day(),
		s.endHour, 0, 0, 0, s.loc)

	var at time.Time
	switch {
	case now.Before(openToday):
		at = openToday.Add(s.jitter(0, 2*time.Hour))
	case now.Before(closeToday):
		at = now.Add(s.jitter(30*time.Minute, 60*time.Minute))
		// Closing time itself is outside the window.
		if !at.Before(closeToday) {
			at = openToday.AddDate(0, 0, 1).Add(s.jitter(0, 2*time.Hour))
		}
	default:
		at = openToday.AddDate(0, 0, 1).Add(s.jitter(0, 2*time.Hour))
	}

	return at.UTC()
}
