package services

import (
	"fmt"
	"time"

	"event-lifecycle-system/models"
)

// Transition is the lifecycle action derived for one event at one instant.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionStart
	TransitionComplete
)

func (t Transition) String() string {
	switch t {
	case TransitionStart:
		return "start"
	case TransitionComplete:
		return "complete"
	default:
		return "no_change"
	}
}

// DeriveTransition classifies an event against now. The in-progress window
// is the half-open interval [start, end): an event exactly at its end
// instant is already complete. A malformed stored date/time yields an error
// and TransitionNone; the caller logs and leaves the row for the next sweep.
func DeriveTransition(ev *models.Event, now time.Time) (Transition, error) {
	end, err := EffectiveEnd(ev)
	if err != nil {
		return TransitionNone, err
	}
	if !now.Before(end) {
		return TransitionComplete, nil
	}
	start, err := EffectiveStart(ev)
	if err != nil {
		return TransitionNone, err
	}
	if !now.Before(start) {
		return TransitionStart, nil
	}
	return TransitionNone, nil
}

// EffectiveEnd is the instant the event is considered over:
// end_date + end_date_end_time when both are present (multi-day),
// else date + end_time.
func EffectiveEnd(ev *models.Event) (time.Time, error) {
	if ev.EndDate != nil && ev.EndDateEndTime != nil {
		return parseCivil(*ev.EndDate, *ev.EndDateEndTime)
	}
	return parseCivil(ev.Date, ev.EndTime)
}

// EffectiveStart is date + start_time.
func EffectiveStart(ev *models.Event) (time.Time, error) {
	return parseCivil(ev.Date, ev.StartTime)
}

func parseCivil(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed civil timestamp %q %q: %w", date, clock, err)
	}
	return t, nil
}
