package entities

import (
	"cmp"
	"slices"
	"time"
)

// TimerStatus distinguishes the three timer variants. The numeric value is
// also the display rank: ringing timers first, then running, then paused.
type TimerStatus int

const (
	TimerRinging TimerStatus = iota
	TimerRunning
	TimerPaused
)

func (s TimerStatus) String() string {
	switch s {
	case TimerRinging:
		return "ringing"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	default:
		return "unknown"
	}
}

func (s TimerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// VoiceTimer is a timer created on the hub and mirrored locally. It is
// replaced wholesale on every timer event.
//
// EndsAt is only meaningful for running timers and Remaining only for paused
// ones.
type VoiceTimer struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Total     time.Duration `json:"total"`
	Status    TimerStatus   `json:"status"`
	EndsAt    time.Time     `json:"ends_at,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"`
}

// NewRingingTimer creates a timer that has finished and is ringing.
func NewRingingTimer(id, name string, total time.Duration) VoiceTimer {
	return VoiceTimer{ID: id, Name: name, Total: total, Status: TimerRinging}
}

// NewRunningTimer creates a timer counting down towards endsAt.
func NewRunningTimer(id, name string, total time.Duration, endsAt time.Time) VoiceTimer {
	return VoiceTimer{ID: id, Name: name, Total: total, Status: TimerRunning, EndsAt: endsAt}
}

// NewPausedTimer creates a timer frozen with remaining time left.
func NewPausedTimer(id, name string, total, remaining time.Duration) VoiceTimer {
	return VoiceTimer{ID: id, Name: name, Total: total, Status: TimerPaused, Remaining: remaining}
}

// RemainingDuration reports how much time is left at now.
func (t VoiceTimer) RemainingDuration(now time.Time) time.Duration {
	switch t.Status {
	case TimerRinging:
		return 0
	case TimerRunning:
		return max(0, t.EndsAt.Sub(now))
	case TimerPaused:
		return t.Remaining
	default:
		return 0
	}
}

// CompareTimers orders timers by status rank, then by end instant, then by
// remaining duration. Remaining ties are broken by id.
func CompareTimers(a, b VoiceTimer) int {
	if c := cmp.Compare(a.Status, b.Status); c != 0 {
		return c
	}
	if c := a.EndsAt.Compare(b.EndsAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Remaining, b.Remaining); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTimers sorts timers in display order.
func SortTimers(timers []VoiceTimer) {
	slices.SortStableFunc(timers, CompareTimers)
}
