package satellite

import (
	"time"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

// TimerTracker mirrors the timers announced by the hub.
type TimerTracker struct {
	now    func() time.Time
	timers map[string]entities.VoiceTimer
}

func NewTimerTracker(now func() time.Time) *TimerTracker {
	if now == nil {
		now = time.Now
	}
	return &TimerTracker{
		now:    now,
		timers: make(map[string]entities.VoiceTimer),
	}
}

// Apply replaces or removes the timer named by ev. It reports whether the
// timer started ringing with this event.
func (t *TimerTracker) Apply(ev protocol.VoiceAssistantTimerEventResponse) bool {
	if ev.EventType == protocol.TimerCancelled {
		delete(t.timers, ev.TimerID)
		return false
	}

	prev, existed := t.timers[ev.TimerID]
	total := time.Duration(ev.TotalSeconds) * time.Second
	left := time.Duration(ev.SecondsLeft) * time.Second

	var timer entities.VoiceTimer
	switch {
	case ev.EventType == protocol.TimerFinished:
		timer = entities.NewRingingTimer(ev.TimerID, ev.Name, total)
	case !ev.IsActive:
		timer = entities.NewPausedTimer(ev.TimerID, ev.Name, total, left)
	default:
		timer = entities.NewRunningTimer(ev.TimerID, ev.Name, total, t.now().Add(left))
	}
	t.timers[ev.TimerID] = timer

	return timer.Status == entities.TimerRinging && (!existed || prev.Status != entities.TimerRinging)
}

func (t *TimerTracker) Remove(id string) {
	delete(t.timers, id)
}

// RemoveRinging drops every ringing timer and returns how many there were.
func (t *TimerTracker) RemoveRinging() int {
	var n int
	for id, timer := range t.timers {
		if timer.Status == entities.TimerRinging {
			delete(t.timers, id)
			n++
		}
	}
	return n
}

func (t *TimerTracker) HasRinging() bool {
	for _, timer := range t.timers {
		if timer.Status == entities.TimerRinging {
			return true
		}
	}
	return false
}

func (t *TimerTracker) Len() int {
	return len(t.timers)
}

func (t *TimerTracker) Clear() {
	clear(t.timers)
}

// Sorted returns the timers in display order.
func (t *TimerTracker) Sorted() []entities.VoiceTimer {
	out := make([]entities.VoiceTimer, 0, len(t.timers))
	for _, timer := range t.timers {
		out = append(out, timer)
	}
	entities.SortTimers(out)
	return out
}
