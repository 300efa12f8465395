package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRemainingDuration(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		timer VoiceTimer
		want  time.Duration
	}{
		{"ringing", NewRingingTimer("a", "tea", time.Minute), 0},
		{"running", NewRunningTimer("b", "", time.Minute, now.Add(30*time.Second)), 30 * time.Second},
		{"running overdue", NewRunningTimer("c", "", time.Minute, now.Add(-time.Second)), 0},
		{"paused", NewPausedTimer("d", "", time.Minute, 12*time.Second), 12 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.timer.RemainingDuration(now))
		})
	}
}

func TestSortTimers(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	timers := []VoiceTimer{
		NewPausedTimer("paused-long", "", time.Hour, 40*time.Minute),
		NewRunningTimer("running-late", "", time.Hour, now.Add(10*time.Minute)),
		NewPausedTimer("paused-short", "", time.Hour, time.Minute),
		NewRingingTimer("ringing", "", time.Minute),
		NewRunningTimer("running-soon", "", time.Hour, now.Add(time.Minute)),
	}

	SortTimers(timers)

	ids := make([]string, len(timers))
	for i, timer := range timers {
		ids[i] = timer.ID
	}
	assert.Equal(t, []string{"ringing", "running-soon", "running-late", "paused-short", "paused-long"}, ids)
}

func TestSortTimersProperty(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		timers := make([]VoiceTimer, n)
		for i := range timers {
			secs := time.Duration(rapid.IntRange(0, 3600).Draw(t, "secs")) * time.Second
			switch rapid.IntRange(0, 2).Draw(t, "status") {
			case 0:
				timers[i] = NewRingingTimer("r", "", secs)
			case 1:
				timers[i] = NewRunningTimer("u", "", secs, base.Add(secs))
			default:
				timers[i] = NewPausedTimer("p", "", secs, secs)
			}
		}

		SortTimers(timers)

		for i := 1; i < len(timers); i++ {
			prev, cur := timers[i-1], timers[i]
			require.LessOrEqual(t, prev.Status, cur.Status)
			if prev.Status == cur.Status && cur.Status == TimerRunning {
				require.False(t, cur.EndsAt.Before(prev.EndsAt))
			}
			if prev.Status == cur.Status && cur.Status == TimerPaused {
				require.LessOrEqual(t, prev.Remaining, cur.Remaining)
			}
		}
	})
}
