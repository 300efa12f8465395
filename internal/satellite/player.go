package satellite

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
)

// Player drives the two playback devices of the satellite. Speech, sounds
// and announcements go to the TTS device; the media device belongs to the
// media player entity and is ducked during voice interaction.
type Player struct {
	tts    repositories.AudioPlayer
	media  repositories.AudioPlayer
	logger *zap.Logger

	mu             sync.Mutex
	volume         float32
	muted          bool
	ducked         bool
	duckMultiplier float32

	enableWakeSound bool
	wakeSound       string
	timerSound      string
	repeatTimer     bool
}

// NewPlayer creates a player at the volume of settings.
func NewPlayer(tts, media repositories.AudioPlayer, settings entities.Settings, logger *zap.Logger) *Player {
	p := &Player{
		tts:    tts,
		media:  media,
		logger: logger.With(zap.String("component", "player")),
		volume: clampVolume(settings.Volume),
	}
	p.ApplySettings(settings)
	return p
}

// ApplySettings updates the sounds and the duck multiplier. The volume is
// owned by the hub once running and is left alone.
func (p *Player) ApplySettings(settings entities.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duckMultiplier = clampVolume(settings.DuckMultiplier)
	p.enableWakeSound = settings.EnableWakeSound
	p.wakeSound = settings.WakeSound
	p.timerSound = settings.TimerFinishedSound
	p.repeatTimer = settings.RepeatTimerSound
	p.applyVolumes()
}

func (p *Player) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) SetVolume(volume float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(volume)
	p.applyVolumes()
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	p.applyVolumes()
}

// Duck lowers the media volume by the duck multiplier.
func (p *Player) Duck() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ducked = true
	p.applyVolumes()
}

func (p *Player) Unduck() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ducked = false
	p.applyVolumes()
}

func (p *Player) Ducked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ducked
}

// must hold p.mu
func (p *Player) applyVolumes() {
	if p.muted {
		p.tts.SetVolume(0)
		p.media.SetVolume(0)
		return
	}
	p.tts.SetVolume(p.volume)
	if p.ducked {
		p.media.SetVolume(p.volume * p.duckMultiplier)
	} else {
		p.media.SetVolume(p.volume)
	}
}

// InitTTS prepares the TTS device before speech arrives.
func (p *Player) InitTTS() error {
	return p.tts.Init()
}

func (p *Player) PlayTTS(url string, onCompletion func()) {
	p.logger.Debug("Playing speech", zap.String("url", url))
	p.tts.Play([]string{url}, onCompletion)
}

// StopTTS interrupts whatever the TTS device plays. Pending completions are
// not called.
func (p *Player) StopTTS() {
	p.tts.Stop()
}

// PlayAnnouncement plays the optional preannounce sound followed by media.
// Without media there is nothing to play and onCompletion runs at once.
func (p *Player) PlayAnnouncement(preannounce, media string, onCompletion func()) {
	if media == "" {
		p.logger.Warn("Announcement has no media")
		onCompletion()
		return
	}
	urls := []string{media}
	if preannounce != "" {
		urls = []string{preannounce, media}
	}
	p.tts.Play(urls, onCompletion)
}

// PlayWakeSound plays the wake sound if enabled, else onCompletion runs at
// once.
func (p *Player) PlayWakeSound(onCompletion func()) {
	p.mu.Lock()
	enabled, sound := p.enableWakeSound, p.wakeSound
	p.mu.Unlock()

	if !enabled || sound == "" {
		onCompletion()
		return
	}
	p.tts.Play([]string{sound}, onCompletion)
}

// PlayTimerFinishedSound starts the timer sound. It reports false, without
// calling onCompletion, when no sound is configured.
func (p *Player) PlayTimerFinishedSound(onCompletion func()) bool {
	p.mu.Lock()
	sound := p.timerSound
	p.mu.Unlock()

	if sound == "" {
		return false
	}
	p.tts.Play([]string{sound}, onCompletion)
	return true
}

func (p *Player) RepeatTimerSound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeatTimer
}

func (p *Player) Close() error {
	return errors.Join(p.tts.Close(), p.media.Close())
}

func clampVolume(v float32) float32 {
	return min(max(v, 0), 1)
}
