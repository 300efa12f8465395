package entity

import (
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

const (
	MediaPlayerKey      uint32 = 0
	MediaPlayerName            = "Media Player"
	MediaPlayerObjectID        = "media_player"
)

// VolumeControl is the satellite-wide volume shared with the media player.
type VolumeControl interface {
	Volume() float32
	SetVolume(volume float32)
	Muted() bool
	SetMuted(muted bool)
}

// MediaPlayer exposes the media playback device as an ESPHome media player.
type MediaPlayer struct {
	player repositories.AudioPlayer
	volume VolumeControl
	logger *zap.Logger

	mu    sync.Mutex
	state protocol.MediaPlayerState
	// generation invalidates completion callbacks of replaced playback
	generation int

	publishMu sync.Mutex
	states    chan protocol.Message
}

var _ Entity = (*MediaPlayer)(nil)

// NewMediaPlayer creates the media player entity. When player reports idle
// transitions (repositories.PlaybackObserver) they are mirrored as Idle.
func NewMediaPlayer(player repositories.AudioPlayer, volume VolumeControl, logger *zap.Logger) *MediaPlayer {
	m := &MediaPlayer{
		player: player,
		volume: volume,
		logger: logger.With(zap.String("entity", MediaPlayerObjectID)),
		state:  protocol.MediaPlayerStateIdle,
		states: make(chan protocol.Message, 1),
	}
	if observer, ok := player.(repositories.PlaybackObserver); ok {
		observer.AddIdleListener(m.playbackIdle)
	}
	return m
}

func (m *MediaPlayer) Key() uint32 { return MediaPlayerKey }

func (m *MediaPlayer) States() <-chan protocol.Message { return m.states }

// State returns the current playback state.
func (m *MediaPlayer) State() protocol.MediaPlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MediaPlayer) Handle(msg protocol.Message) []protocol.Message {
	switch msg := msg.(type) {
	case protocol.ListEntitiesRequest:
		return []protocol.Message{protocol.ListEntitiesMediaPlayerResponse{
			ObjectID:      MediaPlayerObjectID,
			Key:           MediaPlayerKey,
			Name:          MediaPlayerName,
			UniqueID:      MediaPlayerObjectID,
			SupportsPause: true,
		}}

	case protocol.SubscribeHomeAssistantStatesRequest, protocol.SubscribeStatesRequest:
		return []protocol.Message{m.snapshot()}

	case protocol.MediaPlayerCommandRequest:
		if msg.Key != MediaPlayerKey {
			return nil
		}
		m.command(msg)
	}
	return nil
}

func (m *MediaPlayer) command(msg protocol.MediaPlayerCommandRequest) {
	switch {
	case msg.HasMediaURL:
		m.play(msg.MediaURL)

	case msg.HasCommand:
		switch msg.Command {
		case protocol.MediaPlayerCommandPause:
			if p, ok := m.player.(repositories.PausablePlayer); ok {
				p.Pause()
			}
			m.setState(protocol.MediaPlayerStatePaused)
		case protocol.MediaPlayerCommandPlay:
			if p, ok := m.player.(repositories.PausablePlayer); ok {
				p.Resume()
			}
			m.setState(protocol.MediaPlayerStatePlaying)
		case protocol.MediaPlayerCommandStop:
			m.mu.Lock()
			m.generation++
			m.mu.Unlock()
			m.player.Stop()
			m.setState(protocol.MediaPlayerStateIdle)
		case protocol.MediaPlayerCommandMute:
			m.volume.SetMuted(true)
			m.publish()
		case protocol.MediaPlayerCommandUnmute:
			m.volume.SetMuted(false)
			m.publish()
		default:
			m.logger.Debug("Unsupported media player command", zap.Uint32("command", uint32(msg.Command)))
		}

	case msg.HasVolume:
		m.volume.SetVolume(msg.Volume)
		m.publish()
	}
}

func (m *MediaPlayer) play(url string) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	m.logger.Info("Playing media", zap.String("url", url))
	m.setState(protocol.MediaPlayerStatePlaying)
	m.player.Play([]string{url}, func() {
		m.mu.Lock()
		stale := gen != m.generation
		m.mu.Unlock()
		if !stale {
			m.setState(protocol.MediaPlayerStateIdle)
		}
	})
}

func (m *MediaPlayer) playbackIdle() {
	m.setState(protocol.MediaPlayerStateIdle)
}

func (m *MediaPlayer) setState(state protocol.MediaPlayerState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	m.publish()
}

func (m *MediaPlayer) snapshot() protocol.MediaPlayerStateResponse {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	return protocol.MediaPlayerStateResponse{
		Key:    MediaPlayerKey,
		State:  state,
		Volume: m.volume.Volume(),
		Muted:  m.volume.Muted(),
	}
}

// publish offers the latest snapshot, replacing one nobody consumed yet.
func (m *MediaPlayer) publish() {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	snap := m.snapshot()
	for {
		select {
		case m.states <- snap:
			return
		default:
		}
		select {
		case <-m.states:
		default:
		}
	}
}
