// Package satellite is the voice satellite state engine. One event loop
// owns all state: hub messages, detections, playback completions and
// connection changes are handled there one at a time.
package satellite

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/audio"
	"github.com/satriahrh/arunika/satellite/internal/broadcast"
	"github.com/satriahrh/arunika/satellite/internal/entity"
	"github.com/satriahrh/arunika/satellite/internal/metrics"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

// Transport is the session towards the hub.
type Transport interface {
	Send(msg protocol.Message)
	Disconnect()
}

// AudioInput is the control side of the microphone loop.
type AudioInput interface {
	SetStreaming(streaming bool)
	SetMuted(muted bool)
	SetActiveWakeWords(ids []string)
	SetActiveStopWords(ids []string)
}

// WakeWordCatalog lists the wake words that can be activated.
type WakeWordCatalog interface {
	WakeWords() []entities.WakeWord
}

// Inputs are the event streams the satellite consumes.
type Inputs struct {
	Messages  <-chan protocol.Message
	Connected <-chan bool
	Audio     <-chan audio.Result
}

type Options struct {
	Transport Transport
	Input     AudioInput
	Player    *Player
	Entities  *entity.Registry
	Settings  repositories.SettingsProvider
	WakeWords WakeWordCatalog
	Metrics   *metrics.Collector
	Info      DeviceInfo
	// Now defaults to time.Now.
	Now func() time.Time
}

// Satellite is the voice satellite orchestrator.
type Satellite struct {
	logger    *zap.Logger
	metrics   *metrics.Collector
	transport Transport
	input     AudioInput
	player    *Player
	entities  *entity.Registry
	settings  repositories.SettingsProvider
	wakeWords WakeWordCatalog
	info      DeviceInfo

	state  *broadcast.Value[entities.SatelliteState]
	timerV *broadcast.Value[[]entities.VoiceTimer]

	queueMu sync.Mutex
	queue   []func()
	wake    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	quit      chan struct{}
	wg        sync.WaitGroup

	// loop state
	ctx          context.Context
	current      entities.Settings
	connected    bool
	subscribed   bool
	closed       bool
	pipeline     *Pipeline
	announcement *Announcement
	timers       *TimerTracker
	wakePending  bool
	wakeGen      int
	ringing      bool
	ringGen      int
	streaming    bool
}

func New(opts Options, logger *zap.Logger) *Satellite {
	s := &Satellite{
		logger:    logger.With(zap.String("component", "satellite")),
		metrics:   opts.Metrics,
		transport: opts.Transport,
		input:     opts.Input,
		player:    opts.Player,
		entities:  opts.Entities,
		settings:  opts.Settings,
		wakeWords: opts.WakeWords,
		info:      opts.Info,
		state:     broadcast.NewValue(entities.StateStopped),
		timerV:    broadcast.NewValue([]entities.VoiceTimer{}),
		wake:      make(chan struct{}, 1),
		quit:      make(chan struct{}),
		timers:    NewTimerTracker(opts.Now),
	}
	if s.entities == nil {
		s.entities = entity.NewRegistry()
	}
	s.announcement = newAnnouncement(s.player, announcementHooks{
		send:    s.send,
		post:    s.post,
		changed: s.refresh,
		ended:   s.announcementEnded,
	}, s.logger)
	return s
}

// States streams the satellite state, latest wins. Call the returned
// function to unsubscribe.
func (s *Satellite) States() (<-chan entities.SatelliteState, func()) {
	return s.state.Subscribe()
}

func (s *Satellite) State() entities.SatelliteState {
	return s.state.Get()
}

// Timers streams the sorted timer list, latest wins.
func (s *Satellite) Timers() (<-chan []entities.VoiceTimer, func()) {
	return s.timerV.Subscribe()
}

func (s *Satellite) TimersSnapshot() []entities.VoiceTimer {
	return s.timerV.Get()
}

// Start runs the event loop until ctx is done or Close is called. Only the
// first call has an effect.
func (s *Satellite) Start(ctx context.Context, in Inputs) {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		s.ctx = ctx

		settingsCh, unsubscribe := s.settings.Subscribe()
		s.applySettings(s.settings.Settings())
		entityStates := s.entities.States(ctx)
		s.refresh()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer cancel()
			defer unsubscribe()
			s.loop(ctx, in, settingsCh, entityStates)
		}()
	})
}

// Close stops the event loop and waits for it to exit.
func (s *Satellite) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}

func (s *Satellite) loop(
	ctx context.Context,
	in Inputs,
	settingsCh <-chan entities.Settings,
	entityStates <-chan protocol.Message,
) {
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return

		case msg, ok := <-in.Messages:
			if !ok {
				in.Messages = nil
				continue
			}
			s.handleMessage(msg)

		case connected, ok := <-in.Connected:
			if !ok {
				in.Connected = nil
				continue
			}
			s.setConnected(connected)

		case result, ok := <-in.Audio:
			if !ok {
				in.Audio = nil
				continue
			}
			s.handleAudio(result)

		case msg, ok := <-entityStates:
			if !ok {
				entityStates = nil
				continue
			}
			if s.connected && s.subscribed {
				s.send(msg)
			}

		case settings, ok := <-settingsCh:
			if !ok {
				settingsCh = nil
				continue
			}
			s.applySettings(settings)

		case <-s.wake:
			s.runQueued()
		}
	}
}

// post queues fn on the event loop. It never blocks, so it is safe to call
// from playback callbacks and from the loop itself.
func (s *Satellite) post(fn func()) {
	s.queueMu.Lock()
	s.queue = append(s.queue, fn)
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Satellite) runQueued() {
	for {
		s.queueMu.Lock()
		if len(s.queue) == 0 {
			s.queueMu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		if s.closed {
			continue
		}
		fn()
	}
}

func (s *Satellite) shutdown() {
	s.stopActive(false)
	s.silenceTimers()
	s.player.Unduck()
	s.closed = true
	s.refresh()
	s.logger.Info("Satellite stopped")
}

func (s *Satellite) send(msg protocol.Message) {
	s.transport.Send(msg)
}

func (s *Satellite) setConnected(connected bool) {
	if connected == s.connected {
		return
	}
	s.connected = connected
	if connected {
		s.logger.Info("Hub connected")
		s.refresh()
		return
	}

	s.logger.Info("Hub disconnected")
	s.subscribed = false
	s.stopActive(false)
	s.silenceTimers()
	s.timers.Clear()
	s.publishTimers()
	s.player.Unduck()
	s.refresh()
}

func (s *Satellite) applySettings(settings entities.Settings) {
	s.current = settings.Clone()
	s.player.ApplySettings(settings)
	s.input.SetMuted(settings.Muted)
	s.input.SetActiveWakeWords(settings.WakeWords)
	s.input.SetActiveStopWords(settings.StopWords)
}

func (s *Satellite) handleAudio(result audio.Result) {
	switch result.Kind {
	case audio.ResultAudio:
		if s.pipeline != nil {
			s.pipeline.ProcessAudio(result.Audio)
		}
	case audio.ResultWake:
		s.handleWake(result.Detection.Phrase)
	case audio.ResultStop:
		s.handleStop()
	}
}

func (s *Satellite) handleWake(phrase string) {
	if !s.connected {
		s.logger.Debug("Ignoring wake word while disconnected")
		return
	}
	if s.timers.HasRinging() {
		s.logger.Info("Wake word silenced ringing timers")
		s.silenceTimers()
		return
	}
	if s.wakePending || (s.pipeline != nil && s.pipeline.State() == PipelineListening) {
		s.logger.Debug("Ignoring wake word, already listening")
		s.metrics.WakeSuppressed()
		return
	}

	s.logger.Info("Wake word detected", zap.String("phrase", phrase))
	s.stopActive(true)
	s.player.Duck()
	s.wakePending = true
	s.wakeGen++
	gen := s.wakeGen
	s.refresh()

	s.player.PlayWakeSound(func() {
		s.post(func() {
			if gen != s.wakeGen || !s.wakePending {
				return
			}
			s.wakePending = false
			s.startPipeline(phrase, "wake")
		})
	})
}

func (s *Satellite) handleStop() {
	if s.timers.HasRinging() {
		s.logger.Info("Stop word silenced ringing timers")
		s.silenceTimers()
	}
	if s.pipeline == nil && !s.announcement.Responding() && !s.wakePending {
		return
	}
	s.logger.Info("Stop word detected")
	s.stopActive(true)
	s.player.Unduck()
	s.refresh()
}

// stopActive ends the running pipeline, announcement or pending wake. With
// notify the hub is told about it.
func (s *Satellite) stopActive(notify bool) {
	if s.wakePending {
		s.wakePending = false
		s.wakeGen++
		s.player.StopTTS()
	}
	if p := s.pipeline; p != nil {
		s.pipeline = nil
		if notify {
			p.Stop()
		} else {
			p.Abort()
		}
	}
	if notify {
		s.announcement.Stop()
	} else {
		s.announcement.Abort()
	}
}

func (s *Satellite) startPipeline(wakeWordPhrase, origin string) {
	p := s.newPipeline(origin)
	p.Start(wakeWordPhrase)
}

func (s *Satellite) newPipeline(origin string) *Pipeline {
	var p *Pipeline
	p = newPipeline(uuid.NewString(), s.player, pipelineHooks{
		send: s.send,
		post: s.post,
		changed: func() {
			if s.pipeline == p {
				s.refresh()
			}
		},
		ended: func(continueConversation bool) {
			if s.pipeline == p {
				s.pipelineEnded(continueConversation)
			}
		},
	}, s.logger)

	s.stopRinging()
	s.player.Duck()
	s.pipeline = p
	s.metrics.PipelineStarted(origin)
	return p
}

func (s *Satellite) pipelineEnded(continueConversation bool) {
	s.pipeline = nil
	if continueConversation && s.connected {
		s.startPipeline("", "conversation")
		return
	}
	s.player.Unduck()
	s.refresh()
	s.resumeRinging()
}

func (s *Satellite) announce(req protocol.VoiceAssistantAnnounceRequest) {
	s.stopActive(true)
	s.stopRinging()
	s.player.Duck()
	s.metrics.AnnouncementStarted()
	s.announcement.Announce(req.MediaID, req.PreannounceMediaID, req.StartConversation)
}

func (s *Satellite) announcementEnded(startConversation bool) {
	if startConversation && s.connected {
		s.startPipeline("", "announcement")
		return
	}
	s.player.Unduck()
	s.refresh()
	s.resumeRinging()
}

func (s *Satellite) handleTimerEvent(ev protocol.VoiceAssistantTimerEventResponse) {
	s.logger.Debug("Timer event",
		zap.String("timer", ev.TimerID),
		zap.Uint32("event", uint32(ev.EventType)),
		zap.Uint32("seconds_left", ev.SecondsLeft))

	if s.timers.Apply(ev) {
		s.resumeRinging()
	}
	if s.ringing && !s.timers.HasRinging() {
		s.stopRinging()
	}
	s.publishTimers()
}

// ring plays the timer sound once. On completion it repeats while timers
// ring, or removes the ringing timers when repeating is off.
func (s *Satellite) ring() {
	gen := s.ringGen
	done := func() {
		if gen != s.ringGen || !s.ringing {
			return
		}
		if !s.player.RepeatTimerSound() {
			s.ringing = false
			s.timers.RemoveRinging()
			s.publishTimers()
			return
		}
		if s.timers.HasRinging() {
			s.ring()
			return
		}
		s.ringing = false
	}

	played := s.player.PlayTimerFinishedSound(func() { s.post(done) })
	if !played && !s.player.RepeatTimerSound() {
		s.post(done)
	}
}

// resumeRinging starts the timer sound if timers ring and no voice
// interaction holds the TTS device. Otherwise the sound waits for the
// interaction to end.
func (s *Satellite) resumeRinging() {
	if s.ringing || !s.timers.HasRinging() {
		return
	}
	if s.wakePending || s.pipeline != nil || s.announcement.Responding() {
		s.logger.Debug("Timer sound waits for the voice interaction")
		return
	}
	s.ringing = true
	s.ring()
}

// stopRinging stops the timer sound. Ringing timers are kept.
func (s *Satellite) stopRinging() {
	if !s.ringing {
		return
	}
	s.ringing = false
	s.ringGen++
	s.player.StopTTS()
}

func (s *Satellite) silenceTimers() {
	s.stopRinging()
	if s.timers.RemoveRinging() > 0 {
		s.publishTimers()
	}
}

func (s *Satellite) publishTimers() {
	timers := s.timers.Sorted()
	s.timerV.Set(timers)
	s.metrics.SetTimers(len(timers))
}

// refresh recomputes the satellite state and the streaming flag and
// publishes them when they changed.
func (s *Satellite) refresh() {
	streaming := s.pipeline != nil && s.pipeline.State() == PipelineListening && !s.closed
	if streaming != s.streaming {
		s.streaming = streaming
		s.input.SetStreaming(streaming)
	}

	state := s.computeState()
	if state == s.state.Get() {
		return
	}
	s.logger.Info("State changed", zap.Stringer("state", state))
	s.state.Set(state)
	s.metrics.SetState(state.String(), stateNames())
}

func (s *Satellite) computeState() entities.SatelliteState {
	switch {
	case s.closed:
		return entities.StateStopped
	case !s.connected:
		return entities.StateDisconnected
	case s.pipeline != nil && !s.pipeline.Ended():
		if s.pipeline.ServerError() {
			return entities.StateServerError
		}
		switch s.pipeline.State() {
		case PipelineProcessing:
			return entities.StateProcessing
		case PipelineResponding:
			return entities.StateResponding
		default:
			return entities.StateListening
		}
	case s.announcement.Responding():
		return entities.StateResponding
	default:
		return entities.StateConnected
	}
}

func stateNames() []string {
	all := entities.AllSatelliteStates()
	names := make([]string, len(all))
	for i, st := range all {
		names[i] = st.String()
	}
	return names
}
