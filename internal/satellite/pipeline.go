package satellite

import (
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

// PipelineState is the sub-state of one voice pipeline run.
type PipelineState int

const (
	PipelineListening PipelineState = iota
	PipelineProcessing
	PipelineResponding
	PipelineEnded
)

func (s PipelineState) String() string {
	switch s {
	case PipelineListening:
		return "listening"
	case PipelineProcessing:
		return "processing"
	case PipelineResponding:
		return "responding"
	case PipelineEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type speechPlayer interface {
	InitTTS() error
	PlayTTS(url string, onCompletion func())
	StopTTS()
}

// pipelineHooks connect a run to its owner. post must queue fn on the
// goroutine that drives the pipeline.
type pipelineHooks struct {
	send    func(protocol.Message)
	post    func(fn func())
	changed func()
	ended   func(continueConversation bool)
}

// Pipeline tracks one voice pipeline run. It is not safe for concurrent use;
// every method runs on the satellite's event loop.
type Pipeline struct {
	id     string
	player speechPlayer
	hooks  pipelineHooks
	logger *zap.Logger

	state                PipelineState
	running              bool
	serverError          bool
	continueConversation bool
	ttsPlayed            bool
	ttsStreamURL         string
	buffer               [][]byte

	// playback generation, bumped when playback is abandoned
	playback int
}

func newPipeline(id string, player speechPlayer, hooks pipelineHooks, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		id:     id,
		player: player,
		hooks:  hooks,
		logger: logger.With(zap.String("run", id)),
		state:  PipelineListening,
	}
}

func (p *Pipeline) State() PipelineState {
	return p.state
}

// ServerError reports whether the hub sent an error event for this run.
func (p *Pipeline) ServerError() bool {
	return p.serverError
}

func (p *Pipeline) Ended() bool {
	return p.state == PipelineEnded
}

// Start announces the initial Listening state and asks the hub for a run.
func (p *Pipeline) Start(wakeWordPhrase string) {
	p.logger.Info("Starting pipeline", zap.String("wake_word", wakeWordPhrase))
	p.hooks.changed()
	p.hooks.send(protocol.VoiceAssistantRequest{
		Start:          true,
		WakeWordPhrase: wakeWordPhrase,
	})
}

// HandleEvent advances the run on a hub pipeline event.
func (p *Pipeline) HandleEvent(ev protocol.VoiceAssistantEventResponse) {
	if p.Ended() {
		return
	}

	switch ev.EventType {
	case protocol.EventRunStart:
		// audio may be sent from now on
		p.running = true
		p.ttsPlayed = false
		p.ttsStreamURL, _ = ev.Value(protocol.DataURL)
		if err := p.player.InitTTS(); err != nil {
			p.logger.Warn("Failed to prepare speech playback", zap.Error(err))
		}

	case protocol.EventSTTVADEnd, protocol.EventSTTEnd:
		p.setState(PipelineProcessing)

	case protocol.EventIntentProgress:
		if v, _ := ev.Value(protocol.DataTTSStartStreaming); v == "1" && p.ttsStreamURL != "" && !p.ttsPlayed {
			p.playTTS(p.ttsStreamURL)
		}

	case protocol.EventIntentEnd:
		if v, _ := ev.Value(protocol.DataContinueConversation); v == "1" {
			p.continueConversation = true
		}

	case protocol.EventTTSStart:
		p.setState(PipelineResponding)

	case protocol.EventTTSEnd:
		if p.ttsPlayed {
			return
		}
		url, _ := ev.Value(protocol.DataURL)
		if url == "" {
			p.logger.Warn("Speech finished without a url")
			return
		}
		p.playTTS(url)

	case protocol.EventRunEnd:
		p.running = false
		p.buffer = nil
		if !p.ttsPlayed {
			p.finish()
		}

	case protocol.EventError:
		code, _ := ev.Value(protocol.DataCode)
		message, _ := ev.Value(protocol.DataMessage)
		p.logger.Warn("Pipeline error from hub",
			zap.String("code", code),
			zap.String("message", message))
		p.serverError = true
		p.hooks.changed()

	default:
		p.logger.Debug("Unhandled pipeline event", zap.Stringer("event", ev.EventType))
	}
}

// ProcessAudio sends a microphone frame to the hub. Frames are only taken
// while listening and are buffered until the hub has started the run.
func (p *Pipeline) ProcessAudio(frame []byte) {
	if p.state != PipelineListening {
		return
	}
	if !p.running {
		p.buffer = append(p.buffer, frame)
		return
	}
	for _, buffered := range p.buffer {
		p.hooks.send(protocol.VoiceAssistantAudio{Data: buffered})
	}
	p.buffer = nil
	p.hooks.send(protocol.VoiceAssistantAudio{Data: frame})
}

// Stop ends the run early and tells the hub. Calling it again does nothing.
// The owner publishes the resulting state.
func (p *Pipeline) Stop() {
	p.stop(true)
}

// Abort ends the run early without telling the hub, for when the session
// is gone.
func (p *Pipeline) Abort() {
	p.stop(false)
}

func (p *Pipeline) stop(notify bool) {
	if p.Ended() {
		return
	}
	switch {
	case p.state == PipelineResponding:
		p.player.StopTTS()
		if notify {
			p.hooks.send(protocol.VoiceAssistantAnnounceFinished{})
		}
	case p.running:
		p.player.StopTTS()
		if notify {
			p.hooks.send(protocol.VoiceAssistantRequest{Start: false})
		}
	}
	p.logger.Info("Pipeline stopped")
	p.reset()
}

func (p *Pipeline) playTTS(url string) {
	p.ttsPlayed = true
	p.playback++
	gen := p.playback
	p.player.PlayTTS(url, func() {
		p.hooks.post(func() {
			if gen == p.playback {
				p.finish()
			}
		})
	})
}

// finish ends the run normally and reports it exactly once.
func (p *Pipeline) finish() {
	if p.Ended() {
		return
	}
	continueConversation := p.continueConversation
	p.logger.Info("Pipeline ended", zap.Bool("continue_conversation", continueConversation))
	p.reset()
	p.hooks.ended(continueConversation)
}

func (p *Pipeline) reset() {
	p.running = false
	p.serverError = false
	p.continueConversation = false
	p.ttsPlayed = false
	p.ttsStreamURL = ""
	p.buffer = nil
	p.playback++
	p.state = PipelineEnded
}

func (p *Pipeline) setState(state PipelineState) {
	if state == p.state {
		return
	}
	p.state = state
	p.hooks.changed()
}
