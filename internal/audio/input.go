// Package audio runs the microphone loop feeding wake word detection and
// pipeline streaming.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/metrics"
	"github.com/satriahrh/arunika/satellite/internal/wakeword"
)

const defaultAudioBuffer = 64

// ResultKind tells what an input Result carries.
type ResultKind int

const (
	ResultAudio ResultKind = iota
	ResultWake
	ResultStop
)

func (k ResultKind) String() string {
	switch k {
	case ResultAudio:
		return "audio"
	case ResultWake:
		return "wake"
	case ResultStop:
		return "stop"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is either a streamed audio frame or a detection.
type Result struct {
	Kind      ResultKind
	Audio     []byte
	Detection wakeword.Detection
}

// Detector is the part of wakeword.Detector used by the loop.
type Detector interface {
	SetActiveWakeWords(ids []string)
	SetActiveStopWords(ids []string)
	Process(ctx context.Context, audio []byte) []wakeword.Detection
}

type Option func(*Input)

// WithAudioBuffer sets how many streamed frames may wait for the consumer
// before frames are dropped.
func WithAudioBuffer(n int) Option {
	return func(in *Input) { in.audioBuffer = max(1, n) }
}

// WithRestartBackOff sets the delay policy for restarting a failed
// microphone.
func WithRestartBackOff(b backoff.BackOff) Option {
	return func(in *Input) { in.backOff = b }
}

// WithDebugWAVDir records every streamed pipeline run into a WAV file in dir.
func WithDebugWAVDir(dir string) Option {
	return func(in *Input) { in.wavDir = dir }
}

// Input reads the microphone continuously. Detection always runs; raw frames
// are forwarded only while streaming is on.
type Input struct {
	logger   *zap.Logger
	metrics  *metrics.Collector
	mic      repositories.Microphone
	detector Detector

	audioBuffer int
	backOff     backoff.BackOff
	wavDir      string

	streaming atomic.Bool
	muted     atomic.Bool
	changed   chan struct{}
}

func NewInput(
	mic repositories.Microphone,
	detector Detector,
	collector *metrics.Collector,
	logger *zap.Logger,
	opts ...Option,
) *Input {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	in := &Input{
		logger:      logger.With(zap.String("component", "audio_input")),
		metrics:     collector,
		mic:         mic,
		detector:    detector,
		audioBuffer: defaultAudioBuffer,
		backOff:     b,
		changed:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SetStreaming turns forwarding of raw frames on or off.
func (in *Input) SetStreaming(streaming bool) {
	in.streaming.Store(streaming)
}

func (in *Input) Streaming() bool {
	return in.streaming.Load()
}

// SetMuted stops the microphone until unmuted.
func (in *Input) SetMuted(muted bool) {
	in.muted.Store(muted)
	select {
	case in.changed <- struct{}{}:
	default:
	}
}

func (in *Input) SetActiveWakeWords(ids []string) {
	in.detector.SetActiveWakeWords(ids)
}

func (in *Input) SetActiveStopWords(ids []string) {
	in.detector.SetActiveStopWords(ids)
}

// Run starts the loop. The returned channel is closed once ctx is done and
// the microphone has been stopped. The loop never waits for the consumer:
// audio frames are dropped when the channel is full, detections are kept
// and retried with every following frame.
func (in *Input) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, in.audioBuffer)
	go func() {
		defer close(out)
		in.loop(ctx, out)
	}()
	return out
}

func (in *Input) loop(ctx context.Context, out chan<- Result) {
	var (
		started bool
		capture *WAVWriter
		// detections waiting for room in out, oldest first
		pending []Result
	)
	defer func() {
		in.closeCapture(capture)
		if started {
			in.stopMic()
		}
	}()

	for ctx.Err() == nil {
		if in.muted.Load() {
			if started {
				in.stopMic()
				started = false
				in.logger.Info("Microphone muted")
			}
			var (
				send chan<- Result
				next Result
			)
			if len(pending) > 0 {
				send, next = out, pending[0]
			}
			select {
			case <-ctx.Done():
				return
			case <-in.changed:
			case send <- next:
				pending = pending[1:]
			}
			continue
		}

		if !started {
			if err := in.mic.Start(ctx); err != nil {
				in.logger.Warn("Failed to start microphone", zap.Error(err))
				if !in.wait(ctx) {
					return
				}
				continue
			}
			started = true
			in.logger.Info("Microphone started")
		}

		frame, err := in.mic.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			in.logger.Warn("Failed to read microphone, restarting", zap.Error(err))
			in.stopMic()
			started = false
			if !in.wait(ctx) {
				return
			}
			continue
		}
		in.backOff.Reset()

		pending = deliver(out, pending)
		streaming := in.streaming.Load()
		capture = in.updateCapture(capture, streaming)
		if streaming {
			in.forward(out, frame, capture, len(pending) > 0)
		}

		for _, d := range in.detector.Process(ctx, frame) {
			result := Result{Kind: ResultWake, Detection: d}
			if d.Kind == wakeword.KindStop {
				result.Kind = ResultStop
			}
			pending = append(pending, result)
		}
		pending = deliver(out, pending)
	}
}

// deliver sends as many pending detections as out has room for and returns
// the rest. It never blocks.
func deliver(out chan<- Result, pending []Result) []Result {
	for len(pending) > 0 {
		select {
		case out <- pending[0]:
			pending = pending[1:]
		default:
			return pending
		}
	}
	return nil
}

// forward passes a streamed frame on. Frames are dropped while out is full
// or detections are still waiting, so audio never overtakes a detection.
func (in *Input) forward(out chan<- Result, frame []byte, capture *WAVWriter, blocked bool) {
	if capture != nil {
		if _, err := capture.Write(frame); err != nil {
			in.logger.Warn("Failed to write debug audio", zap.Error(err))
		}
	}
	if blocked {
		in.dropFrame()
		return
	}
	select {
	case out <- Result{Kind: ResultAudio, Audio: bytes.Clone(frame)}:
	default:
		in.dropFrame()
	}
}

func (in *Input) dropFrame() {
	in.metrics.AudioFrameDropped()
	in.logger.Debug("Dropping audio frame, consumer is behind")
}

// wait sleeps for the next back-off interval. It reports false when ctx was
// cancelled meanwhile.
func (in *Input) wait(ctx context.Context) bool {
	t := time.NewTimer(in.backOff.NextBackOff())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (in *Input) stopMic() {
	if err := in.mic.Stop(); err != nil {
		in.logger.Warn("Failed to stop microphone", zap.Error(err))
	}
}

func (in *Input) updateCapture(capture *WAVWriter, streaming bool) *WAVWriter {
	if in.wavDir == "" {
		return nil
	}
	switch {
	case streaming && capture == nil:
		path := filepath.Join(in.wavDir, time.Now().Format("20060102-150405.000")+".wav")
		w, err := CreateWAV(path)
		if err != nil {
			in.logger.Warn("Failed to create debug audio file", zap.Error(err))
			return nil
		}
		return w
	case !streaming && capture != nil:
		in.closeCapture(capture)
		return nil
	}
	return capture
}

func (in *Input) closeCapture(capture *WAVWriter) {
	if capture == nil {
		return
	}
	if err := capture.Close(); err != nil {
		in.logger.Warn("Failed to save debug audio", zap.Error(err))
		return
	}
	in.logger.Debug("Saved debug audio", zap.String("path", capture.Path()))
}
