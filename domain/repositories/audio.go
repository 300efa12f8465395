package repositories

import "context"

// AudioPlayer abstracts a playback device able to play a list of media URLs
// in order.
type AudioPlayer interface {
	// Init prepares the device ahead of playback, e.g. to grab audio focus.
	Init() error
	// Play plays urls in order and calls onCompletion once they all finished.
	// onCompletion is not called when playback is interrupted by Stop.
	Play(urls []string, onCompletion func())
	Stop()
	Volume() float32
	SetVolume(volume float32)
	Close() error
}

// PausablePlayer is implemented by players that can pause and resume.
type PausablePlayer interface {
	AudioPlayer
	Pause()
	Resume()
}

// PlaybackObserver is implemented by players that report when they go idle,
// either because playback ended or because it was stopped.
type PlaybackObserver interface {
	AddIdleListener(fn func())
}

// Microphone is a source of 16 kHz mono 16-bit little-endian PCM frames.
type Microphone interface {
	Start(ctx context.Context) error
	// Read blocks until the next frame is available.
	Read(ctx context.Context) ([]byte, error)
	Stop() error
}
