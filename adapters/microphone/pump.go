// Package microphone provides PCM frame sources for hosts without a native
// capture API: a plain reader (stdin, a file, a pipe) and a capture command.
package microphone

import (
	"context"
	"io"
)

// DefaultFrameBytes is 1024 samples of 16 kHz mono 16-bit audio (64 ms).
const DefaultFrameBytes = 2048

const pumpBuffer = 8

// pump reads fixed-size frames from r until r fails or quit is closed.
type pump struct {
	frames chan []byte
	quit   chan struct{}
	done   chan struct{}
	// set before done is closed
	err error
}

func startPump(r io.Reader, frameBytes int) *pump {
	p := &pump{
		frames: make(chan []byte, pumpBuffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for {
			buf := make([]byte, frameBytes)
			if _, err := io.ReadFull(r, buf); err != nil {
				p.err = err
				return
			}
			select {
			case p.frames <- buf:
			case <-p.quit:
				p.err = io.ErrClosedPipe
				return
			}
		}
	}()
	return p
}

func (p *pump) read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-p.frames:
		return frame, nil
	case <-p.done:
		select {
		case frame := <-p.frames:
			return frame, nil
		default:
		}
		return nil, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain drops frames read while nobody was listening.
func (p *pump) drain() {
	for {
		select {
		case <-p.frames:
		default:
			return
		}
	}
}

func (p *pump) stop() {
	close(p.quit)
}
