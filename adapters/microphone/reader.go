package microphone

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/satriahrh/arunika/satellite/domain/repositories"
)

// ErrNotStarted is returned by Read before Start.
var ErrNotStarted = errors.New("microphone not started")

// ReaderMicrophone reads raw 16 kHz mono 16-bit PCM from a reader. A single
// goroutine reads for the whole lifetime of the microphone, so a reader
// blocked on input (such as stdin) stays blocked until Close or EOF.
type ReaderMicrophone struct {
	r          io.Reader
	frameBytes int
	paced      bool

	mu      sync.Mutex
	pump    *pump
	started bool
	next    time.Time
}

var _ repositories.Microphone = (*ReaderMicrophone)(nil)

// ReaderOption configures a ReaderMicrophone.
type ReaderOption func(*ReaderMicrophone)

// WithFrameBytes sets the size of the frames returned by Read.
func WithFrameBytes(n int) ReaderOption {
	return func(m *ReaderMicrophone) {
		if n > 0 {
			m.frameBytes = n
		}
	}
}

// WithRealtime delivers frames no faster than they would be captured, for
// replaying recordings.
func WithRealtime() ReaderOption {
	return func(m *ReaderMicrophone) {
		m.paced = true
	}
}

func NewReaderMicrophone(r io.Reader, opts ...ReaderOption) *ReaderMicrophone {
	m := &ReaderMicrophone{r: r, frameBytes: DefaultFrameBytes}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ReaderMicrophone) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pump == nil {
		m.pump = startPump(m.r, m.frameBytes)
	} else {
		m.pump.drain()
	}
	m.started = true
	m.next = time.Time{}
	return nil
}

func (m *ReaderMicrophone) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	p, started := m.pump, m.started
	m.mu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}

	frame, err := p.read(ctx)
	if err != nil {
		return nil, err
	}
	if m.paced {
		if err := m.pace(ctx); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (m *ReaderMicrophone) pace(ctx context.Context) error {
	m.mu.Lock()
	now := time.Now()
	if m.next.IsZero() || m.next.Before(now) {
		m.next = now
	}
	wait := m.next.Sub(now)
	// 2 bytes per sample at 16 kHz
	m.next = m.next.Add(time.Duration(m.frameBytes/2) * time.Second / 16000)
	m.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop pauses delivery. Frames read meanwhile are dropped on the next Start.
func (m *ReaderMicrophone) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Close ends the reading goroutine once its pending read returns.
func (m *ReaderMicrophone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	if m.pump != nil {
		m.pump.stop()
		m.pump = nil
	}
	return nil
}
