package microphone

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReaderMicrophoneFrames(t *testing.T) {
	mic := NewReaderMicrophone(bytes.NewReader([]byte("aabbccd")), WithFrameBytes(2))
	ctx := context.Background()

	_, err := mic.Read(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, mic.Start(ctx))
	for _, want := range []string{"aa", "bb", "cc"} {
		frame, err := mic.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, string(frame))
	}

	_, err = mic.Read(ctx)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "the partial frame is dropped")
}

func TestReaderMicrophoneReadHonoursContext(t *testing.T) {
	r, w := io.Pipe()
	mic := NewReaderMicrophone(r)
	require.NoError(t, mic.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := mic.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, mic.Close())
	w.Close()
}

func TestReaderMicrophoneRestartDropsStaleFrames(t *testing.T) {
	r, w := io.Pipe()
	mic := NewReaderMicrophone(r, WithFrameBytes(1))
	ctx := context.Background()
	require.NoError(t, mic.Start(ctx))

	_, err := w.Write([]byte("a"))
	require.NoError(t, err)
	frame, err := mic.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", string(frame))

	require.NoError(t, mic.Stop())
	_, err = w.Write([]byte("b"))
	require.NoError(t, err)
	// the pump has taken "b" off the pipe once the write returned
	assert.Eventually(t, func() bool { return len(mic.pump.frames) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, mic.Start(ctx))
	go w.Write([]byte("c"))
	frame, err = mic.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", string(frame))

	w.Close()
	_, err = mic.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderMicrophoneRealtime(t *testing.T) {
	// 320 bytes are 10 ms
	mic := NewReaderMicrophone(bytes.NewReader(make([]byte, 320*5)), WithFrameBytes(320), WithRealtime())
	ctx := context.Background()
	require.NoError(t, mic.Start(ctx))

	start := time.Now()
	for range 5 {
		_, err := mic.Read(ctx)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestNewCommandMicrophoneRequiresCommand(t *testing.T) {
	_, err := NewCommandMicrophone("", 0, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestCommandMicrophone(t *testing.T) {
	if _, err := exec.LookPath("head"); err != nil {
		t.Skip("head is not available")
	}
	mic, err := NewCommandMicrophone("head -c 64 /dev/zero", 32, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = mic.Read(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, mic.Start(ctx))
	for range 2 {
		frame, err := mic.Read(ctx)
		require.NoError(t, err)
		assert.Len(t, frame, 32)
	}
	_, err = mic.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, mic.Stop())
	require.NoError(t, mic.Stop())
}

func TestCommandMicrophoneStopKillsCapture(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat is not available")
	}
	mic, err := NewCommandMicrophone("cat /dev/zero", 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mic.Start(ctx))
	frame, err := mic.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, frame, DefaultFrameBytes)

	require.NoError(t, mic.Stop())
	_, err = mic.Read(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)
}
