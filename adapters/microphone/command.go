package microphone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/repositories"
)

// ErrNoCommand is returned when the capture command is empty.
var ErrNoCommand = errors.New("microphone command is empty")

// CommandMicrophone captures audio by running a command that writes raw
// 16 kHz mono 16-bit PCM to stdout, such as
// "arecord -q -r 16000 -c 1 -f S16_LE -t raw".
type CommandMicrophone struct {
	args       []string
	frameBytes int
	logger     *zap.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	pump *pump
}

var _ repositories.Microphone = (*CommandMicrophone)(nil)

func NewCommandMicrophone(command string, frameBytes int, logger *zap.Logger) (*CommandMicrophone, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, ErrNoCommand
	}
	if frameBytes <= 0 {
		frameBytes = DefaultFrameBytes
	}
	return &CommandMicrophone{
		args:       args,
		frameBytes: frameBytes,
		logger:     logger.With(zap.String("component", "command_microphone"), zap.String("command", args[0])),
	}, nil
}

// Start launches the capture command. The process lives until Stop, it is
// not tied to ctx.
func (m *CommandMicrophone) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return nil
	}

	cmd := exec.Command(m.args[0], m.args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start capture command: %w", err)
	}

	m.cmd = cmd
	m.pump = startPump(stdout, m.frameBytes)
	m.logger.Debug("Capture command started", zap.Int("pid", cmd.Process.Pid))
	return nil
}

// Read returns the next frame. Once the command exits, Read fails and the
// microphone has to be restarted.
func (m *CommandMicrophone) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	p := m.pump
	m.mu.Unlock()
	if p == nil {
		return nil, ErrNotStarted
	}

	frame, err := p.read(ctx)
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("capture command: %w", err)
	}
	return frame, err
}

func (m *CommandMicrophone) Stop() error {
	m.mu.Lock()
	cmd, p := m.cmd, m.pump
	m.cmd, m.pump = nil, nil
	m.mu.Unlock()
	if cmd == nil {
		return nil
	}

	p.stop()
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		m.logger.Warn("Failed to kill capture command", zap.Error(err))
	}
	// the pump ends once the pipe is closed by Wait
	err := cmd.Wait()
	<-p.done

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait for capture command: %w", err)
	}
	return nil
}
