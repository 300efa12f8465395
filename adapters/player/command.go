package player

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/repositories"
)

// ErrNoCommand is returned when the player command template is empty.
var ErrNoCommand = errors.New("player command is empty")

// Placeholders replaced in the command template.
const (
	placeholderURL    = "{url}"
	placeholderVolume = "{volume}"
)

type runFunc func(ctx context.Context, name string, args ...string) error

// CommandPlayer plays media by running an external command once per url,
// for example "ffplay -nodisp -autoexit -volume {volume} {url}". {volume}
// expands to 0-100. Without {url} the url is appended as last argument.
type CommandPlayer struct {
	template []string
	run      runFunc
	logger   *zap.Logger

	mu        sync.Mutex
	volume    float32
	cancel    context.CancelFunc
	playback  int
	listeners []func()

	wg sync.WaitGroup
}

// Ensure CommandPlayer implements the player interfaces
var (
	_ repositories.AudioPlayer      = (*CommandPlayer)(nil)
	_ repositories.PlaybackObserver = (*CommandPlayer)(nil)
)

func NewCommandPlayer(command string, logger *zap.Logger) (*CommandPlayer, error) {
	template := strings.Fields(command)
	if len(template) == 0 {
		return nil, ErrNoCommand
	}
	return &CommandPlayer{
		template: template,
		run:      runCommand,
		logger:   logger.With(zap.String("component", "command_player"), zap.String("command", template[0])),
		volume:   1,
	}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Init does nothing, the command opens the device on every play.
func (p *CommandPlayer) Init() error {
	return nil
}

// Play stops the current playback and plays urls in order. A url that fails
// to play is logged and skipped.
func (p *CommandPlayer) Play(urls []string, onCompletion func()) {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.playback++
	gen := p.playback
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		for _, url := range urls {
			if ctx.Err() != nil {
				return
			}
			name, args := p.command(url)
			if err := p.run(ctx, name, args...); err != nil && ctx.Err() == nil {
				p.logger.Warn("Playback failed", zap.String("url", url), zap.Error(err))
			}
		}

		p.mu.Lock()
		current := gen == p.playback && p.cancel != nil
		if current {
			p.cancel = nil
		}
		p.mu.Unlock()
		if !current {
			return
		}

		if onCompletion != nil {
			onCompletion()
		}
		p.notifyIdle()
	}()
}

// Stop interrupts playback. The completion of the interrupted playback is
// not called.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.notifyIdle()
}

func (p *CommandPlayer) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume takes effect from the next url played.
func (p *CommandPlayer) SetVolume(volume float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(volume, 0), 1)
}

func (p *CommandPlayer) AddIdleListener(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Close stops playback and waits for the running command to exit.
func (p *CommandPlayer) Close() error {
	p.Stop()
	p.wg.Wait()
	return nil
}

func (p *CommandPlayer) notifyIdle() {
	p.mu.Lock()
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (p *CommandPlayer) command(url string) (string, []string) {
	p.mu.Lock()
	volume := strconv.Itoa(int(p.volume*100 + 0.5))
	p.mu.Unlock()

	args := make([]string, 0, len(p.template))
	hasURL := false
	for _, arg := range p.template[1:] {
		if strings.Contains(arg, placeholderURL) {
			hasURL = true
		}
		arg = strings.ReplaceAll(arg, placeholderURL, url)
		arg = strings.ReplaceAll(arg, placeholderVolume, volume)
		args = append(args, arg)
	}
	if !hasURL {
		args = append(args, url)
	}
	return p.template[0], args
}
