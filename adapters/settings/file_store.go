// Package settings persists satellite settings in a YAML file that may also
// be edited by hand while the satellite runs.
package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/broadcast"
)

const defaultDebounce = 250 * time.Millisecond

// FileStore is a repositories.SettingsProvider backed by a YAML file.
type FileStore struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	value *broadcast.Value[entities.Settings]

	// serialises writes and guards written
	mu sync.Mutex
	// last content written by the store, to ignore our own file events
	written []byte
}

var _ repositories.SettingsProvider = (*FileStore)(nil)

// Open loads the settings at path on top of defaults. A missing file is
// created. When no device identifier is set yet, one is generated and
// persisted so the hub recognises the satellite across restarts.
func Open(path string, defaults entities.Settings, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		debounce: defaultDebounce,
		logger:   logger.With(zap.String("component", "settings"), zap.String("path", path)),
	}

	settings, err := s.read(defaults)
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return nil, err
	}

	generated := false
	if settings.MACAddress == "" {
		settings.MACAddress = NewDeviceID()
		generated = true
		s.logger.Info("Generated device identifier", zap.String("mac_address", settings.MACAddress))
	}
	if missing || generated {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create settings directory: %w", err)
		}
		if err := s.write(settings); err != nil {
			return nil, err
		}
	}

	s.value = broadcast.NewValue(settings)
	return s, nil
}

func (s *FileStore) Settings() entities.Settings {
	return s.value.Get().Clone()
}

func (s *FileStore) Subscribe() (<-chan entities.Settings, func()) {
	return s.value.Subscribe()
}

// Update applies fn to a copy of the settings, persists the result and then
// publishes it.
func (s *FileStore) Update(ctx context.Context, fn func(*entities.Settings)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.value.Get().Clone()
	fn(&settings)
	if err := s.writeLocked(settings); err != nil {
		return err
	}
	s.value.Set(settings)
	return nil
}

// Watch reloads the file after external edits until ctx is done. Invalid
// edits are logged and ignored.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// the directory, since atomic writes replace the file
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}
	s.logger.Info("Watching settings file")

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) ||
				!(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(s.debounce)
			} else {
				debounce.Reset(s.debounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			if err := s.reload(); err != nil {
				s.logger.Warn("Ignoring settings file change", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Settings watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bytes.Equal(data, s.written) {
		return nil
	}

	current := s.value.Get()
	settings := current.Clone()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	if settings.MACAddress == "" {
		settings.MACAddress = current.MACAddress
	}
	s.written = data
	s.value.Set(settings)
	s.logger.Info("Reloaded settings")
	return nil
}

func (s *FileStore) read(defaults entities.Settings) (entities.Settings, error) {
	settings := defaults.Clone()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	s.written = data
	return settings, nil
}

func (s *FileStore) write(settings entities.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(settings)
}

func (s *FileStore) writeLocked(settings entities.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.written = data
	return nil
}

// NewDeviceID returns a random, locally administered unicast MAC address.
func NewDeviceID() string {
	id := uuid.New()
	b := id[:6]
	b[0] = (b[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}
