package adapters

import (
	"context"
	"sync"

	"github.com/satriahrh/arunika/satellite/adapters/settings"
	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/broadcast"
)

// MemorySettings is an in-memory implementation of SettingsProvider
// Changes are lost when the process exits, including the generated device
// identifier, so the hub sees a new device after every restart.
type MemorySettings struct {
	mu    sync.Mutex
	value *broadcast.Value[entities.Settings]
}

// Ensure MemorySettings implements the SettingsProvider interface
var _ repositories.SettingsProvider = (*MemorySettings)(nil)

// NewMemorySettings creates a new in-memory settings provider
func NewMemorySettings(initial entities.Settings) *MemorySettings {
	initial = initial.Clone()
	if initial.MACAddress == "" {
		initial.MACAddress = settings.NewDeviceID()
	}
	return &MemorySettings{value: broadcast.NewValue(initial)}
}

func (m *MemorySettings) Settings() entities.Settings {
	return m.value.Get().Clone()
}

func (m *MemorySettings) Subscribe() (<-chan entities.Settings, func()) {
	return m.value.Subscribe()
}

// Update implements SettingsProvider interface
func (m *MemorySettings) Update(ctx context.Context, fn func(*entities.Settings)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.value.Get().Clone()
	fn(&s)
	m.value.Set(s)
	return nil
}
