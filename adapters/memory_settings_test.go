package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

func TestMemorySettings(t *testing.T) {
	initial := entities.DefaultSettings()
	store := NewMemorySettings(initial)

	got := store.Settings()
	assert.NotEmpty(t, got.MACAddress)
	assert.Equal(t, initial.WakeWords, got.WakeWords)

	updates, cancel := store.Subscribe()
	defer cancel()
	<-updates

	require.NoError(t, store.Update(context.Background(), func(s *entities.Settings) {
		s.WakeWords[0] = "hey_jarvis"
	}))
	assert.Equal(t, []string{"hey_jarvis"}, (<-updates).WakeWords)
	assert.Equal(t, []string{"okay_nabu"}, initial.WakeWords, "the caller's settings are not shared")
	assert.Equal(t, got.MACAddress, store.Settings().MACAddress)
}

func TestMemorySettingsKeepsDeviceID(t *testing.T) {
	initial := entities.DefaultSettings()
	initial.MACAddress = "02:00:00:00:00:01"

	assert.Equal(t, "02:00:00:00:00:01", NewMemorySettings(initial).Settings().MACAddress)
}

func TestMemorySettingsUpdateCancelled(t *testing.T) {
	store := NewMemorySettings(entities.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Update(ctx, func(s *entities.Settings) { s.Name = "x" }), context.Canceled)
	assert.Equal(t, entities.DefaultSettings().Name, store.Settings().Name)
}
