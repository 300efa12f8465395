package settings

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpenCreatesFileWithDeviceID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "satellite.yaml")

	store, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)

	settings := store.Settings()
	assert.Regexp(t, `^[0-9a-f]{2}(:[0-9a-f]{2}){5}$`, settings.MACAddress)
	assert.Equal(t, entities.DefaultSettings().WakeWords, settings.WakeWords)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk entities.Settings
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, settings.MACAddress, onDisk.MACAddress)

	reopened, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, settings.MACAddress, reopened.Settings().MACAddress, "the identifier is stable")
}

func TestNewDeviceIDIsLocalUnicast(t *testing.T) {
	for range 20 {
		mac, err := net.ParseMAC(NewDeviceID())
		require.NoError(t, err)
		assert.Equal(t, byte(0x02), mac[0]&0x03)
	}
}

func TestOpenKeepsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Office\nmac_address: 02:aa:bb:cc:dd:ee\nwake_words: [hey_jarvis]\n"), 0o644))

	store, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)

	settings := store.Settings()
	assert.Equal(t, "Office", settings.Name)
	assert.Equal(t, "02:aa:bb:cc:dd:ee", settings.MACAddress)
	assert.Equal(t, []string{"hey_jarvis"}, settings.WakeWords)
	assert.Equal(t, []string{"stop"}, settings.StopWords, "defaults fill the gaps")
}

func TestOpenRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wake_words: {nope"), 0o644))

	_, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestUpdatePersistsAndPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellite.yaml")
	store, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)

	updates, cancel := store.Subscribe()
	defer cancel()
	<-updates

	require.NoError(t, store.Update(context.Background(), func(s *entities.Settings) {
		s.WakeWords = []string{"hey_jarvis", "okay_nabu"}
	}))

	assert.Equal(t, []string{"hey_jarvis", "okay_nabu"}, (<-updates).WakeWords)

	reopened, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"hey_jarvis", "okay_nabu"}, reopened.Settings().WakeWords)

	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()
	assert.ErrorIs(t, store.Update(ctx, func(*entities.Settings) {}), context.Canceled)
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satellite.yaml")
	store, err := Open(path, entities.DefaultSettings(), zaptest.NewLogger(t))
	require.NoError(t, err)
	store.debounce = 10 * time.Millisecond
	mac := store.Settings().MACAddress

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.Watch(ctx))
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()
	<-updates

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("wake_words: {broken"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("name: Garage\nmuted: true\n"), 0o644))

	timeout := time.After(2 * time.Second)
	for {
		select {
		case settings := <-updates:
			if settings.Name != "Garage" || !settings.Muted {
				continue
			}
			assert.Equal(t, mac, settings.MACAddress, "the identifier survives edits that omit it")
			return
		case <-timeout:
			t.Fatal("settings were not reloaded")
		}
	}
}
