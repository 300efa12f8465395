package wakeword

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okayNabu = `{
  "type": "micro",
  "wake_word": "Okay Nabu",
  "author": "Kevin Ahrendt",
  "website": "https://www.kevinahrendt.com/",
  "model": "okay_nabu.tflite",
  "trained_languages": ["en"],
  "version": 2,
  "micro": {
    "probability_cutoff": 0.97,
    "feature_step_size": 10,
    "sliding_window_size": 5,
    "tensor_arena_size": 30000,
    "minimum_esphome_version": "2024.7.0"
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "okay_nabu.json", okayNabu)

	ww, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "okay_nabu", ww.ID)
	assert.Equal(t, "Okay Nabu", ww.WakeWord)
	assert.Equal(t, filepath.Join(dir, "okay_nabu.tflite"), ww.Model)
	assert.Equal(t, float32(0.97), ww.Micro.ProbabilityCutoff)
	assert.Equal(t, 5, ww.Micro.SlidingWindowSize)
	assert.Equal(t, []string{"en"}, ww.TrainedLanguages)
	assert.Equal(t, 2, ww.Version)
}

func TestLoadManifestsSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "okay_nabu.json", okayNabu)
	writeFile(t, dir, "broken.json", `{"type": "micro"`)
	writeFile(t, dir, "wrong_type.json", `{"type": "v1", "wake_word": "x", "model": "x", "micro": {"probability_cutoff": 0.5, "sliding_window_size": 1}}`)
	writeFile(t, dir, "notes.txt", "ignored")

	wakeWords, err := LoadManifests(dir)

	assert.ErrorIs(t, err, ErrInvalidManifest)
	require.Len(t, wakeWords, 1)
	assert.Equal(t, "okay_nabu", wakeWords[0].ID)
}

func TestLoadManifestsEmptyDir(t *testing.T) {
	wakeWords, err := LoadManifests(t.TempDir())

	assert.NoError(t, err)
	assert.Empty(t, wakeWords)
}
