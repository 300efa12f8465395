package wakeword

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(8000 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func TestEnergyFrontendStep(t *testing.T) {
	f := NewEnergyFrontend(30)
	silence := make([]int16, SamplesPerChunk)

	var emitted int
	for range 9 {
		consumed, features := f.Process(silence)
		require.Equal(t, SamplesPerChunk, consumed)
		emitted += len(features)
	}

	assert.Equal(t, 3, emitted)
}

func TestEnergyFrontendShortChunk(t *testing.T) {
	consumed, features := NewEnergyFrontend(10).Process(make([]int16, 10))

	assert.Zero(t, consumed)
	assert.Nil(t, features)
}

func TestEnergyFrontendLocatesTone(t *testing.T) {
	f := NewEnergyFrontend(10)
	signal := tone(2000, 2*SamplesPerChunk)

	f.Process(signal[:SamplesPerChunk])
	_, features := f.Process(signal[SamplesPerChunk:])
	require.Len(t, features, 1)
	require.Len(t, features[0], energyBands)

	// 2 kHz lands in bin 40 of the 50 Hz wide bins, i.e. band 9
	loudest := 0
	for i, v := range features[0] {
		if v > features[0][loudest] {
			loudest = i
		}
	}
	assert.Equal(t, 9, loudest)
}
