package wakeword

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceScorer struct {
	probabilities []float32
	err           error
}

func (s *sequenceScorer) Score([]float32) (float32, error) {
	if s.err != nil {
		return 0, s.err
	}
	p := s.probabilities[0]
	s.probabilities = s.probabilities[1:]
	return p, nil
}

func (s *sequenceScorer) Close() error { return nil }

func TestModelSlidingWindowMean(t *testing.T) {
	scorer := &sequenceScorer{probabilities: []float32{0.9, 0.9, 0.3, 0.9, 0.9, 0.9}}
	m := NewModel("id", "phrase", scorer, 0.8, 3)

	var fired []bool
	for range 6 {
		ok, err := m.Process(nil)
		require.NoError(t, err)
		fired = append(fired, ok)
	}

	// windows: [.9 .9 .3]=.7, [.9 .3 .9]=.7, [.3 .9 .9]=.7, [.9 .9 .9]=.9
	assert.Equal(t, []bool{false, false, false, false, false, true}, fired)
}

func TestModelResetsAfterDetection(t *testing.T) {
	scorer := &sequenceScorer{probabilities: []float32{1, 1, 1, 1}}
	m := NewModel("id", "phrase", scorer, 0.5, 2)

	var fired []bool
	for range 4 {
		ok, _ := m.Process(nil)
		fired = append(fired, ok)
	}

	assert.Equal(t, []bool{false, true, false, true}, fired)
}

func TestModelScorerError(t *testing.T) {
	m := NewModel("id", "phrase", &sequenceScorer{err: errors.New("boom")}, 0.5, 1)

	ok, err := m.Process(nil)

	assert.False(t, ok)
	assert.Error(t, err)
}
