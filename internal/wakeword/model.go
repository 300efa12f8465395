package wakeword

import "github.com/satriahrh/arunika/satellite/domain/repositories"

// Model is a loaded classifier with its sliding window of recent
// probabilities.
type Model struct {
	ID     string
	Phrase string

	scorer repositories.Scorer
	cutoff float32

	window []float32
	next   int
	filled int
}

// NewModel wraps scorer. windowSize values below 1 are treated as 1.
func NewModel(id, phrase string, scorer repositories.Scorer, cutoff float32, windowSize int) *Model {
	return &Model{
		ID:     id,
		Phrase: phrase,
		scorer: scorer,
		cutoff: cutoff,
		window: make([]float32, max(1, windowSize)),
	}
}

// Process scores one feature vector and reports whether the mean of the
// last window-size probabilities reached the cutoff. The window is cleared
// after a detection so one utterance fires once.
func (m *Model) Process(features []float32) (bool, error) {
	p, err := m.scorer.Score(features)
	if err != nil {
		return false, err
	}

	m.window[m.next] = p
	m.next = (m.next + 1) % len(m.window)
	if m.filled < len(m.window) {
		m.filled++
	}
	if m.filled < len(m.window) {
		return false, nil
	}

	var sum float32
	for _, v := range m.window {
		sum += v
	}
	if sum/float32(len(m.window)) < m.cutoff {
		return false, nil
	}

	m.reset()
	return true, nil
}

func (m *Model) reset() {
	clear(m.window)
	m.next = 0
	m.filled = 0
}

func (m *Model) Close() error {
	return m.scorer.Close()
}
