package repositories

import (
	"context"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

// Scorer is a loaded wake word classifier. It maps one feature vector to the
// probability that the phrase was just spoken.
type Scorer interface {
	Score(features []float32) (float32, error)
	Close() error
}

// ModelLoader loads the classifier referenced by a manifest.
type ModelLoader interface {
	Load(ctx context.Context, wakeWord entities.WakeWord) (Scorer, error)
}
