package wakeword

import (
	"context"
	"errors"
	"fmt"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
)

var ErrNoInference = errors.New("wakeword: no inference backend configured")

// NoInferenceLoader is used when no classifier backend is linked in. Every
// load fails, so the detector runs without models and the satellite is woken
// by the hub only.
type NoInferenceLoader struct{}

var _ repositories.ModelLoader = NoInferenceLoader{}

func (NoInferenceLoader) Load(_ context.Context, ww entities.WakeWord) (repositories.Scorer, error) {
	return nil, fmt.Errorf("%w: %s", ErrNoInference, ww.Model)
}
