// Package wakeword detects wake and stop phrases in microphone audio.
package wakeword

import (
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/domain/repositories"
	"github.com/satriahrh/arunika/satellite/internal/metrics"
)

const (
	SampleRate      = 16000
	SamplesPerChunk = 160 // 10 ms
	BytesPerSample  = 2
	BytesPerChunk   = SamplesPerChunk * BytesPerSample
)

var ErrModelNotFound = errors.New("wakeword: model not found")

// Kind tells wake words from stop words.
type Kind int

const (
	KindWake Kind = iota
	KindStop
)

func (k Kind) String() string {
	if k == KindStop {
		return "stop"
	}
	return "wake"
}

// Detection is a phrase heard in the processed audio.
type Detection struct {
	Kind    Kind
	ModelID string
	Phrase  string
}

type modelKey struct {
	kind Kind
	id   string
}

// Detector runs every active wake and stop word model over the audio.
// Process must only be called from one goroutine; the active sets may be
// changed from any goroutine and are applied on the next Process call.
type Detector struct {
	logger   *zap.Logger
	metrics  *metrics.Collector
	loader   repositories.ModelLoader
	frontend Frontend

	catalog map[Kind]map[string]entities.WakeWord

	mu      sync.Mutex
	active  map[Kind][]string
	changed bool
	// written under mu, read freely by the Process goroutine
	order []modelKey

	loaded  map[modelKey]*Model
	pending []byte
	samples []int16
}

// NewDetector creates a detector able to load any of wakeWords and
// stopWords. No model is active until an active set is given.
func NewDetector(
	wakeWords, stopWords []entities.WakeWord,
	loader repositories.ModelLoader,
	frontend Frontend,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Detector {
	d := &Detector{
		logger:   logger.With(zap.String("component", "wakeword")),
		metrics:  collector,
		loader:   loader,
		frontend: frontend,
		catalog: map[Kind]map[string]entities.WakeWord{
			KindWake: make(map[string]entities.WakeWord),
			KindStop: make(map[string]entities.WakeWord),
		},
		active:  make(map[Kind][]string),
		loaded:  make(map[modelKey]*Model),
		samples: make([]int16, SamplesPerChunk),
	}
	for _, ww := range wakeWords {
		d.catalog[KindWake][ww.ID] = ww
	}
	for _, ww := range stopWords {
		d.catalog[KindStop][ww.ID] = ww
	}
	return d
}

// WakeWords lists the available wake words sorted by id.
func (d *Detector) WakeWords() []entities.WakeWord {
	out := make([]entities.WakeWord, 0, len(d.catalog[KindWake]))
	for _, ww := range d.catalog[KindWake] {
		out = append(out, ww)
	}
	slices.SortFunc(out, func(a, b entities.WakeWord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (d *Detector) SetActiveWakeWords(ids []string) {
	d.setActive(KindWake, ids)
}

func (d *Detector) SetActiveStopWords(ids []string) {
	d.setActive(KindStop, ids)
}

// ActiveWakeWords returns the requested wake word ids, loaded or not.
func (d *Detector) ActiveWakeWords() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.active[KindWake])
}

func (d *Detector) setActive(kind Kind, ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active[kind] = slices.Clone(ids)
	d.changed = true
}

// Process feeds audio through the frontend and all loaded models. Audio is
// consumed in 10 ms chunks; a trailing partial chunk is kept for the next
// call. Each model is reported at most once per call.
func (d *Detector) Process(ctx context.Context, audio []byte) []Detection {
	d.reload(ctx)

	d.pending = append(d.pending, audio...)
	var (
		detections []Detection
		fired      map[modelKey]bool
	)

	offset := 0
	for len(d.pending)-offset >= BytesPerChunk {
		chunk := d.pending[offset : offset+BytesPerChunk]
		for i := range d.samples {
			d.samples[i] = int16(binary.LittleEndian.Uint16(chunk[i*BytesPerSample:]))
		}

		consumed, features := d.frontend.Process(d.samples)
		if consumed <= 0 || consumed > SamplesPerChunk {
			consumed = SamplesPerChunk
		}
		offset += consumed * BytesPerSample

		for _, feature := range features {
			// every model sees every feature; only the report is deduplicated
			for _, key := range d.order {
				model := d.loaded[key]
				ok, err := model.Process(feature)
				if err != nil {
					d.logger.Debug("Model failed to score features",
						zap.String("model", key.id),
						zap.Error(err))
					continue
				}
				if !ok || fired[key] {
					continue
				}
				if fired == nil {
					fired = make(map[modelKey]bool)
				}
				fired[key] = true
				detections = append(detections, Detection{
					Kind:    key.kind,
					ModelID: model.ID,
					Phrase:  model.Phrase,
				})
				d.metrics.Detection(key.kind.String(), model.ID)
			}
		}
	}

	// keep the remainder at the start of the buffer
	d.pending = append(d.pending[:0], d.pending[offset:]...)
	return detections
}

// reload applies a changed active set: models leaving it are closed and new
// ones loaded. Unknown ids and load failures are logged and skipped.
func (d *Detector) reload(ctx context.Context) {
	d.mu.Lock()
	if !d.changed {
		d.mu.Unlock()
		return
	}
	d.changed = false
	active := map[Kind][]string{
		KindWake: slices.Clone(d.active[KindWake]),
		KindStop: slices.Clone(d.active[KindStop]),
	}
	d.mu.Unlock()

	want := make(map[modelKey]entities.WakeWord)
	for kind, ids := range active {
		for _, id := range ids {
			ww, ok := d.catalog[kind][id]
			if !ok {
				d.logger.Warn("Ignoring unknown model",
					zap.Stringer("kind", kind),
					zap.Error(fmt.Errorf("%w: %s", ErrModelNotFound, id)))
				continue
			}
			want[modelKey{kind: kind, id: id}] = ww
		}
	}

	for key, model := range d.loaded {
		if _, ok := want[key]; ok {
			continue
		}
		if err := model.Close(); err != nil {
			d.logger.Warn("Failed to close model", zap.String("model", key.id), zap.Error(err))
		}
		delete(d.loaded, key)
		d.logger.Info("Unloaded model", zap.Stringer("kind", key.kind), zap.String("model", key.id))
	}

	for key, ww := range want {
		if _, ok := d.loaded[key]; ok {
			continue
		}
		scorer, err := d.loader.Load(ctx, ww)
		if err != nil {
			d.metrics.ModelLoadFailed(key.id)
			d.logger.Warn("Failed to load model",
				zap.Stringer("kind", key.kind),
				zap.String("model", key.id),
				zap.Error(err))
			continue
		}
		d.loaded[key] = NewModel(ww.ID, ww.WakeWord, scorer, ww.Micro.ProbabilityCutoff, ww.Micro.SlidingWindowSize)
		d.logger.Info("Loaded model",
			zap.Stringer("kind", key.kind),
			zap.String("model", key.id),
			zap.String("phrase", ww.WakeWord))
	}

	order := make([]modelKey, 0, len(d.loaded))
	for key := range d.loaded {
		order = append(order, key)
	}
	slices.SortFunc(order, func(a, b modelKey) int {
		if c := cmp.Compare(a.kind, b.kind); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	d.mu.Lock()
	d.order = order
	d.mu.Unlock()
}

// Loaded returns the ids of the currently loaded models of kind.
func (d *Detector) Loaded(kind Kind) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ids []string
	for _, key := range d.order {
		if key.kind == kind {
			ids = append(ids, key.id)
		}
	}
	return ids
}

// Close unloads every model.
func (d *Detector) Close() error {
	var errs []error
	for key, model := range d.loaded {
		errs = append(errs, model.Close())
		delete(d.loaded, key)
	}
	d.mu.Lock()
	d.order = nil
	d.mu.Unlock()
	return errors.Join(errs...)
}
