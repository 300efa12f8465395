package wakeword

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

const manifestType = "micro"

var ErrInvalidManifest = errors.New("wakeword: invalid manifest")

// LoadManifest reads one micro-wake-word manifest. The id is the file name
// without extension and a relative model path is resolved against the
// manifest's directory.
func LoadManifest(path string) (entities.WakeWord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.WakeWord{}, err
	}

	var ww entities.WakeWord
	if err := json.Unmarshal(data, &ww); err != nil {
		return entities.WakeWord{}, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	if err := validate(ww); err != nil {
		return entities.WakeWord{}, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}

	ww.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !filepath.IsAbs(ww.Model) {
		ww.Model = filepath.Join(filepath.Dir(path), ww.Model)
	}
	return ww, nil
}

// LoadManifests reads every *.json manifest in dir, sorted by id. Manifests
// that fail to load are skipped and reported in the returned error.
func LoadManifests(dir string) ([]entities.WakeWord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var (
		wakeWords []entities.WakeWord
		errs      []error
	)
	for _, path := range paths {
		ww, err := LoadManifest(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		wakeWords = append(wakeWords, ww)
	}

	sort.Slice(wakeWords, func(i, j int) bool { return wakeWords[i].ID < wakeWords[j].ID })
	return wakeWords, errors.Join(errs...)
}

func validate(ww entities.WakeWord) error {
	switch {
	case ww.Type != manifestType:
		return fmt.Errorf("unsupported type %q", ww.Type)
	case ww.WakeWord == "":
		return errors.New("missing wake_word")
	case ww.Model == "":
		return errors.New("missing model")
	case ww.Micro.ProbabilityCutoff <= 0 || ww.Micro.ProbabilityCutoff > 1:
		return fmt.Errorf("probability_cutoff %v out of range", ww.Micro.ProbabilityCutoff)
	case ww.Micro.SlidingWindowSize < 1:
		return fmt.Errorf("sliding_window_size %d out of range", ww.Micro.SlidingWindowSize)
	}
	return nil
}
