package entities

// WakeWord is a micro-wake-word manifest as shipped next to each model file.
type WakeWord struct {
	// ID is derived from the manifest file name, not from its contents.
	ID               string        `json:"-"`
	Type             string        `json:"type"`
	WakeWord         string        `json:"wake_word"`
	Model            string        `json:"model"`
	Micro            MicroWakeWord `json:"micro"`
	Author           string        `json:"author,omitempty"`
	Website          string        `json:"website,omitempty"`
	TrainedLanguages []string      `json:"trained_languages,omitempty"`
	Version          int           `json:"version,omitempty"`
}

// MicroWakeWord holds the classifier parameters of a manifest.
type MicroWakeWord struct {
	ProbabilityCutoff     float32 `json:"probability_cutoff"`
	FeatureStepSize       int     `json:"feature_step_size"`
	SlidingWindowSize     int     `json:"sliding_window_size"`
	TensorArenaSize       int     `json:"tensor_arena_size"`
	MinimumESPHomeVersion string  `json:"minimum_esphome_version"`
}
