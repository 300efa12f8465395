package entities

// Settings are the user-tunable satellite settings. They may change while
// the satellite is running.
type Settings struct {
	Name               string   `yaml:"name" json:"name"`
	MACAddress         string   `yaml:"mac_address" json:"mac_address"`
	WakeWords          []string `yaml:"wake_words" json:"wake_words"`
	StopWords          []string `yaml:"stop_words" json:"stop_words"`
	Muted              bool     `yaml:"muted" json:"muted"`
	Volume             float32  `yaml:"volume" json:"volume"`
	DuckMultiplier     float32  `yaml:"duck_multiplier" json:"duck_multiplier"`
	EnableWakeSound    bool     `yaml:"enable_wake_sound" json:"enable_wake_sound"`
	WakeSound          string   `yaml:"wake_sound" json:"wake_sound"`
	TimerFinishedSound string   `yaml:"timer_finished_sound" json:"timer_finished_sound"`
	RepeatTimerSound   bool     `yaml:"repeat_timer_sound" json:"repeat_timer_sound"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Name:             "Arunika Satellite",
		WakeWords:        []string{"okay_nabu"},
		StopWords:        []string{"stop"},
		Volume:           1.0,
		DuckMultiplier:   0.5,
		EnableWakeSound:  true,
		RepeatTimerSound: true,
	}
}

// Clone returns a deep copy so callers can hand settings across goroutines.
func (s Settings) Clone() Settings {
	c := s
	c.WakeWords = append([]string(nil), s.WakeWords...)
	c.StopWords = append([]string(nil), s.StopWords...)
	return c
}
