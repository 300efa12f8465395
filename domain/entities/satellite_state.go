package entities

// SatelliteState is the externally observable state of the voice satellite.
type SatelliteState int

const (
	StateStopped SatelliteState = iota
	StateDisconnected
	StateConnected
	StateListening
	StateProcessing
	StateResponding
	StateServerError
)

var satelliteStateNames = map[SatelliteState]string{
	StateStopped:      "stopped",
	StateDisconnected: "disconnected",
	StateConnected:    "connected",
	StateListening:    "listening",
	StateProcessing:   "processing",
	StateResponding:   "responding",
	StateServerError:  "server_error",
}

func (s SatelliteState) String() string {
	if name, ok := satelliteStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the state by name for the diagnostics API.
func (s SatelliteState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AllSatelliteStates lists every state, in declaration order.
func AllSatelliteStates() []SatelliteState {
	return []SatelliteState{
		StateStopped,
		StateDisconnected,
		StateConnected,
		StateListening,
		StateProcessing,
		StateResponding,
		StateServerError,
	}
}
