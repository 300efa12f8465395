package api

import (
	"time"

	"github.com/satriahrh/arunika/satellite/internal/websocket"
)

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// StateResponse represents the current satellite state
type StateResponse struct {
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// TimersResponse lists the mirrored timers in display order
type TimersResponse struct {
	Timers    []websocket.TimerView `json:"timers"`
	Timestamp time.Time             `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
