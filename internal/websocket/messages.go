package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeState     MessageType = "state"
	MessageTypeTimers    MessageType = "timers"
	MessageTypeSubscribe MessageType = "subscribe"
	MessageTypePing      MessageType = "ping"
	MessageTypePong      MessageType = "pong"
	MessageTypeError     MessageType = "error"
)

// Topic is a stream a client may follow.
type Topic string

const (
	TopicState  Topic = "state"
	TopicTimers Topic = "timers"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// StateMessage carries the current satellite state
type StateMessage struct {
	BaseMessage
	State string `json:"state"`
}

// TimersMessage carries every known timer in display order
type TimersMessage struct {
	BaseMessage
	Timers []TimerView `json:"timers"`
}

// TimerView is a timer as shown to diagnostics clients.
type TimerView struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	Status           string `json:"status"`
	TotalSeconds     int64  `json:"total_seconds"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// SubscribeMessage replaces the topics a client follows
type SubscribeMessage struct {
	BaseMessage
	Topics []Topic `json:"topics"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates a message sent by a client
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case MessageTypeSubscribe:
		var msg SubscribeMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid subscribe message: %w", err)
		}
		for _, topic := range msg.Topics {
			if topic != TopicState && topic != TopicTimers {
				return nil, fmt.Errorf("unknown topic: %s", topic)
			}
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func newBase(t MessageType, now time.Time) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// CreateStateMessage creates a state snapshot message
func CreateStateMessage(state entities.SatelliteState, now time.Time) *StateMessage {
	return &StateMessage{
		BaseMessage: newBase(MessageTypeState, now),
		State:       state.String(),
	}
}

// CreateTimersMessage creates a timers snapshot message. Remaining time is
// computed at now.
func CreateTimersMessage(timers []entities.VoiceTimer, now time.Time) *TimersMessage {
	views := make([]TimerView, len(timers))
	for i, timer := range timers {
		views[i] = TimerView{
			ID:               timer.ID,
			Name:             timer.Name,
			Status:           timer.Status.String(),
			TotalSeconds:     int64(timer.Total / time.Second),
			RemainingSeconds: int64(timer.RemainingDuration(now).Round(time.Second) / time.Second),
		}
	}
	return &TimersMessage{
		BaseMessage: newBase(MessageTypeTimers, now),
		Timers:      views,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError, time.Now()),
		Code:        code,
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong, time.Now()),
		Data:        data,
	}
}
