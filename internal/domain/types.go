package domain

import "fmt"

// CallState models the call lifecycle as seen by the UI.
type CallState string

const (
	CallStateIdle       CallState = "idle"
	CallStateConnecting CallState = "connecting"
	CallStateConnected  CallState = "connected"
)

// EventName identifies an event emitted by a call session.
type EventName string

const (
	EventCallStart   EventName = "call-start"
	EventCallEnd     EventName = "call-end"
	EventSpeechStart EventName = "speech-start"
	EventSpeechEnd   EventName = "speech-end"
	EventVolumeLevel EventName = "volume-level"
	EventError       EventName = "error"
)

// Events lists every event a controller subscribes to.
var Events = []EventName{
	EventCallStart,
	EventCallEnd,
	EventSpeechStart,
	EventSpeechEnd,
	EventVolumeLevel,
	EventError,
}

// Valid reports whether name is a known session event.
func (name EventName) Valid() bool {
	for _, known := range Events {
		if known == name {
			return true
		}
	}
	return false
}

// CallEvent is a single notification pushed by a call session.
type CallEvent struct {
	Name   EventName  `json:"name"`
	Volume float64    `json:"volume,omitempty"`
	Err    *CallError `json:"error,omitempty"`
}

// CallError describes a session lifecycle failure.
type CallError struct {
	Stage      string `json:"stage"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func (e *CallError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Stage, e.Message, e.StatusCode)
	}
	if e.Stage == "" {
		return e.Message
	}
	return e.Stage + ": " + e.Message
}

// ErrorCode identifies errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup  ErrorCode = "startup"
	ErrorCodeNotReady ErrorCode = "not_ready"
)

// Status summarizes controller state for the presentation layer.
type Status struct {
	State             CallState `json:"state"`
	Connecting        bool      `json:"connecting"`
	Connected         bool      `json:"connected"`
	AssistantSpeaking bool      `json:"assistantSpeaking"`
	VolumeLevel       float64   `json:"volumeLevel"`
	CredentialNotice  bool      `json:"credentialNotice"`
	CallID            string    `json:"callId,omitempty"`
	Message           string    `json:"message,omitempty"`
}
