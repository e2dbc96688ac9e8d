package ports

import (
	"time"

	"frontdesk/internal/domain"
)

// EventHandler receives call session events.
type EventHandler func(event domain.CallEvent)

// CallSession is a handle to an external voice-assistant call.
//
// Start and Stop return immediately; outcomes arrive later as events.
type CallSession interface {
	Start(assistant domain.AssistantOptions)
	Stop()
	Subscribe(name domain.EventName, handler EventHandler) (unsubscribe func())
}

// StatusSink receives controller state for the UI.
type StatusSink interface {
	StatusChanged(status domain.Status)
}

// Clock creates cancelable one-shot timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable handle returned by Clock.
type Timer interface {
	Stop() bool
}
