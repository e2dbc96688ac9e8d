package usecase

import (
	"time"

	"frontdesk/internal/ports"
)

// SystemClock schedules timers on the runtime clock.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
