// Package simulated provides a scripted call session for offline demos and
// tests. It never touches the network.
package simulated

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"frontdesk/internal/domain"
	"frontdesk/internal/events"
	"frontdesk/internal/logging"
	"frontdesk/internal/ports"
)

// DefaultScript is one assistant turn, replayed until the call stops.
var DefaultScript = []domain.CallEvent{
	{Name: domain.EventSpeechStart},
	{Name: domain.EventVolumeLevel, Volume: 0.35},
	{Name: domain.EventVolumeLevel, Volume: 0.8},
	{Name: domain.EventVolumeLevel, Volume: 0.55},
	{Name: domain.EventSpeechEnd},
	{Name: domain.EventVolumeLevel, Volume: 0.05},
}

type Config struct {
	PublicKey string
	// Step is the delay before call-start and between script entries.
	Step   time.Duration
	Script []domain.CallEvent
	Logger *zerolog.Logger
}

var _ ports.CallSession = (*Session)(nil)

// Session implements ports.CallSession with a fixed event script.
type Session struct {
	cfg    Config
	hub    *events.Hub
	logger zerolog.Logger

	mu     sync.Mutex
	active *run
	last   *run
}

type run struct {
	id   string
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

func NewSession(cfg Config) *Session {
	if cfg.Step <= 0 {
		cfg.Step = 400 * time.Millisecond
	}
	if len(cfg.Script) == 0 {
		cfg.Script = DefaultScript
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Session{
		cfg:    cfg,
		hub:    events.NewHub(),
		logger: logging.Component(logger, "simulated_session"),
	}
}

func (s *Session) Subscribe(name domain.EventName, handler ports.EventHandler) func() {
	return s.hub.Subscribe(name, handler)
}

func (s *Session) Start(assistant domain.AssistantOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logger.Debug().Str("call_id", s.active.id).Msg("start ignored, call already active")
		return
	}

	r := &run{id: uuid.New().String(), stop: make(chan struct{}), done: make(chan struct{})}
	s.active = r
	s.last = r
	s.logger.Debug().Str("call_id", r.id).Str("assistant", assistant.Name).Msg("simulated call starting")

	go s.play(r)
}

func (s *Session) Stop() {
	s.mu.Lock()
	r := s.active
	s.mu.Unlock()

	if r != nil {
		r.once.Do(func() { close(r.stop) })
	}
}

// Wait blocks until the most recently started call has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	r := s.last
	s.mu.Unlock()

	if r != nil {
		<-r.done
	}
}

func (s *Session) play(r *run) {
	defer close(r.done)

	if strings.TrimSpace(s.cfg.PublicKey) == "" {
		s.end(r, domain.CallEvent{
			Name: domain.EventError,
			Err:  &domain.CallError{Stage: "auth", Message: "public key missing"},
		})
		return
	}

	ticker := time.NewTicker(s.cfg.Step)
	defer ticker.Stop()

	select {
	case <-r.stop:
		s.end(r, domain.CallEvent{Name: domain.EventCallEnd})
		return
	case <-ticker.C:
	}
	s.hub.Emit(domain.CallEvent{Name: domain.EventCallStart})

	for i := 0; ; i++ {
		select {
		case <-r.stop:
			s.end(r, domain.CallEvent{Name: domain.EventCallEnd})
			return
		case <-ticker.C:
			s.hub.Emit(s.cfg.Script[i%len(s.cfg.Script)])
		}
	}
}

// end frees the session for the next Start, then emits the final event.
func (s *Session) end(r *run, event domain.CallEvent) {
	s.mu.Lock()
	if s.active == r {
		s.active = nil
	}
	s.mu.Unlock()

	s.hub.Emit(event)
}
