// Package relay implements a call session over a websocket relay that
// fronts the hosted voice-assistant service.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"frontdesk/internal/domain"
	"frontdesk/internal/events"
	"frontdesk/internal/logging"
	"frontdesk/internal/ports"
)

const (
	stageAuth      = "auth"
	stageTransport = "transport"

	writeTimeout = 5 * time.Second
)

var errStopped = errors.New("call stopped before connecting")

// Config controls relay websocket settings.
type Config struct {
	URL         string
	PublicKey   string
	TokenSecret string
	TokenTTL    time.Duration
	DialTimeout time.Duration
	Dialer      *websocket.Dialer
	Logger      *zerolog.Logger
}

var _ ports.CallSession = (*Session)(nil)

// Session implements ports.CallSession. At most one call is active at a time.
type Session struct {
	cfg    Config
	hub    *events.Hub
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.Mutex
	active *call
	last   *call
}

func NewSession(cfg Config) *Session {
	if cfg.URL == "" {
		cfg.URL = "ws://localhost:8787/call"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 10 * time.Minute
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Session{
		cfg:    cfg,
		hub:    events.NewHub(),
		logger: logging.Component(logger, "relay_session"),
		now:    time.Now,
	}
}

func (s *Session) Subscribe(name domain.EventName, handler ports.EventHandler) func() {
	return s.hub.Subscribe(name, handler)
}

// Start dials the relay in the background. Failures arrive as error events.
func (s *Session) Start(assistant domain.AssistantOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logger.Debug().Str("call_id", s.active.id).Msg("start ignored, call already active")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &call{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.active = c
	s.last = c

	go s.run(ctx, c, assistant)
}

// Stop asks the relay to hang up and closes the connection.
func (s *Session) Stop() {
	s.mu.Lock()
	c := s.active
	s.mu.Unlock()

	if c == nil {
		return
	}
	c.stop(s.logger)
}

// Wait blocks until the most recently started call has fully shut down.
func (s *Session) Wait() {
	s.mu.Lock()
	c := s.last
	s.mu.Unlock()

	if c != nil {
		<-c.done
	}
}

func (s *Session) run(ctx context.Context, c *call, assistant domain.AssistantOptions) {
	defer func() {
		s.release(c)
		c.cancel()
		close(c.done)
	}()

	logger := s.logger.With().Str("call_id", c.id).Logger()

	token, err := bearerToken(s.cfg.PublicKey, s.cfg.TokenSecret, s.cfg.TokenTTL, s.now())
	if err != nil {
		stage := stageAuth
		if !errors.Is(err, errMissingPublicKey) {
			stage = stageTransport
		}
		s.end(c, errorEvent(stage, err.Error(), 0))
		return
	}

	wsURL, err := buildCallURL(s.cfg.URL)
	if err != nil {
		s.end(c, errorEvent(stageTransport, err.Error(), 0))
		return
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	dialCtx, cancelDial := context.WithTimeout(ctx, s.cfg.DialTimeout)
	conn, resp, err := s.dialer(c).DialContext(dialCtx, wsURL, headers)
	cancelDial()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if c.isStopping() {
			s.end(c, domain.CallEvent{Name: domain.EventCallEnd})
			return
		}
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		logger.Warn().Err(err).Int("status_code", statusCode).Msg("relay dial failed")
		s.end(c, errorEvent(stageTransport, fmt.Sprintf("failed to connect to relay: %v", err), statusCode))
		return
	}

	if !c.attach(conn) {
		_ = conn.Close()
		s.end(c, domain.CallEvent{Name: domain.EventCallEnd})
		return
	}
	defer conn.Close()

	if err := c.writeJSON(startFrame{Type: "start", CallID: c.id, Assistant: assistant}); err != nil {
		if c.isStopping() {
			s.end(c, domain.CallEvent{Name: domain.EventCallEnd})
			return
		}
		s.end(c, errorEvent(stageTransport, fmt.Sprintf("failed to send start: %v", err), 0))
		return
	}
	logger.Debug().Str("assistant", assistant.Name).Msg("start sent")

	s.readLoop(c, logger)
}

// dialer returns a copy of the configured dialer that records the raw
// connection on c, so Stop can abort a handshake in flight.
func (s *Session) dialer(c *call) *websocket.Dialer {
	dialer := *s.cfg.Dialer
	netDial := dialer.NetDialContext
	if netDial == nil {
		netDial = (&net.Dialer{}).DialContext
	}
	dialer.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		raw, err := netDial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if !c.track(raw) {
			_ = raw.Close()
			return nil, errStopped
		}
		return raw, nil
	}
	return &dialer
}

func (s *Session) readLoop(c *call, logger zerolog.Logger) {
	ended := false
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if ended {
				return
			}
			if c.isStopping() || isCleanClose(err) {
				s.end(c, domain.CallEvent{Name: domain.EventCallEnd})
				return
			}
			logger.Warn().Err(err).Msg("relay read failed")
			s.end(c, errorEvent(stageTransport, fmt.Sprintf("connection lost: %v", err), 0))
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			logger.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}

		event, ok := frame.event()
		if !ok {
			logger.Debug().Str("type", frame.Type).Msg("dropping unknown frame")
			continue
		}
		if ended {
			continue
		}

		switch event.Name {
		case domain.EventCallEnd:
			ended = true
			s.end(c, event)
		case domain.EventError:
			ended = true
			s.end(c, event)
			c.stop(logger)
		default:
			s.hub.Emit(event)
		}
	}
}

// end frees the session for the next Start, then emits the call's final
// event. Handlers may call Start again from inside it.
func (s *Session) end(c *call, event domain.CallEvent) {
	s.release(c)
	s.hub.Emit(event)
}

func (s *Session) release(c *call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == c {
		s.active = nil
	}
}

func errorEvent(stage string, message string, statusCode int) domain.CallEvent {
	return domain.CallEvent{
		Name: domain.EventError,
		Err:  &domain.CallError{Stage: stage, Message: message, StatusCode: statusCode},
	}
}

type call struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	raw      net.Conn
	conn     *websocket.Conn
	stopping bool
}

// track records the raw connection of a handshake in flight. It reports
// false when Stop already ran.
func (c *call) track(raw net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping {
		return false
	}
	c.raw = raw
	return true
}

// attach records the dialed connection. It reports false when Stop won the race.
func (c *call) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping {
		return false
	}
	c.conn = conn
	return true
}

func (c *call) isStopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopping
}

func (c *call) stop(logger zerolog.Logger) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	conn := c.conn
	raw := c.raw
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		if raw != nil {
			_ = raw.Close()
		}
		return
	}
	if err := c.writeJSON(stopFrame{Type: "stop"}); err != nil {
		logger.Debug().Err(err).Str("call_id", c.id).Msg("failed to send stop")
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stop"),
		time.Now().Add(writeTimeout),
	)
	_ = conn.Close()
}

// writeJSON serializes writers; gorilla connections allow one at a time.
func (c *call) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("not connected")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func isCleanClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

type startFrame struct {
	Type      string                  `json:"type"`
	CallID    string                  `json:"callId"`
	Assistant domain.AssistantOptions `json:"assistant"`
}

type stopFrame struct {
	Type string `json:"type"`
}

type inboundFrame struct {
	Type   string            `json:"type"`
	Volume float64           `json:"volume"`
	Error  *domain.CallError `json:"error"`
}

func (f inboundFrame) event() (domain.CallEvent, bool) {
	name := domain.EventName(strings.ToLower(strings.TrimSpace(f.Type)))
	if !name.Valid() {
		return domain.CallEvent{}, false
	}

	event := domain.CallEvent{Name: name}
	switch name {
	case domain.EventVolumeLevel:
		event.Volume = f.Volume
	case domain.EventError:
		event.Err = f.Error
		if event.Err == nil {
			event.Err = &domain.CallError{Message: "relay reported an unknown error"}
		}
	}
	return event, true
}

func buildCallURL(base string) (string, error) {
	base = strings.TrimSpace(base)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return "", fmt.Errorf("invalid relay URL %q: scheme must be ws or wss", base)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid relay URL %q: missing host", base)
	}
	return parsed.String(), nil
}
