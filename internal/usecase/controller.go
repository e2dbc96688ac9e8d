package usecase

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"frontdesk/internal/domain"
	"frontdesk/internal/logging"
	"frontdesk/internal/ports"
)

var ErrControllerClosed = errors.New("call controller is closed")

// DefaultNoticeDuration is how long the credential notice stays visible.
const DefaultNoticeDuration = 3000 * time.Millisecond

// Config controls controller behavior. Zero values select defaults.
type Config struct {
	NoticeDuration time.Duration
	Classifier     CredentialClassifier
	Clock          ports.Clock
	Logger         *zerolog.Logger
}

// CallController owns call and UI state for a single call session.
//
// Commands, session events and timer expiries run one at a time on an
// internal loop goroutine. Status reads are ordered after every operation
// posted before them.
type CallController struct {
	session   ports.CallSession
	assistant domain.AssistantOptions
	sink      ports.StatusSink
	cfg       Config
	log       zerolog.Logger

	queue       *opQueue
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe []func()

	// loop-owned
	state     callState
	published domain.Status
	notice    ports.Timer
	noticeGen uint64
}

func NewCallController(
	session ports.CallSession,
	assistant domain.AssistantOptions,
	sink ports.StatusSink,
	cfg Config,
) *CallController {
	if cfg.NoticeDuration <= 0 {
		cfg.NoticeDuration = DefaultNoticeDuration
	}
	if cfg.Classifier == nil {
		cfg.Classifier = IsCredentialError
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if sink == nil {
		sink = discardSink{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	c := &CallController{
		session:   session,
		assistant: assistant,
		sink:      sink,
		cfg:       cfg,
		log:       logging.Component(logger, "call_controller"),
		queue:     newOpQueue(),
		done:      make(chan struct{}),
		state:     newCallState(),
	}
	c.published = c.state.status()

	for _, name := range domain.Events {
		c.unsubscribe = append(c.unsubscribe, session.Subscribe(name, func(event domain.CallEvent) {
			c.post(func() { c.handleEvent(event) })
		}))
	}

	go c.run()
	return c
}

// StartCall requests a new call. It is a no-op unless the controller is idle.
func (c *CallController) StartCall() {
	c.post(c.startCall)
}

// EndCall asks the session to stop. State changes when call-end arrives.
func (c *CallController) EndCall() {
	c.post(c.endCall)
}

// Status returns the current state.
func (c *CallController) Status() domain.Status {
	reply := make(chan domain.Status, 1)
	if !c.queue.push(func() { reply <- c.state.status() }) {
		<-c.done
		return c.state.status()
	}
	return <-reply
}

// Close detaches from the session, cancels the notice timer and stops the
// loop. It must not be called from a StatusSink callback.
func (c *CallController) Close() error {
	alreadyClosed := true
	c.closeOnce.Do(func() {
		alreadyClosed = false
		for _, unsubscribe := range c.unsubscribe {
			unsubscribe()
		}
		c.queue.push(c.stopNotice)
		c.queue.close()
	})
	<-c.done
	if alreadyClosed {
		return ErrControllerClosed
	}
	return nil
}

func (c *CallController) run() {
	defer close(c.done)
	for {
		op, ok := c.queue.pop()
		if !ok {
			return
		}
		op()
	}
}

func (c *CallController) post(op func()) {
	if !c.queue.push(op) {
		c.log.Debug().Msg("controller closed; dropping operation")
	}
}

func (c *CallController) startCall() {
	if c.state.call != domain.CallStateIdle {
		c.log.Debug().
			Str("state", string(c.state.call)).
			Str("call_id", c.state.callID).
			Msg("start ignored: call already in progress")
		return
	}

	c.clearNotice()
	c.state = callState{
		call:   domain.CallStateConnecting,
		callID: uuid.NewString(),
	}
	c.log.Info().Str("call_id", c.state.callID).Str("assistant", c.assistant.Name).Msg("starting call")
	c.publish()

	c.session.Start(c.assistant)
}

func (c *CallController) endCall() {
	c.log.Info().
		Str("state", string(c.state.call)).
		Str("call_id", c.state.callID).
		Msg("ending call")
	c.session.Stop()
}

func (c *CallController) handleEvent(event domain.CallEvent) {
	switch event.Name {
	case domain.EventCallStart:
		if c.state.call != domain.CallStateConnecting {
			c.log.Debug().Str("state", string(c.state.call)).Msg("call-start ignored")
			return
		}
		c.state.call = domain.CallStateConnected
		c.clearNotice()
		c.log.Info().Str("call_id", c.state.callID).Msg("call connected")

	case domain.EventCallEnd:
		c.state.call = domain.CallStateIdle
		c.state.speaking = false
		c.clearNotice()
		c.log.Info().Str("call_id", c.state.callID).Msg("call ended")
		c.state.callID = ""

	case domain.EventSpeechStart:
		if c.state.call != domain.CallStateConnected {
			return
		}
		c.state.speaking = true

	case domain.EventSpeechEnd:
		c.state.speaking = false

	case domain.EventVolumeLevel:
		c.state.volume = clampVolume(event.Volume, c.state.volume)

	case domain.EventError:
		c.handleError(event.Err)

	default:
		c.log.Warn().Str("event", string(event.Name)).Msg("unknown session event")
		return
	}

	c.publish()
}

func (c *CallController) handleError(callErr *domain.CallError) {
	if callErr == nil {
		callErr = &domain.CallError{Stage: "unknown", Message: "session reported an error without details"}
	}

	credential := c.classify(*callErr)
	c.log.Error().
		Err(callErr).
		Str("call_id", c.state.callID).
		Str("state", string(c.state.call)).
		Str("stage", callErr.Stage).
		Int("status_code", callErr.StatusCode).
		Bool("credential", credential).
		Msg("call session error")

	c.state.call = domain.CallStateIdle
	c.state.speaking = false
	c.state.callID = ""
	if credential {
		c.armNotice()
	}
}

func (c *CallController) classify(callErr domain.CallError) (credential bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("credential classifier panicked")
			credential = false
		}
	}()
	return c.cfg.Classifier(callErr)
}

// armNotice shows the credential notice and (re)starts its expiry timer.
func (c *CallController) armNotice() {
	c.stopNotice()
	c.noticeGen++
	gen := c.noticeGen
	c.state.notice = true
	c.notice = c.cfg.Clock.AfterFunc(c.cfg.NoticeDuration, func() {
		c.post(func() { c.expireNotice(gen) })
	})
}

func (c *CallController) expireNotice(gen uint64) {
	if gen != c.noticeGen || !c.state.notice {
		return
	}
	c.notice = nil
	c.state.notice = false
	c.publish()
}

func (c *CallController) clearNotice() {
	c.stopNotice()
	c.noticeGen++
	c.state.notice = false
}

func (c *CallController) stopNotice() {
	if c.notice != nil {
		c.notice.Stop()
		c.notice = nil
	}
}

func (c *CallController) publish() {
	status := c.state.status()
	if status == c.published {
		return
	}
	c.published = status
	c.sink.StatusChanged(status)
}

func clampVolume(level float64, previous float64) float64 {
	if math.IsNaN(level) {
		return previous
	}
	return math.Max(0, math.Min(1, level))
}

type discardSink struct{}

func (discardSink) StatusChanged(domain.Status) {}
