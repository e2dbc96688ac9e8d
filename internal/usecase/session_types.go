package usecase

import (
	"sync"

	"frontdesk/internal/domain"
)

// callState is owned by the controller loop goroutine.
type callState struct {
	call     domain.CallState
	speaking bool
	volume   float64
	notice   bool
	callID   string
}

func newCallState() callState {
	return callState{call: domain.CallStateIdle}
}

func (s callState) status() domain.Status {
	return domain.Status{
		State:             s.call,
		Connecting:        s.call == domain.CallStateConnecting,
		Connected:         s.call == domain.CallStateConnected,
		AssistantSpeaking: s.speaking,
		VolumeLevel:       s.volume,
		CredentialNotice:  s.notice,
		CallID:            s.callID,
	}
}

// opQueue is an unbounded FIFO drained by a single consumer.
// push never blocks, so producers may post from inside a running op.
type opQueue struct {
	mu     sync.Mutex
	ops    []func()
	closed bool
	ready  chan struct{}
}

func newOpQueue() *opQueue {
	return &opQueue{ready: make(chan struct{}, 1)}
}

func (q *opQueue) push(op func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.ops = append(q.ops, op)
	q.mu.Unlock()

	q.signal()
	return true
}

// pop blocks until an op is available. It reports false once the queue is
// closed and fully drained.
func (q *opQueue) pop() (func(), bool) {
	for {
		q.mu.Lock()
		if len(q.ops) > 0 {
			op := q.ops[0]
			q.ops[0] = nil
			q.ops = q.ops[1:]
			q.mu.Unlock()
			return op, true
		}
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		q.mu.Unlock()
		<-q.ready
	}
}

func (q *opQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *opQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
