package main

import (
	"fmt"
	"io"
	"sync"

	"frontdesk/internal/domain"
)

// consoleSink prints status transitions and signals when a call is over.
type consoleSink struct {
	out   io.Writer
	ended chan struct{}

	mu        sync.Mutex
	last      domain.Status
	active    bool
	connected bool
	notice    bool
	closeOnce sync.Once
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{
		out:   out,
		ended: make(chan struct{}),
		last:  domain.Status{State: domain.CallStateIdle},
	}
}

func (s *consoleSink) StatusChanged(status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.last
	s.last = status

	if status.State != previous.State {
		fmt.Fprintf(s.out, "call: %s\n", status.State)
	}
	if status.AssistantSpeaking != previous.AssistantSpeaking {
		if status.AssistantSpeaking {
			fmt.Fprintln(s.out, "assistant: speaking")
		} else {
			fmt.Fprintln(s.out, "assistant: listening")
		}
	}
	if status.CredentialNotice != previous.CredentialNotice {
		if status.CredentialNotice {
			s.notice = true
			fmt.Fprintln(s.out, "notice: is your public key missing? (recheck your configuration)")
		} else {
			fmt.Fprintln(s.out, "notice: cleared")
		}
	}

	switch status.State {
	case domain.CallStateConnecting:
		s.active = true
	case domain.CallStateConnected:
		s.active = true
		s.connected = true
	case domain.CallStateIdle:
		if s.active {
			s.closeOnce.Do(func() { close(s.ended) })
		}
	}
}

// failed reports whether the call never connected or raised the notice.
func (s *consoleSink) failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice || !s.connected
}
