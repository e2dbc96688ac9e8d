package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"frontdesk/internal/bootstrap"
	"frontdesk/internal/config"
	"frontdesk/internal/domain"
	"frontdesk/internal/usecase"
)

const (
	eventStatus = "frontdesk:status"
	eventError  = "frontdesk:error"

	credentialNoticeText = "Is your public key missing? (recheck your configuration)"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.CallController
	cfg        config.Config
	assistant  domain.AssistantOptions
	bootErr    error

	emit func(ctx context.Context, name string, data ...interface{})
}

func NewApp() *App {
	return &App{emit: runtime.EventsEmit}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.assistant = services.Assistant
	a.controller = services.Controller
	a.StatusChanged(a.controller.Status())
}

func (a *App) shutdown(_ context.Context) {
	if a.controller == nil {
		return
	}
	a.controller.EndCall()
	_ = a.controller.Close()
}

// StartCall begins a call with the configured assistant. It is a no-op
// while a call is connecting or connected.
func (a *App) StartCall() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.controller.StartCall()
	return withMessage(a.controller.Status()), nil
}

// EndCall asks the session to hang up.
func (a *App) EndCall() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.controller.EndCall()
	return withMessage(a.controller.Status()), nil
}

// GetStatus returns the current call status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.CallStateIdle, Message: a.bootErr.Error()}
		}
		return withMessage(domain.Status{State: domain.CallStateIdle})
	}
	return withMessage(a.controller.Status())
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"session":       string(a.cfg.Session.Kind),
		"relayUrl":      a.cfg.Relay.URL,
		"publicKey":     a.cfg.RedactedPublicKey(),
		"assistant":     a.assistant.Name,
		"assistantFile": a.cfg.Assistant.Path,
		"model":         a.assistant.Model.Provider + "/" + a.assistant.Model.Model,
		"voice":         a.assistant.Voice.Provider + "/" + a.assistant.Voice.VoiceID,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		err := fmt.Errorf("application is not initialized")
		a.SessionError(domain.ErrorCodeNotReady, err.Error())
		return err
	}
	return nil
}

// StatusChanged emits call status updates to the frontend.
func (a *App) StatusChanged(status domain.Status) {
	if a.ctx == nil {
		return
	}
	a.emitEvent(eventStatus, withMessage(status))
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	a.emitEvent(eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func (a *App) emitEvent(name string, data interface{}) {
	emit := a.emit
	if emit == nil {
		emit = runtime.EventsEmit
	}
	emit(a.ctx, name, data)
}

func withMessage(status domain.Status) domain.Status {
	status.Message = statusMessage(status)
	return status
}

func statusMessage(status domain.Status) string {
	if status.CredentialNotice {
		return credentialNoticeText
	}
	switch status.State {
	case domain.CallStateConnecting:
		return "Connecting..."
	case domain.CallStateConnected:
		if status.AssistantSpeaking {
			return "Assistant speaking"
		}
		return "Listening"
	case domain.CallStateIdle:
		return "Ready to call"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeNotReady:
		return "Front desk is not ready"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
