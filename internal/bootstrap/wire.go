package bootstrap

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"frontdesk/internal/assistant"
	"frontdesk/internal/config"
	"frontdesk/internal/domain"
	"frontdesk/internal/logging"
	"frontdesk/internal/ports"
	"frontdesk/internal/providers/relay"
	"frontdesk/internal/providers/simulated"
	"frontdesk/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.CallController
	Session    ports.CallSession
	Assistant  domain.AssistantOptions
	Config     config.Config
	Logger     zerolog.Logger
}

// Build loads configuration and wires all backend dependencies.
func Build(sink ports.StatusSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	return BuildWithConfig(cfg, sink, nil)
}

// BuildWithConfig wires dependencies from an already resolved config.
// logOutput defaults to stderr.
func BuildWithConfig(cfg config.Config, sink ports.StatusSink, logOutput io.Writer) (Services, error) {
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
		Output: logOutput,
	})

	options, err := assistant.Load(cfg.Assistant.Path)
	if err != nil {
		return Services{}, err
	}

	session, err := newSession(cfg, &logger)
	if err != nil {
		return Services{}, err
	}

	controller := usecase.NewCallController(session, options, sink, usecase.Config{
		NoticeDuration: cfg.UI.NoticeDuration,
		Logger:         &logger,
	})

	logger.Info().
		Str("session", string(cfg.Session.Kind)).
		Str("assistant", options.Name).
		Bool("public_key_set", cfg.Session.PublicKey != "").
		Msg("front desk ready")

	return Services{
		Controller: controller,
		Session:    session,
		Assistant:  options,
		Config:     cfg,
		Logger:     logger,
	}, nil
}

func newSession(cfg config.Config, logger *zerolog.Logger) (ports.CallSession, error) {
	switch cfg.Session.Kind {
	case config.SessionRelay:
		return relay.NewSession(relay.Config{
			URL:         cfg.Relay.URL,
			PublicKey:   cfg.Session.PublicKey,
			TokenSecret: cfg.Relay.TokenSecret,
			TokenTTL:    cfg.Relay.TokenTTL,
			DialTimeout: cfg.Relay.DialTimeout,
			Logger:      logger,
		}), nil
	case config.SessionSimulated:
		return simulated.NewSession(simulated.Config{
			PublicKey: cfg.Session.PublicKey,
			Logger:    logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown session kind %q", cfg.Session.Kind)
	}
}
