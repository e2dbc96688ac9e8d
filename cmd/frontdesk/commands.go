package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"frontdesk/internal/assistant"
	"frontdesk/internal/bootstrap"
	"frontdesk/internal/config"
)

var errCallFailed = errors.New("call ended with an error")

type rootOptions struct {
	session   string
	publicKey string
	assistant string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "frontdesk",
		Short:         "Front desk voice assistant console",
		Long:          "Place calls to the front desk voice assistant and inspect its configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.session, "session", "", "Call session: relay or simulated (overrides FRONTDESK_SESSION)")
	cmd.PersistentFlags().StringVar(&opts.publicKey, "public-key", "", "Public key (overrides FRONTDESK_PUBLIC_KEY)")
	cmd.PersistentFlags().StringVar(&opts.assistant, "assistant", "", "Assistant YAML or JSON file (overrides FRONTDESK_ASSISTANT_FILE)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides FRONTDESK_LOG_LEVEL)")

	cmd.AddCommand(newCallCmd(opts))
	cmd.AddCommand(newAssistantCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// loadConfig resolves config from the environment, then applies flags.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.session != "" {
		kind := config.SessionKind(strings.ToLower(o.session))
		if kind != config.SessionRelay && kind != config.SessionSimulated {
			return config.Config{}, fmt.Errorf("unknown --session %q (want relay or simulated)", o.session)
		}
		cfg.Session.Kind = kind
	}
	if o.publicKey != "" {
		cfg.Session.PublicKey = strings.TrimSpace(o.publicKey)
	}
	if o.assistant != "" {
		cfg.Assistant.Path = o.assistant
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func newCallCmd(opts *rootOptions) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Start a call and print status changes",
		Long:  "Start a call with the configured assistant. The call ends on Ctrl-C, after --duration, or when the assistant hangs up.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			return runCall(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "End the call after this long (0 waits for Ctrl-C)")
	return cmd
}

// runCall places one call and blocks until it is over.
func runCall(ctx context.Context, cfg config.Config, out io.Writer, logOutput io.Writer) error {
	sink := newConsoleSink(out)
	services, err := bootstrap.BuildWithConfig(cfg, sink, logOutput)
	if err != nil {
		return err
	}
	defer services.Controller.Close()

	services.Controller.StartCall()

	select {
	case <-sink.ended:
	case <-ctx.Done():
		services.Controller.EndCall()
		select {
		case <-sink.ended:
		case <-time.After(5 * time.Second):
			services.Logger.Warn().Msg("session did not confirm hang up")
		}
	}

	if sink.failed() {
		// Let the notice run out so its clear is printed too.
		deadline := time.Now().Add(cfg.UI.NoticeDuration + time.Second)
		for services.Controller.Status().CredentialNotice && time.Now().Before(deadline) {
			time.Sleep(25 * time.Millisecond)
		}
		return errCallFailed
	}
	return nil
}

func newAssistantCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assistant",
		Short: "Print the resolved assistant as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			options, err := assistant.Load(cfg.Assistant.Path)
			if err != nil {
				return err
			}
			out, err := assistant.MarshalYAML(options)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

type configView struct {
	Session struct {
		Kind      string `yaml:"kind"`
		PublicKey string `yaml:"publicKey"`
	} `yaml:"session"`
	Relay struct {
		URL         string `yaml:"url"`
		TokenSigned bool   `yaml:"tokenSigned"`
		TokenTTL    string `yaml:"tokenTTL"`
		DialTimeout string `yaml:"dialTimeout"`
	} `yaml:"relay"`
	Assistant struct {
		File string `yaml:"file"`
	} `yaml:"assistant"`
	UI struct {
		NoticeDuration string `yaml:"noticeDuration"`
	} `yaml:"ui"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(redactedView(cfg)); err != nil {
				return err
			}
			return encoder.Close()
		},
	}
}

func redactedView(cfg config.Config) configView {
	var view configView
	view.Session.Kind = string(cfg.Session.Kind)
	view.Session.PublicKey = cfg.RedactedPublicKey()
	view.Relay.URL = cfg.Relay.URL
	view.Relay.TokenSigned = cfg.Relay.TokenSecret != ""
	view.Relay.TokenTTL = cfg.Relay.TokenTTL.String()
	view.Relay.DialTimeout = cfg.Relay.DialTimeout.String()
	view.Assistant.File = cfg.Assistant.Path
	view.UI.NoticeDuration = cfg.UI.NoticeDuration.String()
	view.Log.Level = cfg.Log.Level
	view.Log.Format = cfg.Log.Format
	return view
}
