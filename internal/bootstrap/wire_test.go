package bootstrap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"frontdesk/internal/config"
	"frontdesk/internal/domain"
	"frontdesk/internal/providers/relay"
	"frontdesk/internal/providers/simulated"
)

func TestBuildSuccess(t *testing.T) {
	t.Setenv("FRONTDESK_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FRONTDESK_SESSION", "relay")
	t.Setenv("FRONTDESK_ASSISTANT_FILE", "")

	services, err := Build(noopSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Controller.Close()

	if _, ok := services.Session.(*relay.Session); !ok {
		t.Fatalf("expected relay session, got %T", services.Session)
	}
	if services.Assistant.Name == "" {
		t.Fatalf("expected default assistant")
	}
}

func TestBuildWithConfigSimulatedDrivesController(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	cfg := testConfig(config.SessionSimulated, "pk-test")
	cfg.Log.Format = "json"

	services, err := BuildWithConfig(cfg, noopSink{}, &logs)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer services.Controller.Close()

	if _, ok := services.Session.(*simulated.Session); !ok {
		t.Fatalf("expected simulated session, got %T", services.Session)
	}

	services.Controller.StartCall()
	if state := services.Controller.Status().State; state != domain.CallStateConnecting {
		t.Fatalf("expected connecting, got %s", state)
	}

	deadline := time.Now().Add(3 * time.Second)
	for services.Controller.Status().State != domain.CallStateConnected {
		if time.Now().After(deadline) {
			t.Fatalf("simulated call never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !strings.Contains(logs.String(), `"message":"front desk ready"`) {
		t.Fatalf("expected readiness log, got %q", logs.String())
	}
}

func TestBuildFailsOnInvalidAssistant(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: \"\"\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg := testConfig(config.SessionRelay, "pk-test")
	cfg.Assistant.Path = path

	if _, err := BuildWithConfig(cfg, noopSink{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected build error due to invalid assistant")
	}
}

func TestBuildRejectsUnknownSession(t *testing.T) {
	t.Parallel()

	if _, err := BuildWithConfig(testConfig("pigeon", ""), noopSink{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown session error")
	}
}

func testConfig(kind config.SessionKind, key string) config.Config {
	return config.Config{
		Session: config.SessionConfig{Kind: kind, PublicKey: key},
		Relay: config.RelayConfig{
			URL:         "ws://127.0.0.1:1/call",
			TokenTTL:    time.Minute,
			DialTimeout: time.Second,
		},
		UI:  config.UIConfig{NoticeDuration: time.Second},
		Log: config.LogConfig{Level: "info", Format: "console"},
	}
}

type noopSink struct{}

func (noopSink) StatusChanged(domain.Status) {}
