package assistant

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsFrontDesk(t *testing.T) {
	t.Parallel()

	options := Default()
	if options.Name != "Bright Future Real Estate Front Desk" {
		t.Fatalf("unexpected name %q", options.Name)
	}
	if options.Transcriber.Provider != "deepgram" || options.Transcriber.Model != "nova-2" || options.Transcriber.Language != "en-US" {
		t.Fatalf("unexpected transcriber: %+v", options.Transcriber)
	}
	if options.Voice.Provider != "playht" || options.Voice.VoiceID != "jennifer" {
		t.Fatalf("unexpected voice: %+v", options.Voice)
	}
	if options.Model.Provider != "openai" || options.Model.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %+v", options.Model)
	}
	if len(options.Model.Messages) != 1 || options.Model.Messages[0].Role != "system" {
		t.Fatalf("expected one system message, got %+v", options.Model.Messages)
	}
	if !strings.Contains(options.Model.Messages[0].Content, "789 Dream Street") {
		t.Fatalf("system prompt lost agency details")
	}
	if !strings.HasPrefix(options.FirstMessage, "Hey Joseph!") {
		t.Fatalf("unexpected first message %q", options.FirstMessage)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	t.Parallel()

	options, err := Load("  ")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if options.Name != Default().Name {
		t.Fatalf("expected default assistant, got %q", options.Name)
	}
}

func TestLoadYAMLAndJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "desk.yml")
	yamlBody := "name: Desk\nmodel:\n  provider: openai\n  model: gpt-4o\n  messages:\n    - role: system\n      content: be brief\n"
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	jsonPath := filepath.Join(dir, "desk.json")
	jsonBody := `{"name":"Desk","voice":{"provider":"playht","voiceId":"will"},"model":{"provider":"openai","model":"gpt-4o"}}`
	if err := os.WriteFile(jsonPath, []byte(jsonBody), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	fromYAML, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("yaml load failed: %v", err)
	}
	if fromYAML.Model.Model != "gpt-4o" || fromYAML.Model.Messages[0].Content != "be brief" {
		t.Fatalf("unexpected yaml options: %+v", fromYAML)
	}

	fromJSON, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("json load failed: %v", err)
	}
	if fromJSON.Voice.VoiceID != "will" {
		t.Fatalf("unexpected json options: %+v", fromJSON)
	}
}

func TestParseRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body string
		ext  string
	}{
		"missing name":  {body: "model:\n  provider: openai\n  model: x\n", ext: ".yaml"},
		"missing model": {body: `{"name":"Desk"}`, ext: ".json"},
		"bad role":      {body: "name: Desk\nmodel:\n  provider: openai\n  model: x\n  messages:\n    - role: narrator\n", ext: ".yaml"},
	}
	for name, tc := range cases {
		if _, err := Parse([]byte(tc.body), tc.ext); !errors.Is(err, ErrInvalidAssistant) {
			t.Fatalf("%s: expected ErrInvalidAssistant, got %v", name, err)
		}
	}

	if _, err := Parse([]byte("name: Desk\nunknown: true\n"), ".yaml"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestMarshalYAMLRoundTrips(t *testing.T) {
	t.Parallel()

	out, err := MarshalYAML(Default())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "voiceId: jennifer") {
		t.Fatalf("expected camelCase keys in %s", out)
	}
	parsed, err := Parse(out, ".yaml")
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if parsed.Model.Messages[0].Content != Default().Model.Messages[0].Content {
		t.Fatalf("system prompt changed across marshal")
	}
}
