// Package assistant resolves the assistant configuration handed to a call
// session on start.
package assistant

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"frontdesk/internal/domain"
)

//go:embed frontdesk.yaml
var defaultAssistantYAML []byte

var ErrInvalidAssistant = errors.New("invalid assistant configuration")

// Default returns the built-in front-desk assistant.
func Default() domain.AssistantOptions {
	options, err := Parse(defaultAssistantYAML, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("built-in assistant is invalid: %v", err))
	}
	return options
}

// Load reads an assistant file. An empty path returns Default.
// Files ending in .json are decoded as JSON, everything else as YAML.
func Load(path string) (domain.AssistantOptions, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return domain.AssistantOptions{}, fmt.Errorf("failed to read assistant file %q: %w", path, err)
	}

	options, err := Parse(contents, filepath.Ext(path))
	if err != nil {
		return domain.AssistantOptions{}, fmt.Errorf("failed to parse assistant file %q: %w", path, err)
	}
	return options, nil
}

// Parse decodes and validates assistant options. ext selects the decoder.
func Parse(contents []byte, ext string) (domain.AssistantOptions, error) {
	var options domain.AssistantOptions

	if strings.EqualFold(ext, ".json") {
		decoder := json.NewDecoder(bytes.NewReader(contents))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&options); err != nil {
			return domain.AssistantOptions{}, err
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(contents))
		decoder.KnownFields(true)
		if err := decoder.Decode(&options); err != nil {
			return domain.AssistantOptions{}, err
		}
	}

	if err := Validate(options); err != nil {
		return domain.AssistantOptions{}, err
	}
	return options, nil
}

// Validate checks the fields a session needs to place a call.
func Validate(options domain.AssistantOptions) error {
	var problems []string
	if strings.TrimSpace(options.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(options.Model.Provider) == "" || strings.TrimSpace(options.Model.Model) == "" {
		problems = append(problems, "model provider and model are required")
	}
	for i, message := range options.Model.Messages {
		switch message.Role {
		case "system", "user", "assistant":
		default:
			problems = append(problems, fmt.Sprintf("model.messages[%d] has unknown role %q", i, message.Role))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAssistant, strings.Join(problems, "; "))
	}
	return nil
}

// MarshalYAML renders options in the same format Load accepts.
func MarshalYAML(options domain.AssistantOptions) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(options); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
