package domain

// AssistantOptions is the call configuration handed to a session on start.
// The controller never inspects it.
type AssistantOptions struct {
	Name         string      `json:"name" yaml:"name"`
	FirstMessage string      `json:"firstMessage" yaml:"firstMessage"`
	Transcriber  Transcriber `json:"transcriber" yaml:"transcriber"`
	Voice        Voice       `json:"voice" yaml:"voice"`
	Model        Model       `json:"model" yaml:"model"`
}

type Transcriber struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	Language string `json:"language" yaml:"language"`
}

type Voice struct {
	Provider string `json:"provider" yaml:"provider"`
	VoiceID  string `json:"voiceId" yaml:"voiceId"`
}

type Model struct {
	Provider string    `json:"provider" yaml:"provider"`
	Model    string    `json:"model" yaml:"model"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// Message is a role-tagged prompt entry. Order is significant.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}
