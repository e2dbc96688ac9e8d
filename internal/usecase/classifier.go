package usecase

import (
	"net/http"
	"strings"

	"frontdesk/internal/domain"
)

// CredentialClassifier reports whether a session error means the public key
// or another required credential is missing or invalid.
type CredentialClassifier func(err domain.CallError) bool

var (
	credentialStages = []string{"auth", "authentication", "authorization", "credential", "credentials"}
	credentialTerms  = []string{"public key", "publickey", "api key", "apikey", "credential", "credentials", "token", "bearer"}
	defectTerms      = []string{"missing", "invalid", "not set", "not provided", "malformed", "required", "unauthorized", "forbidden"}
)

// IsCredentialError is the default CredentialClassifier.
//
// It matches 401/403 responses, auth-stage errors that mention a key or
// token, and any message saying a public key is missing or malformed.
func IsCredentialError(err domain.CallError) bool {
	if err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden {
		return true
	}

	stage := strings.ToLower(strings.TrimSpace(err.Stage))
	message := strings.ToLower(strings.TrimSpace(err.Message))
	if message == "" {
		return false
	}

	if containsAny(stage, credentialStages) && containsAny(message, credentialTerms) {
		return true
	}

	return containsWord(message, "public key") && containsAny(message, defectTerms)
}

func containsAny(value string, terms []string) bool {
	for _, term := range terms {
		if containsWord(value, term) {
			return true
		}
	}
	return false
}

// containsWord reports whether term occurs in value on word boundaries.
func containsWord(value string, term string) bool {
	for start := 0; start < len(value); {
		i := strings.Index(value[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isWordByte(value[i-1])) && (end == len(value) || !isWordByte(value[end])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
