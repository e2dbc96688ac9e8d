package usecase

import (
	"testing"

	"frontdesk/internal/domain"
)

func TestIsCredentialError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  domain.CallError
		want bool
	}{
		{name: "auth stage missing key", err: domain.CallError{Stage: "auth", Message: "public key missing"}, want: true},
		{name: "auth stage invalid token", err: domain.CallError{Stage: "Authentication", Message: "Token rejected"}, want: true},
		{name: "forbidden status", err: domain.CallError{Stage: "start-method-error", Message: "Forbidden", StatusCode: 403}, want: true},
		{name: "unauthorized status", err: domain.CallError{Message: "nope", StatusCode: 401}, want: true},
		{name: "public key malformed any stage", err: domain.CallError{Stage: "start", Message: "Invalid public key format"}, want: true},
		{name: "network timeout", err: domain.CallError{Stage: "network", Message: "timeout"}, want: false},
		{name: "auth stage unrelated message", err: domain.CallError{Stage: "auth", Message: "rate limited"}, want: false},
		{name: "server error", err: domain.CallError{Stage: "start", Message: "internal error", StatusCode: 500}, want: false},
		{name: "empty", err: domain.CallError{}, want: false},
		{name: "mentions public key without defect", err: domain.CallError{Stage: "start", Message: "using public key abc"}, want: false},
		{name: "auth stage key-like words", err: domain.CallError{Stage: "auth", Message: "keepalive keyframe lost"}, want: false},
		{name: "auth stage tokenizer", err: domain.CallError{Stage: "auth", Message: "tokenizer overloaded"}, want: false},
		{name: "auth stage api key", err: domain.CallError{Stage: "auth", Message: "API key expired"}, want: true},
		{name: "auth stage credentials", err: domain.CallError{Stage: "credentials", Message: "credentials not provided"}, want: true},
		{name: "public key phrase inside word", err: domain.CallError{Stage: "start", Message: "nonpublic keys missing"}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsCredentialError(tc.err); got != tc.want {
				t.Fatalf("IsCredentialError(%+v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
