package app

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestIsCredentialErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid key text", errors.New("API key not valid. Please pass a valid API key."), true},
		{"wrapped invalid key", fmt.Errorf("gemini request failed: %w", errors.New("API key not valid")), true},
		{"status reason", errors.New("googleapi: Error 400: API_KEY_INVALID"), true},
		{"400 mentioning key", errors.New("error 400: the api key is malformed"), true},
		{"400 without key mention", errors.New("error 400: invalid request payload"), false},
		{"network", errors.New("dial tcp: connection refused"), false},
		{"timeout", errors.New("context deadline exceeded"), false},
		{"rate limit", errors.New("error 429: resource exhausted"), false},
		{"empty reply", errors.New("gemini returned an empty reply"), false},
		{"api error unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED", Message: "request not authenticated"}, true},
		{"api error 400 key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid"}, true},
		{"api error 400 other", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "unsupported field"}, false},
		{"api error 500", genai.APIError{Code: 500, Status: "INTERNAL", Message: "internal error"}, false},
		{"api error 429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCredentialError(tc.err); got != tc.want {
				t.Fatalf("IsCredentialError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNewGeminiClientRejectsUnusableKeys(t *testing.T) {
	for _, key := range []string{"", "   ", "has space", "has\ttab", "has\nnewline"} {
		if _, err := NewGeminiClient(t.Context(), key, defaultModel, "", defaultMaxOutputTokens); err == nil {
			t.Fatalf("expected construction to fail fast for key %q", key)
		}
	}
}
