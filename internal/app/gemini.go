package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// AIClient is the opaque conversational capability the dispatcher talks to:
// one prompt in, one reply out.
type AIClient interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// GeminiClient sends single-turn requests to the Gemini API.
type GeminiClient struct {
	client          *genai.Client
	model           string
	systemPrompt    string
	maxOutputTokens int32
}

// NewGeminiClient builds the capability from an API key. It fails fast on a
// structurally unusable key so the caller can treat construction failure the
// same as a rejected key.
func NewGeminiClient(ctx context.Context, apiKey, model, systemPrompt string, maxOutputTokens int) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.ContainsAny(apiKey, " \t\n") {
		return nil, errors.New("gemini api key contains whitespace")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:          client,
		model:           model,
		systemPrompt:    systemPrompt,
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

func (c *GeminiClient) SendMessage(ctx context.Context, text string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if c.maxOutputTokens > 0 {
		cfg.MaxOutputTokens = c.maxOutputTokens
	}
	if c.systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.systemPrompt, genai.RoleUser)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", errors.New("gemini returned an empty reply")
	}
	return reply, nil
}

// IsCredentialError splits send failures two ways: rejected API key vs
// everything else (network, timeout, rate limit, malformed response).
// Prefers the structured APIError the SDK exposes; falls back to the
// substring heuristic the backend's error text is known to carry. A
// transient failure must never invalidate a valid key, so the match is kept
// deliberately narrow.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == "UNAUTHENTICATED" {
			return true
		}
		msg := strings.ToLower(apiErr.Message)
		if apiErr.Code == 400 && strings.Contains(msg, "api key") {
			return true
		}
		if strings.Contains(msg, "api key not valid") || strings.Contains(msg, "api_key_invalid") {
			return true
		}
		return false
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "api key not valid") || strings.Contains(lower, "api_key_invalid") {
		return true
	}
	return strings.Contains(msg, "400") && strings.Contains(lower, "api key")
}
