package app

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient simulates the Gemini capability for demos and tests. It never
// talks to the network.
type MockClient struct {
	// Delay before each reply, to exercise the loading state in the TUI.
	Delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{Delay: 300 * time.Millisecond}
}

func (c *MockClient) SendMessage(ctx context.Context, text string) (string, error) {
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "":
		return "Say something and I will echo it back.", nil
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hi there! (mock reply)", nil
	case strings.Contains(lower, "fail"):
		return "", fmt.Errorf("mock transient failure")
	default:
		return fmt.Sprintf("Mock reply to: %s", text), nil
	}
}
