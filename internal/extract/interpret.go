package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhsu-tw/tianji/internal/providers"
)

const interpretTimeout = 60 * time.Second

// InterpretRequest describes a single interpretation round trip.
type InterpretRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Interpret runs one chat completion and returns the cleaned response text.
// Any failure at the LLM boundary wraps ErrUnavailable; callers are expected
// to leave session state untouched and let the user retry.
func Interpret(ctx context.Context, llm providers.LLMClient, req InterpretRequest) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = interpretTimeout
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	result, err := llm.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	})
	if err != nil {
		return "", fmt.Errorf("interpretation: %v: %w", err, ErrUnavailable)
	}

	text := StripMarkdown(result.Content)
	if text == "" {
		return "", fmt.Errorf("interpretation: empty response: %w", ErrUnavailable)
	}
	return text, nil
}

// StripMarkdown removes the markdown emphasis and heading markers that chat
// models emit even when asked for plain text.
func StripMarkdown(s string) string {
	r := strings.NewReplacer("**", "", "__", "", "###", "", "##", "")
	return strings.TrimSpace(r.Replace(s))
}
