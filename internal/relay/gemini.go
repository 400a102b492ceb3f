// Package relay forwards questions to Google's Gemini models.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ErrNotConfigured is returned by Unavailable when no client could be built.
var ErrNotConfigured = errors.New("generative model is not configured")

// ErrEmptyAnswer is returned when the model produced no text.
var ErrEmptyAnswer = errors.New("model returned no answer")

// Option adjusts the client configuration before the client is built.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another Gemini API host.
func WithBaseURL(u string) Option {
	return func(cc *genai.ClientConfig) { cc.HTTPOptions.BaseURL = u }
}

// WithHTTPClient replaces the transport used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cc *genai.ClientConfig) { cc.HTTPClient = c }
}

// Gemini asks a single model with a fresh single-turn conversation per call.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini API client for model authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		return nil, errors.New("missing model name")
	}

	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cc)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Ask sends question as the only user turn and returns the concatenated text
// of the first candidate.
func (g *Gemini) Ask(ctx context.Context, question string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(question), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", fmt.Errorf("generate content: %s (%d)", apiErr.Message, apiErr.Code)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyAnswer
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyAnswer
	}
	return b.String(), nil
}

// Unavailable stands in for a model that failed to initialize. Every call
// fails with Err, or ErrNotConfigured when Err is nil.
type Unavailable struct {
	Err error
}

func (u Unavailable) Ask(context.Context, string) (string, error) {
	if u.Err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotConfigured, u.Err)
	}
	return "", ErrNotConfigured
}
