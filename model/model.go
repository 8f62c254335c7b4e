package model

import (
	"context"
	"strings"
)

// Request captures the normalized model input produced by a ChatTemplate.
type Request struct {
	Instructions string    `json:"instructions"` // System instructions for the model
	Contents     []Content `json:"contents"`     // Converted to provider messages
	Stream       bool      `json:"stream,omitempty"`
}

// Prompt returns the text of the last content, which carries the task prompt.
func (r Request) Prompt() string {
	if len(r.Contents) == 0 {
		return ""
	}
	return r.Contents[len(r.Contents)-1].Text()
}

// ImageCount returns the number of image parts across all contents.
func (r Request) ImageCount() int {
	n := 0
	for _, c := range r.Contents {
		n += len(c.Images())
	}
	return n
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"` // Indicates if this is a partial response
	Content      Content     `json:"content"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name           string `json:"name"`
	Provider       string `json:"provider"` // "openai", "anthropic", "gemini", "mock"
	SupportsVision bool   `json:"supports_vision"`
}

// Model is the generation collaborator used by agents.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// GenerateText runs a single generation and returns the completion text.
// Final responses win over accumulated partial chunks.
func GenerateText(ctx context.Context, m Model, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	respCh, errCh := m.Generate(ctx, req)

	var (
		partial  strings.Builder
		final    string
		gotFinal bool
	)

loop:
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				break loop
			}
			if resp.Partial {
				partial.WriteString(resp.Content.Text())
				continue
			}
			final = resp.Content.Text()
			gotFinal = true
		}
	}

	if err, ok := <-errCh; ok && err != nil {
		return "", err
	}

	if !gotFinal {
		return partial.String(), nil
	}

	return final, nil
}
