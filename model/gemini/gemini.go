// Package gemini provides a model.Model backed by the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hupe1980/medmesh/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float32
	APIKey      string
}

// Model wraps a genai client behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel dials the Gemini API. Close releases the underlying client.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-1.5-flash",
		Temperature: 0.2,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	return &Model{client: cl, opts: opts}, nil
}

// Close closes the underlying client.
func (m *Model) Close() error { return m.client.Close() }

// Generate implements model.Model. Streaming requests are served by a single
// final response.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		gm := m.client.GenerativeModel(m.opts.Model)
		gm.GenerationConfig = genai.GenerationConfig{
			Temperature: ptrFloat32(m.opts.Temperature),
		}
		if req.Instructions != "" {
			gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
		}

		resp, err := gm.GenerateContent(ctx, buildParts(req.Contents)...)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}

		text := firstText(resp)
		if text == "" {
			errCh <- errors.New("gemini: empty response")
			return
		}

		r := model.Response{
			Content:      model.Content{Role: model.RoleAssistant, Parts: []model.Part{model.TextPart{Text: text}}},
			FinishReason: "stop",
		}
		if u := resp.UsageMetadata; u != nil {
			r.Usage = &model.TokenUsage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}

		out <- r
	}()

	return out, errCh
}

// buildParts flattens user contents into genai parts, preserving order.
func buildParts(contents []model.Content) []genai.Part {
	var parts []genai.Part
	for _, c := range contents {
		if c.Role == model.RoleAssistant || c.Role == model.RoleSystem {
			continue
		}
		for _, p := range c.Parts {
			switch part := p.(type) {
			case model.TextPart:
				if part.Text != "" {
					parts = append(parts, genai.Text(part.Text))
				}
			case model.ImagePart:
				parts = append(parts, &genai.Blob{MIMEType: part.MIMEType, Data: part.Data})
			}
		}
	}
	return parts
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:           m.opts.Model,
		Provider:       "gemini",
		SupportsVision: true,
	}
}
