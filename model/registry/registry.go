// Package registry builds model.LoadFunc values for the supported providers.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/medmesh/model"
	"github.com/hupe1980/medmesh/model/anthropic"
	"github.com/hupe1980/medmesh/model/gemini"
	"github.com/hupe1980/medmesh/model/openai"
)

// Settings carries the provider-independent model settings.
type Settings struct {
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
}

// Factory builds a model for an identifier. An empty id selects the
// provider's default model.
type Factory func(ctx context.Context, id string, s Settings) (model.Model, error)

var factories = map[string]Factory{
	"openai": func(_ context.Context, id string, s Settings) (model.Model, error) {
		return openai.NewModel(func(o *openai.Options) {
			if id != "" {
				o.Model = id
			}
			o.APIKey = s.APIKey
			o.BaseURL = s.BaseURL
			o.Temperature = s.Temperature
			if s.MaxTokens > 0 {
				o.MaxCompletionTokens = s.MaxTokens
			}
		}), nil
	},
	"anthropic": func(_ context.Context, id string, s Settings) (model.Model, error) {
		return anthropic.NewModel(func(o *anthropic.Options) {
			if id != "" {
				o.Model = anthropicsdk.Model(id)
			}
			o.APIKey = s.APIKey
			o.Temperature = s.Temperature
			if s.MaxTokens > 0 {
				o.MaxTokens = s.MaxTokens
			}
		}), nil
	},
	"gemini": func(ctx context.Context, id string, s Settings) (model.Model, error) {
		return gemini.NewModel(ctx, func(o *gemini.Options) {
			if id != "" {
				o.Model = id
			}
			o.APIKey = s.APIKey
			o.Temperature = float32(s.Temperature)
		})
	},
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFunc returns the loader for provider, bound to s.
func LoadFunc(provider string, s Settings) (model.LoadFunc, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, fmt.Errorf("unknown model provider %q (supported: %s)", provider, strings.Join(Providers(), ", "))
	}

	return func(ctx context.Context, id string) (model.Model, error) {
		return f(ctx, id, s)
	}, nil
}
