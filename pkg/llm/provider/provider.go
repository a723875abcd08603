// Package provider builds llm.Client implementations by provider name.
package provider

import (
	"context"
	"fmt"

	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/genai"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/ollama"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Ollama    = "ollama"
	GenAI     = "genai"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Anthropic, OpenAI, Ollama, GenAI}
}

// Opts configures a client. TargetURL overrides the provider base URL.
type Opts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

// New creates a new llm.Client for the given provider type.
// Returns an error if the provider type is not recognized.
func New(ctx context.Context, o Opts) (llm.Client, error) {
	switch o.ProviderType {
	case Anthropic:
		return anthropic.New(anthropic.Config{BaseURL: o.TargetURL, APIKey: o.APIKey, Model: o.Model})
	case OpenAI:
		return openai.New(openai.Config{BaseURL: o.TargetURL, APIKey: o.APIKey, Model: o.Model})
	case Ollama:
		return ollama.New(ollama.Config{BaseURL: o.TargetURL, Model: o.Model}), nil
	case GenAI:
		return genai.New(ctx, genai.Config{APIKey: o.APIKey, Model: o.Model})
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", o.ProviderType, SupportedProviders())
	}
}
