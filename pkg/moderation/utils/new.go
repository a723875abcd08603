// Package moderationutils builds moderation providers by name.
package moderationutils

import (
	"fmt"

	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/moderation/openai"
)

// Supported moderation providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
)

type NewProviderOpts struct {
	ProviderType string
	TargetURL    string
	APIKey       string
}

func NewProvider(o *NewProviderOpts) (moderation.Provider, error) {
	switch o.ProviderType {
	case ProviderNone, "":
		return moderation.Nop{}, nil
	case ProviderOpenAI:
		p, err := openai.New(openai.Config{
			BaseURL: o.TargetURL,
			APIKey:  o.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported moderation provider: %s", o.ProviderType)
	}
}
