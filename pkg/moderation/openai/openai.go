// Package openai implements moderation.Provider with OpenAI's /v1/moderations endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/papercomputeco/coursewise/pkg/moderation"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "omni-moderation-latest"
)

// Config holds configuration for the OpenAI moderation provider.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Provider calls the moderation endpoint.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// New creates an OpenAI moderation provider.
func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

// Moderate returns the verdict for text. Flagged categories are sorted.
func (p *Provider) Moderate(ctx context.Context, text string) (moderation.Result, error) {
	data, err := json.Marshal(moderationRequest{Model: p.model, Input: text})
	if err != nil {
		return moderation.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/moderations", bytes.NewReader(data))
	if err != nil {
		return moderation.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("%w: %v", moderation.ErrModerationUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("%w: read response: %v", moderation.ErrModerationUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return moderation.Result{}, fmt.Errorf("%w: openai moderation error (status %d): %s",
			moderation.ErrModerationUnavailable, resp.StatusCode, string(body))
	}

	var result moderationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return moderation.Result{}, fmt.Errorf("%w: unmarshal response: %v", moderation.ErrModerationUnavailable, err)
	}
	if len(result.Results) == 0 {
		return moderation.Result{}, fmt.Errorf("%w: no moderation results", moderation.ErrModerationUnavailable)
	}

	r := result.Results[0]
	categories := []string{}
	for name, hit := range r.Categories {
		if hit {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)

	return moderation.Result{Flagged: r.Flagged, Categories: categories}, nil
}

var _ moderation.Provider = (*Provider)(nil)
