// Package moderation is the Moderation Gate. It screens generated text before
// it reaches a student and fails open when the provider is unreachable.
package moderation

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrModerationUnavailable is returned by providers that cannot complete a check.
var ErrModerationUnavailable = errors.New("moderation provider unavailable")

// SafeFallbackMessage replaces generated text that was flagged.
const SafeFallbackMessage = "I'm not able to share that response. Let's refocus on the course material: " +
	"try rephrasing your question or ask about a specific concept from this topic."

// Result is a moderation verdict.
type Result struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories"`
}

// Provider performs a raw moderation call.
type Provider interface {
	Name() string
	Moderate(ctx context.Context, text string) (Result, error)
}

// Gate wraps a Provider with the fail-open policy.
type Gate struct {
	provider Provider
	logger   *zap.Logger
}

// NewGate creates a Gate. A nil provider passes everything.
func NewGate(provider Provider, logger *zap.Logger) *Gate {
	if provider == nil {
		provider = Nop{}
	}
	return &Gate{provider: provider, logger: logger}
}

// Check screens text. Provider errors are logged and reported as not flagged.
func (g *Gate) Check(ctx context.Context, text string) Result {
	res, err := g.provider.Moderate(ctx, text)
	if err != nil {
		g.logger.Warn("moderation provider failed, allowing content",
			zap.String("provider", g.provider.Name()),
			zap.Error(err),
		)
		return Result{Flagged: false, Categories: []string{}}
	}
	if res.Categories == nil {
		res.Categories = []string{}
	}
	if res.Flagged {
		g.logger.Info("content flagged by moderation",
			zap.String("provider", g.provider.Name()),
			zap.Strings("categories", res.Categories),
		)
	}
	return res
}

// ValidateResponse reports whether text may be shown to the student.
func (g *Gate) ValidateResponse(ctx context.Context, text string) bool {
	return !g.Check(ctx, text).Flagged
}

// Nop never flags anything.
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Moderate(context.Context, string) (Result, error) {
	return Result{Categories: []string{}}, nil
}
