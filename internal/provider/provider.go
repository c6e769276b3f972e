// Package provider sends prompts to the configured LLM vendor. It resolves
// the active key, performs the HTTP round trip, and hands raw failures back
// to the caller; turning those into user-facing messages is aierr's job.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thuanndbxvp/Thai-news/internal/aierr"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

var tracer = otel.Tracer("thainews/provider")

// KeySource yields the active key for a provider. The key store satisfies
// this; tests substitute a literal.
type KeySource interface {
	Active(provider script.Provider) string
}

// Gateway is the single entry point for model calls. Base URLs are fields
// so tests can aim the gateway at a local server.
type Gateway struct {
	Keys          KeySource
	GeminiBaseURL string
	OpenAIBaseURL string
	HTTPClient    *http.Client
}

// NewGateway returns a gateway aimed at the production endpoints.
func NewGateway(keys KeySource) *Gateway {
	return &Gateway{
		Keys:          keys,
		GeminiBaseURL: "https://generativelanguage.googleapis.com",
		OpenAIBaseURL: "https://api.openai.com",
		HTTPClient:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Call sends one prompt and returns the model's text. wantJSON asks the
// provider to constrain output to a JSON document. The prompt is sent
// exactly as given; no system/user splitting happens here.
func (g *Gateway) Call(ctx context.Context, prompt string, provider script.Provider, model string, wantJSON bool) (string, error) {
	ctx, span := tracer.Start(ctx, "provider.call", trace.WithAttributes(
		attribute.String("provider", string(provider)),
		attribute.String("model", model),
		attribute.Bool("want_json", wantJSON),
	))
	defer span.End()

	key := g.Keys.Active(provider)
	if key == "" {
		return "", fmt.Errorf("call %s: %w", provider, aierr.ErrNoKey)
	}
	if aierr.MalformedKey(key) {
		return "", fmt.Errorf("call %s: %w", provider, aierr.ErrMalformedKey)
	}

	switch provider {
	case script.ProviderOpenAI:
		return g.callOpenAI(ctx, prompt, key, model, wantJSON)
	case script.ProviderGemini:
		return g.callGemini(ctx, prompt, key, model, wantJSON)
	default:
		return "", fmt.Errorf("call: unknown provider %q", provider)
	}
}
