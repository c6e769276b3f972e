package keys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/thuanndbxvp/Thai-news/internal/aierr"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// probeModel is the cheapest Gemini model; validation only needs an
// authenticated round trip, not a good answer.
const probeModel = "gemini-2.5-flash"

// Validator checks keys against the live provider APIs. Base URLs are
// fields so tests can point the validator at a local server.
type Validator struct {
	GeminiBaseURL string
	OpenAIBaseURL string
	HTTPClient    *http.Client
}

// NewValidator returns a validator aimed at the production endpoints.
func NewValidator() *Validator {
	return &Validator{
		GeminiBaseURL: "https://generativelanguage.googleapis.com",
		OpenAIBaseURL: "https://api.openai.com",
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Validate checks one key. nil means the key authenticated. A quota or
// rate-limit rejection also counts as valid: the provider recognized the
// key, it is merely throttled right now.
func (v *Validator) Validate(ctx context.Context, provider script.Provider, key string) error {
	if key == "" {
		return fmt.Errorf("validate key: %w", aierr.ErrNoKey)
	}
	if aierr.MalformedKey(key) {
		return fmt.Errorf("validate key: %w", aierr.ErrMalformedKey)
	}

	var err error
	switch provider {
	case script.ProviderOpenAI:
		err = v.probeOpenAI(ctx, key)
	default:
		err = v.probeGemini(ctx, key)
	}
	if err != nil && aierr.IsQuota(err) {
		return nil
	}
	return err
}

func (v *Validator) probeGemini(ctx context.Context, key string) error {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": "test"}}},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal probe: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", v.GeminiBaseURL, probeModel, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := v.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send probe request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("gemini key check failed (status %d): %s", res.StatusCode, errBody)
	}
	return nil
}

func (v *Validator) probeOpenAI(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.OpenAIBaseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := v.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send probe request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("openai key check failed (status %d): %s", res.StatusCode, errBody)
	}
	return nil
}

// CheckStatus is the lifecycle of one key in a bulk check.
type CheckStatus string

const (
	StatusIdle     CheckStatus = "idle"
	StatusChecking CheckStatus = "checking"
	StatusValid    CheckStatus = "valid"
	StatusInvalid  CheckStatus = "invalid"
)

// Pair names one key to check.
type Pair struct {
	Provider script.Provider
	Key      string
}

// Result is the outcome for one key. Message holds the user-facing failure
// text when Status is invalid.
type Result struct {
	Provider script.Provider
	Key      string
	Status   CheckStatus
	Message  string
}

// CheckAll validates every pair concurrently. Each key gets its own result;
// a failing key never interferes with the others. Results come back in the
// order the pairs were given.
func (v *Validator) CheckAll(ctx context.Context, pairs []Pair) []Result {
	results := make([]Result, len(pairs))
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p Pair) {
			defer wg.Done()
			results[i] = Result{Provider: p.Provider, Key: p.Key, Status: StatusValid}
			if err := v.Validate(ctx, p.Provider, p.Key); err != nil {
				norm := aierr.Normalize(err, fmt.Sprintf("xác thực API key %s", p.Provider))
				results[i].Status = StatusInvalid
				results[i].Message = norm.Message
			}
		}(i, p)
	}
	wg.Wait()
	return results
}

// StorePairs flattens a store into check pairs, gemini first.
func StorePairs(s *Store) []Pair {
	var pairs []Pair
	for _, provider := range []script.Provider{script.ProviderGemini, script.ProviderOpenAI} {
		for _, k := range s.List(provider) {
			pairs = append(pairs, Pair{Provider: provider, Key: k})
		}
	}
	return pairs
}
