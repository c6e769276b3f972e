package keys

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thuanndbxvp/Thai-news/internal/aierr"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

func testValidator(gemini, openai *httptest.Server) *Validator {
	v := NewValidator()
	if gemini != nil {
		v.GeminiBaseURL = gemini.URL
	}
	if openai != nil {
		v.OpenAIBaseURL = openai.URL
	}
	return v
}

func TestValidateGeminiOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "good-key" {
			t.Errorf("key not passed as query param")
		}
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	if err := testValidator(srv, nil).Validate(context.Background(), script.ProviderGemini, "good-key"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
}

func TestValidateGeminiQuotaCountsAsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "status": "RESOURCE_EXHAUSTED", "message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	if err := testValidator(srv, nil).Validate(context.Background(), script.ProviderGemini, "throttled-key"); err != nil {
		t.Errorf("quota-limited key should validate: %v", err)
	}
}

func TestValidateGeminiInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "status": "INVALID_ARGUMENT", "message": "API key not valid"}}`))
	}))
	defer srv.Close()

	err := testValidator(srv, nil).Validate(context.Background(), script.ProviderGemini, "bad-key")
	if err == nil {
		t.Fatal("invalid key should fail validation")
	}
	if aierr.Normalize(err, "x").Category != aierr.CategoryInvalidKey {
		t.Errorf("normalized category = %s", aierr.Normalize(err, "x").Category)
	}
}

func TestValidateOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"message": "bad key", "code": "invalid_api_key"}}`))
			return
		}
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	v := testValidator(nil, srv)
	if err := v.Validate(context.Background(), script.ProviderOpenAI, "sk-good"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := v.Validate(context.Background(), script.ProviderOpenAI, "sk-bad"); err == nil {
		t.Error("invalid key should fail validation")
	}
}

func TestValidateMalformedKey(t *testing.T) {
	v := NewValidator()
	err := v.Validate(context.Background(), script.ProviderGemini, "key\nwith-newline")
	if !errors.Is(err, aierr.ErrMalformedKey) {
		t.Errorf("err = %v, want ErrMalformedKey", err)
	}
	err = v.Validate(context.Background(), script.ProviderOpenAI, "киї-key")
	if !errors.Is(err, aierr.ErrMalformedKey) {
		t.Errorf("err = %v, want ErrMalformedKey", err)
	}
}

func TestValidateEmptyKey(t *testing.T) {
	if err := NewValidator().Validate(context.Background(), script.ProviderGemini, ""); !errors.Is(err, aierr.ErrNoKey) {
		t.Errorf("err = %v, want ErrNoKey", err)
	}
}

func TestCheckAllIsolatesFailures(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "good" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "status": "INVALID_ARGUMENT", "message": "API key not valid"}}`))
	}))
	defer gemini.Close()
	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer openai.Close()

	v := testValidator(gemini, openai)
	results := v.CheckAll(context.Background(), []Pair{
		{script.ProviderGemini, "good"},
		{script.ProviderGemini, "bad"},
		{script.ProviderOpenAI, "sk-anything"},
	})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Status != StatusValid {
		t.Errorf("good gemini key = %s: %s", results[0].Status, results[0].Message)
	}
	if results[1].Status != StatusInvalid || results[1].Message == "" {
		t.Errorf("bad gemini key = %s, want invalid with message", results[1].Status)
	}
	if results[2].Status != StatusValid {
		t.Errorf("openai key = %s: %s", results[2].Status, results[2].Message)
	}
}
