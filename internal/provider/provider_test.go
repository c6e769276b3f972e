package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thuanndbxvp/Thai-news/internal/aierr"
	"github.com/thuanndbxvp/Thai-news/internal/script"
)

type fixedKeys map[script.Provider]string

func (f fixedKeys) Active(p script.Provider) string { return f[p] }

func TestCallNoKey(t *testing.T) {
	g := NewGateway(fixedKeys{})
	_, err := g.Call(context.Background(), "prompt", script.ProviderGemini, "gemini-2.5-flash", false)
	if !errors.Is(err, aierr.ErrNoKey) {
		t.Errorf("err = %v, want ErrNoKey", err)
	}
}

func TestCallMalformedKey(t *testing.T) {
	g := NewGateway(fixedKeys{script.ProviderGemini: "key with space"})
	_, err := g.Call(context.Background(), "prompt", script.ProviderGemini, "gemini-2.5-flash", false)
	if !errors.Is(err, aierr.ErrMalformedKey) {
		t.Errorf("err = %v, want ErrMalformedKey", err)
	}
}

func TestCallUnknownProvider(t *testing.T) {
	g := NewGateway(fixedKeys{script.Provider("mystery"): "key"})
	if _, err := g.Call(context.Background(), "prompt", script.Provider("mystery"), "m", false); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestCallGemini(t *testing.T) {
	var gotPath string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "g-key" {
			t.Error("key missing from query")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "สวัสดีค่ะ"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(fixedKeys{script.ProviderGemini: "g-key"})
	g.GeminiBaseURL = srv.URL

	got, err := g.Call(context.Background(), "the prompt", script.ProviderGemini, "gemini-2.5-flash", true)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "สวัสดีค่ะ" {
		t.Errorf("text = %q", got)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "the prompt" {
		t.Errorf("request contents = %+v", gotBody.Contents)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Error("wantJSON should set responseMimeType")
	}
}

func TestCallGeminiPlainTextOmitsGenerationConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.GenerationConfig != nil {
			t.Error("plain calls must not send generationConfig")
		}
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(fixedKeys{script.ProviderGemini: "g-key"})
	g.GeminiBaseURL = srv.URL
	if _, err := g.Call(context.Background(), "p", script.ProviderGemini, "gemini-2.5-flash", false); err != nil {
		t.Fatalf("call: %v", err)
	}
}

func TestCallGeminiErrorSurfacesRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "status": "RESOURCE_EXHAUSTED", "message": "quota"}}`))
	}))
	defer srv.Close()

	g := NewGateway(fixedKeys{script.ProviderGemini: "g-key"})
	g.GeminiBaseURL = srv.URL

	_, err := g.Call(context.Background(), "p", script.ProviderGemini, "gemini-2.5-flash", false)
	if err == nil {
		t.Fatal("429 should error")
	}
	if !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Errorf("raw body not surfaced: %v", err)
	}
	if aierr.Normalize(err, "x").Category != aierr.CategoryQuota {
		t.Errorf("normalized = %s, want quota", aierr.Normalize(err, "x").Category)
	}
}

func TestCallOpenAI(t *testing.T) {
	var gotBody openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-key" {
			t.Error("bearer auth missing")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices": [{"message": {"content": "result text"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(fixedKeys{script.ProviderOpenAI: "sk-key"})
	g.OpenAIBaseURL = srv.URL

	got, err := g.Call(context.Background(), "the prompt", script.ProviderOpenAI, "gpt-5", true)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "result text" {
		t.Errorf("text = %q", got)
	}
	if gotBody.Model != "gpt-5" || gotBody.MaxTokens != 4096 {
		t.Errorf("body = %+v", gotBody)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "the prompt" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_object" {
		t.Error("wantJSON should set response_format json_object")
	}
}

func TestCallOpenAIErrorNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "You exceeded your current quota", "code": "insufficient_quota"}}`))
	}))
	defer srv.Close()

	g := NewGateway(fixedKeys{script.ProviderOpenAI: "sk-key"})
	g.OpenAIBaseURL = srv.URL

	_, err := g.Call(context.Background(), "p", script.ProviderOpenAI, "gpt-5", false)
	if err == nil {
		t.Fatal("quota response should error")
	}
	norm := aierr.Normalize(err, "tạo kịch bản")
	if norm.Category != aierr.CategoryQuota {
		t.Errorf("category = %s, want quota", norm.Category)
	}
	if !strings.Contains(norm.Message, "OpenAI") {
		t.Errorf("message = %q", norm.Message)
	}
}
