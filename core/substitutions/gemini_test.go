package substitutions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func generateReply(texts ...string) string {
	parts := []map[string]string{}
	for _, text := range texts {
		parts = append(parts, map[string]string{"text": text})
	}
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	})
	return string(body)
}

func TestGeminiLookupParsesSuggestions(t *testing.T) {
	var gotKey string
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		gotPrompt = string(body)
		_, _ = w.Write([]byte(generateReply("Try smoked paprika ", "or chipotle powder.")))
	}))
	defer server.Close()

	lookup := NewGeminiLookup(WithGenerateURL(server.URL), WithAPIKey("test-key"))
	suggestion, err := lookup.Substitute(context.Background(), "harissa", "Shakshuka")
	if err != nil {
		t.Fatalf("failed to look up substitute: %v", err)
	}
	if suggestion != "Try smoked paprika  or chipotle powder." {
		t.Errorf("unexpected suggestion %q", suggestion)
	}
	if gotKey != "test-key" {
		t.Errorf("expected the api key header, got %q", gotKey)
	}
	if !strings.Contains(gotPrompt, "harissa") || !strings.Contains(gotPrompt, "Shakshuka") {
		t.Errorf("expected the ingredient and recipe in the prompt, got %q", gotPrompt)
	}
}

func TestGeminiLookupRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	lookup := NewGeminiLookup(WithGenerateURL(server.URL), WithAPIKey("test-key"))
	if _, err := lookup.Substitute(context.Background(), "harissa", "Shakshuka"); err == nil {
		t.Fatal("expected an error for a non-OK response")
	}
}

func TestGeminiLookupRejectsEmptyResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	lookup := NewGeminiLookup(WithGenerateURL(server.URL), WithAPIKey("test-key"))
	if _, err := lookup.Substitute(context.Background(), "harissa", "Shakshuka"); err == nil {
		t.Fatal("expected an error for an empty candidate list")
	}
}

func TestGeminiLookupHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	lookup := NewGeminiLookup(WithGenerateURL(server.URL), WithAPIKey("test-key"))
	if _, err := lookup.Substitute(ctx, "harissa", "Shakshuka"); err == nil {
		t.Fatal("expected an error when the context is cancelled")
	}
}

func TestGeminiLookupRequiresAnAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "placeholder")
	_ = os.Unsetenv("GEMINI_API_KEY")

	lookup := NewGeminiLookup(WithGenerateURL("http://localhost:0"))
	if _, err := lookup.Substitute(context.Background(), "harissa", "Shakshuka"); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
