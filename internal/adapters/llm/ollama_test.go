package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spendchat/internal/domain/ports"
)

func testSampling() ports.SamplingConfig {
	return ports.SamplingConfig{Temperature: 0.2, TopP: 0.8, TopK: 40, MaxOutputTokens: 512}
}

func TestOllamaAdapter_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "Sugar costs $0.50 per kg.",
			"done":     true,
		})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test-model")
	resp, err := adapter.Generate(context.Background(), "how much is sugar?", testSampling())

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp != "Sugar costs $0.50 per kg." {
		t.Errorf("unexpected response: %s", resp)
	}
}

func TestOllamaAdapter_PassesSamplingOptions(t *testing.T) {
	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "ok", "done": true})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test-model")
	if _, err := adapter.Generate(context.Background(), "q", testSampling()); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if got.Stream {
		t.Error("stream must be disabled")
	}
	if temp, ok := got.Options["temperature"].(float64); !ok || temp != 0.2 {
		t.Errorf("temperature not forwarded: %v", got.Options["temperature"])
	}
	if n, ok := got.Options["num_predict"].(float64); !ok || n != 512 {
		t.Errorf("num_predict not forwarded: %v", got.Options["num_predict"])
	}
}

func TestOllamaAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "test")
	if _, err := adapter.Generate(context.Background(), "test", testSampling()); err == nil {
		t.Error("should error on 404")
	}
}

func TestOllamaAdapter_DefaultValues(t *testing.T) {
	adapter := NewOllamaAdapter("", "")
	if adapter.baseURL != "http://localhost:11434" {
		t.Error("should default to localhost")
	}
	if adapter.model != "llama3.2" {
		t.Error("should default to llama3.2")
	}
}

func TestIsRateLimit(t *testing.T) {
	cases := map[string]bool{
		"googleapi: Error 429: quota exceeded": true,
		"rpc error: RESOURCE EXHAUSTED":        true,
		"connection refused":                   false,
	}
	for msg, want := range cases {
		if got := isRateLimit(errString(msg)); got != want {
			t.Errorf("isRateLimit(%q) = %v, want %v", msg, got, want)
		}
	}
}

// errString is a trivial error for table cases.
type errString string

func (e errString) Error() string { return string(e) }
