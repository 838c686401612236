package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	})
}

func TestCompleteReturnsTextAndSources(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if decoded["model"] != "test-model" {
			t.Errorf("model = %v", decoded["model"])
		}
		if _, ok := decoded["web_search_options"]; !ok {
			t.Error("grounded request missing web_search_options")
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}],"citations":["https://stats.example/a"]}`))
	})

	got, err := client.Complete(context.Background(), Request{Prompt: "analyze", Grounding: true})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Text != `{"ok":true}` {
		t.Fatalf("Text = %q", got.Text)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "https://stats.example/a" {
		t.Fatalf("Sources = %v", got.Sources)
	}
}

func TestCompleteImagePayloadShape(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var decoded struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("request body: %v", err)
		}
		last := decoded.Messages[len(decoded.Messages)-1]
		var parts []map[string]any
		if err := json.Unmarshal(last.Content, &parts); err != nil {
			t.Fatalf("image message content is not a part array: %s", last.Content)
		}
		if len(parts) != 2 || parts[1]["type"] != "image_url" {
			t.Fatalf("unexpected parts: %v", parts)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.Complete(context.Background(), Request{
		System:   "you read betting slips",
		Prompt:   "extract the matches",
		ImageB64: "aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
}

func TestCompleteRateLimitIsRetryable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !resilience.IsRetryable(err) {
		t.Fatalf("429 must be retryable, got %v", err)
	}
}

func TestCompleteBadRequestIsNotRetryable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad prompt"}`))
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if resilience.IsRetryable(err) {
		t.Fatal("400 must not be retryable")
	}
}

func TestCompleteCircuitBreakerTrips(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Complete(ctx, Request{Prompt: "hi"}); err == nil {
			t.Fatal("expected failure")
		}
	}

	// Third call should be rejected by the breaker without reaching the server.
	_, err := client.Complete(ctx, Request{Prompt: "hi"})
	if err == nil || !resilience.IsRetryable(err) {
		t.Fatalf("open breaker error = %v, want retryable rejection", err)
	}
}

func TestCompleteUnconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	if _, err := client.Complete(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("unconfigured client must error")
	}
}
