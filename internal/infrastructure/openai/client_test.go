package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		APIKey:  "sk-test-key-123456",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestChatCompletionSuccess(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test-key-123456" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"beach_sunset\",\"confidence\":0.9}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}}`))
	})

	chat := NewChatClient(client)
	resp, err := chat.Complete(context.Background(), []ChatMessage{
		TextMessage("system", "name files"),
		ImageMessage("user", "IMG_0001.jpg", []InlineImage{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}}),
	}, WithJSONMode(), WithMaxTokens(64))
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	if resp.Usage.TotalTokens != 20 || resp.Choices[0].FinishReason != "stop" {
		t.Errorf("unexpected response: %+v", resp)
	}

	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format = %v", captured["response_format"])
	}
	if captured["max_tokens"] != float64(64) {
		t.Errorf("max_tokens = %v", captured["max_tokens"])
	}

	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("user content parts = %d, want 2", len(parts))
	}
	image, _ := parts[1].(map[string]any)
	imageURL, _ := image["image_url"].(map[string]any)
	if url, _ := imageURL["url"].(string); !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %v", imageURL["url"])
	}
}

func TestChatCompletionRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := NewChatClient(client).Complete(context.Background(), []ChatMessage{TextMessage("user", "hi")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.RetryAfter != 2*time.Second {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if apiErr.Code != "rate_limit_exceeded" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if client.RateLimiter().PausedUntil().IsZero() {
		t.Error("rate limiter should pause after 429 with Retry-After")
	}
}

func TestChatCompletionPlainErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := NewChatClient(client).Complete(context.Background(), []ChatMessage{TextMessage("user", "hi")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream unavailable" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestChatCompletionEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := NewChatClient(client).Complete(context.Background(), []ChatMessage{TextMessage("user", "hi")})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestRetryAfterFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("x-ratelimit-reset-requests", "1.5s")
	h.Set("x-ratelimit-reset-tokens", "6m0s")
	if got := retryAfterFromHeaders(h); got != 6*time.Minute {
		t.Errorf("retryAfterFromHeaders() = %v, want 6m", got)
	}

	if got := retryAfterFromHeaders(http.Header{}); got != 0 {
		t.Errorf("empty headers = %v, want 0", got)
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{APIKey: "k"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL || cfg.Model != defaultModel || cfg.Timeout != defaultTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	if err := (&Config{}).Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() without key = %v", err)
	}
}
