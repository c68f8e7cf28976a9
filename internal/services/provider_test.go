package services

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

// scriptedCompleter returns the queued results in order
type scriptedCompleter struct {
	results []error
	reply   string
	calls   int
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return "", s.results[i]
	}
	return s.reply, nil
}

func TestPolicyCompleterRetriesServerErrors(t *testing.T) {
	next := &scriptedCompleter{
		results: []error{
			&ProviderError{Provider: "scripted", StatusCode: http.StatusBadGateway},
			&ProviderError{Provider: "scripted", StatusCode: http.StatusTooManyRequests},
		},
		reply: "Overview: ok",
	}
	completer := NewPolicyCompleter(next, ProviderPolicy{MaxRetries: 2, Backoff: time.Millisecond})

	reply, err := completer.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Overview: ok" {
		t.Errorf("reply: got %q", reply)
	}
	if next.calls != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls)
	}
}

func TestPolicyCompleterDoesNotRetryClientErrors(t *testing.T) {
	next := &scriptedCompleter{
		results: []error{&ProviderError{Provider: "scripted", StatusCode: http.StatusBadRequest, Body: "bad model"}},
	}
	completer := NewPolicyCompleter(next, ProviderPolicy{MaxRetries: 3, Backoff: time.Millisecond})

	_, err := completer.Complete(context.Background(), "prompt")

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 provider error, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected a single call, got %d", next.calls)
	}
}

func TestPolicyCompleterGivesUpAfterMaxRetries(t *testing.T) {
	unavailable := &ProviderError{Provider: "scripted", StatusCode: http.StatusServiceUnavailable}
	next := &scriptedCompleter{results: []error{unavailable, unavailable, unavailable}}
	completer := NewPolicyCompleter(next, ProviderPolicy{MaxRetries: 1, Backoff: time.Millisecond})

	if _, err := completer.Complete(context.Background(), "prompt"); !errors.Is(err, unavailable) {
		t.Fatalf("expected last provider error, got %v", err)
	}
	if next.calls != 2 {
		t.Errorf("expected 2 calls, got %d", next.calls)
	}
}

func TestPolicyCompleterNegativeRetriesStillCallsProvider(t *testing.T) {
	next := &scriptedCompleter{reply: "Overview: ok"}
	completer := NewPolicyCompleter(next, ProviderPolicy{MaxRetries: -1})

	reply, err := completer.Complete(context.Background(), "prompt")
	if err != nil || reply != "Overview: ok" {
		t.Fatalf("got %q, %v", reply, err)
	}
	if next.calls != 1 {
		t.Errorf("expected exactly one call, got %d", next.calls)
	}

	failing := &scriptedCompleter{results: []error{&ProviderError{Provider: "scripted", StatusCode: 500}}}
	if _, err := NewPolicyCompleter(failing, ProviderPolicy{MaxRetries: -3}).Complete(context.Background(), "prompt"); err == nil {
		t.Error("a failed provider call must surface an error")
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "openrouter", StatusCode: 401, Body: `{"error":"no auth"}`}
	if got, want := err.Error(), `Error from API: 401, {"error":"no auth"}`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	missing := &ProviderError{Provider: "openrouter", Err: errors.New("API Key Missing")}
	if !strings.Contains(missing.Error(), "API Key Missing") {
		t.Errorf("unexpected message: %q", missing.Error())
	}
	if !missing.Retryable() {
		t.Error("transport errors should be retryable")
	}
	if (&ProviderError{Err: context.Canceled}).Retryable() {
		t.Error("canceled requests must not be retried")
	}
}

func TestOpenRouterClientComplete(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization header: got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("HTTP-Referer") != "https://nutri.example" || r.Header.Get("X-Title") != "Nutri Scan" {
			t.Errorf("attribution headers missing: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Overview: Tasty."}}]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:   "test-key",
		URL:      server.URL,
		Model:    "test/model",
		SiteURL:  "https://nutri.example",
		SiteName: "Nutri Scan",
	})

	reply, err := client.Complete(context.Background(), "label text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Overview: Tasty." {
		t.Errorf("reply: got %q", reply)
	}
	if gotReq.Model != "test/model" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "label text" {
		t.Errorf("unexpected request body: %+v", gotReq)
	}
}

func TestOpenRouterClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid key"))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", URL: server.URL})
	_, err := client.Complete(context.Background(), "label text")

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusUnauthorized || providerErr.Body != "invalid key" {
		t.Errorf("unexpected error fields: %+v", providerErr)
	}
}

func TestOpenRouterClientMalformedBodyIsEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", URL: server.URL})
	reply, err := client.Complete(context.Background(), "label text")
	if err != nil || reply != "" {
		t.Errorf("expected empty reply without error, got %q, %v", reply, err)
	}
}

func TestOpenRouterClientMissingKey(t *testing.T) {
	client := NewOpenRouterClient(OpenRouterConfig{})
	_, err := client.Complete(context.Background(), "label text")

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != 0 {
		t.Fatalf("expected transport-level ProviderError, got %v", err)
	}
}

func TestBuildPromptEmbedsLabelText(t *testing.T) {
	prompt := BuildPrompt("Sugar 12g")
	if !strings.Contains(prompt, "Sugar 12g") {
		t.Error("prompt must contain the extracted label text")
	}
	for _, label := range []string{LabelBenefitScore, LabelOverallScore, LabelPositiveElements, LabelAreasForImprovement} {
		if !strings.Contains(prompt, label) {
			t.Errorf("prompt must ask for %q", label)
		}
	}
}
