package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func reply(content string) chatResponse {
	var c chatChoice
	c.Message.Content = content
	return chatResponse{Choices: []chatChoice{c}}
}

var testMessages = []model.Message{System("be precise"), User("score this")}

func TestComplete_Success(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, reply("```json\n{\"final_score\":80}\n```"))

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", false, client)
	got, err := provider.Complete(context.Background(), testMessages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "```json\n{\"final_score\":80}\n```" {
		t.Errorf("got %q, want raw content unchanged", got)
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusInternalServerError, map[string]string{"error": "server error"})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", false, client)
	_, err := provider.Complete(context.Background(), testMessages)
	if err == nil {
		t.Fatal("expected error on 5xx response")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want *model.HTTPError with status 500", err)
	}
}

func TestComplete_RateLimited(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", false, client)
	_, err := provider.Complete(context.Background(), testMessages)
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, chatResponse{Choices: nil})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", false, client)
	_, err := provider.Complete(context.Background(), testMessages)
	if err == nil {
		t.Fatal("expected error when LLM returns no choices")
	}
}

func TestComplete_ProviderErrorBody(t *testing.T) {
	body := map[string]any{"error": map[string]string{"message": "bad key", "type": "auth"}}
	srv, client := makeTestServer(t, http.StatusOK, body)

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", false, client)
	_, err := provider.Complete(context.Background(), testMessages)
	if err == nil {
		t.Fatal("expected error when response carries an error object")
	}
}

func TestComplete_SetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply("ok"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "my-secret-key", "test-model", false, srv.Client())
	_, _ = provider.Complete(context.Background(), testMessages)

	if gotAuth != "Bearer my-secret-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer my-secret-key")
	}
}

func TestComplete_SendsMessagesInOrder(t *testing.T) {
	var gotReq chatRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply("{}"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "key", "gpt-4o-mini", true, srv.Client())
	_, _ = provider.Complete(context.Background(), testMessages)

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "score this" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", gotReq.ResponseFormat)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("temperature = %d, want 0", gotReq.Temperature)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", gotReq.Model)
	}
}
