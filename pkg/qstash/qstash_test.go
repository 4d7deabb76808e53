package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublish(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotAuth  string
		gotRetry string
		gotBody  map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRetry = r.Header.Get("Upstash-Retries")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"messageId":"msg_123"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "token", Retries: 2}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	res, err := client.Publish(context.Background(), "https://example.com/hooks/audit", map[string]any{"event": "info"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.MessageID != "msg_123" {
		t.Fatalf("MessageID = %q, want msg_123", res.MessageID)
	}
	if gotPath != "/v2/publish/https://example.com/hooks/audit" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token" || gotRetry != "2" {
		t.Fatalf("headers auth=%q retries=%q", gotAuth, gotRetry)
	}
	if gotBody["event"] != "info" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestPublishHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid token"}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "bad"}, WithHTTPClient(server.Client()))
	_, err := client.Publish(context.Background(), "https://example.com/hook", map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("Publish() error = %v, want status=401", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	client, err := NewClient(Config{Token: "t"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.baseURL != DefaultURL {
		t.Fatalf("baseURL = %q, want %q", client.baseURL, DefaultURL)
	}
	if _, err := client.Publish(context.Background(), "not a url", nil); err == nil {
		t.Fatal("expected error for invalid destination")
	}
}
