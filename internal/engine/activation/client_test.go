package activation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"partnerhub/internal/platform/config"
)

func TestClient_Enabled(t *testing.T) {
	disabled := NewClient(config.ActivationConfig{BaseURL: "http://localhost"})
	if disabled.Enabled() {
		t.Error("Expected client without api key to be disabled")
	}

	enabled := NewClient(config.ActivationConfig{BaseURL: "http://localhost", APIKey: "key"})
	if !enabled.Enabled() {
		t.Error("Expected client with api key to be enabled")
	}
}

func TestClient_Statuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/licenses/status" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected auth header: %s", auth)
		}

		var req struct {
			Emails []string `json:"emails"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Emails) != 2 {
			t.Errorf("Expected 2 emails, got %d", len(req.Emails))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"statuses": []map[string]interface{}{
				{"email": "done@x.com", "activated": true},
				{"email": "new@x.com", "activated": false},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.ActivationConfig{BaseURL: server.URL, APIKey: "test-key", Timeout: 2 * time.Second})

	statuses, err := client.Statuses(context.Background(), []string{"done@x.com", "new@x.com"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Only activated entries come back; the rest are simply absent.
	if len(statuses) != 1 {
		t.Fatalf("Expected 1 entry, got %v", statuses)
	}
	if !statuses["done@x.com"] {
		t.Error("Expected done@x.com to be activated")
	}
}

func TestClient_StatusesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.ActivationConfig{BaseURL: server.URL, APIKey: "test-key"})

	if _, err := client.Statuses(context.Background(), []string{"a@x.com"}); err == nil {
		t.Error("Expected error for 500 response, got nil")
	}
}
