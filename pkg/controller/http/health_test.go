package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/m-mizutani/subtag/pkg/controller/http"
	"github.com/m-mizutani/subtag/pkg/domain/model"
)

func TestHealthEndpoint(t *testing.T) {
	ctx := context.Background()

	server, err := controller.NewServer(
		ctx,
		&mockWebhookUseCase{},
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret("test-secret"),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Status = %v, want healthy", status.Status)
	}
	if status.Service != "subtag" {
		t.Errorf("Service = %v, want subtag", status.Service)
	}
	if status.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewServer_RequiresSecret(t *testing.T) {
	_, err := controller.NewServer(context.Background(), &mockWebhookUseCase{})
	if err == nil {
		t.Fatal("NewServer() should fail without a webhook secret")
	}
}
