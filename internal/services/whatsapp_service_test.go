package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWhatsAppServiceSend(t *testing.T) {
	var got whatsAppMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/phone-123/messages" {
			t.Errorf("path = %q, want /phone-123/messages", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want Bearer token-abc", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	service := &WhatsAppService{
		baseURL:     server.URL,
		accessToken: "token-abc",
		phoneID:     "phone-123",
		client:      &http.Client{Timeout: 2 * time.Second},
	}

	if err := service.Send(context.Background(), "+4915112345678", "2 items need restocking"); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if got.MessagingProduct != "whatsapp" {
		t.Errorf("messaging_product = %q, want whatsapp", got.MessagingProduct)
	}
	if got.To != "+4915112345678" {
		t.Errorf("to = %q, want +4915112345678", got.To)
	}
	if got.Text.Body != "2 items need restocking" {
		t.Errorf("text body = %q", got.Text.Body)
	}
}

func TestWhatsAppServiceSendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer server.Close()

	service := &WhatsAppService{
		baseURL:     server.URL,
		accessToken: "expired",
		phoneID:     "phone-123",
		client:      &http.Client{Timeout: 2 * time.Second},
	}

	if err := service.Send(context.Background(), "+4915112345678", "hello"); err == nil {
		t.Fatal("expected error for provider 401, got nil")
	}
}

func TestWhatsAppServiceDisabled(t *testing.T) {
	service := &WhatsAppService{client: &http.Client{}}
	if service.Enabled() {
		t.Error("service without credentials should be disabled")
	}
	if err := service.Send(context.Background(), "+4915112345678", "hello"); err == nil {
		t.Fatal("expected error when service is not configured")
	}
}
