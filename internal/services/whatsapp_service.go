package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// WhatsAppService sends text messages through the WhatsApp Cloud API.
// It is a thin forwarder; the provider owns delivery.
type WhatsAppService struct {
	baseURL     string
	accessToken string
	phoneID     string
	client      *http.Client
}

// NewWhatsAppService builds a client from environment configuration.
// With no access token configured the service is disabled and Send
// returns an error the caller is expected to log and swallow.
func NewWhatsAppService() *WhatsAppService {
	baseURL := os.Getenv("WHATSAPP_API_URL")
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &WhatsAppService{
		baseURL:     baseURL,
		accessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		phoneID:     os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the service has credentials to send with.
func (w *WhatsAppService) Enabled() bool {
	return w.accessToken != "" && w.phoneID != ""
}

type whatsAppMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

// Send delivers a plain text message to a phone number in E.164 format.
func (w *WhatsAppService) Send(ctx context.Context, phoneNumber, message string) error {
	if !w.Enabled() {
		return fmt.Errorf("whatsapp service not configured")
	}

	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               phoneNumber,
		Type:             "text",
		Text:             whatsAppTextBody{Body: message},
	})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
