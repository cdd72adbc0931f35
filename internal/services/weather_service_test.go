package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWeatherServiceCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Berlin" {
			t.Errorf("q = %q, want Berlin", got)
		}
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Berlin","weather":[{"main":"Clouds"}],"main":{"temp":18.5,"humidity":72},"wind":{"speed":4.2}}`))
	}))
	defer server.Close()

	service := &WeatherService{
		baseURL: server.URL,
		apiKey:  "test-key",
		client:  &http.Client{Timeout: 2 * time.Second},
	}

	report, err := service.Current(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Current() returned error: %v", err)
	}
	if report.City != "Berlin" {
		t.Errorf("City = %q, want Berlin", report.City)
	}
	if report.Temperature != 18.5 {
		t.Errorf("Temperature = %v, want 18.5", report.Temperature)
	}
	if report.Humidity != 72 {
		t.Errorf("Humidity = %d, want 72", report.Humidity)
	}
	if report.WindSpeed != 4.2 {
		t.Errorf("WindSpeed = %v, want 4.2", report.WindSpeed)
	}
	if report.Condition != "Clouds" {
		t.Errorf("Condition = %q, want Clouds", report.Condition)
	}
}

func TestWeatherServiceCurrentProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	service := &WeatherService{
		baseURL: server.URL,
		apiKey:  "test-key",
		client:  &http.Client{Timeout: 2 * time.Second},
	}

	if _, err := service.Current(context.Background(), "Atlantis"); err == nil {
		t.Fatal("expected error for provider 404, got nil")
	}
}

func TestWeatherServiceDisabled(t *testing.T) {
	service := &WeatherService{client: &http.Client{}}
	if service.Enabled() {
		t.Error("service without API key should be disabled")
	}
	if _, err := service.Current(context.Background(), "Berlin"); err == nil {
		t.Fatal("expected error when service is not configured")
	}
}
