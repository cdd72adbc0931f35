package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// WeatherReport is the subset of provider data the dashboard shows.
type WeatherReport struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Condition   string  `json:"condition"`
}

// WeatherService looks up current conditions for a branch location.
// Lookups are best-effort: callers fall back to an "unavailable"
// payload on any error so weather never blocks a dashboard load.
type WeatherService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewWeatherService builds a client from environment configuration.
func NewWeatherService() *WeatherService {
	baseURL := os.Getenv("WEATHER_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	return &WeatherService{
		baseURL: baseURL,
		apiKey:  os.Getenv("WEATHER_API_KEY"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (s *WeatherService) Enabled() bool {
	return s.apiKey != ""
}

type weatherProviderResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches current conditions for a city.
func (s *WeatherService) Current(ctx context.Context, city string) (*WeatherReport, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("weather service not configured")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", s.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned %d", resp.StatusCode)
	}

	var payload weatherProviderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := &WeatherReport{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if report.City == "" {
		report.City = city
	}
	if len(payload.Weather) > 0 {
		report.Condition = payload.Weather[0].Main
	}
	return report, nil
}
