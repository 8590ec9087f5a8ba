// Package weather is a thin pass-through over the api.weather.gov service.
// It holds no state; failures surface to the caller and are not retried here.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/niloybiswas/toolhost/config"
)

// Client handles National Weather Service API requests.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a weather API client.
func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.TimeoutS) * time.Second},
	}
}

// Alert is one active alert for an area.
type Alert struct {
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Severity    string `json:"severity"`
	AreaDesc    string `json:"area"`
	Description string `json:"description"`
	Instruction string `json:"instruction,omitempty"`
}

// ForecastPeriod is one entry of a point forecast.
type ForecastPeriod struct {
	Name             string `json:"name"`
	Temperature      int    `json:"temperature"`
	TemperatureUnit  string `json:"temperature_unit"`
	WindSpeed        string `json:"wind_speed"`
	WindDirection    string `json:"wind_direction"`
	DetailedForecast string `json:"detailed_forecast"`
}

type alertsResponse struct {
	Features []struct {
		Properties Alert `json:"properties"`
	} `json:"features"`
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name             string `json:"name"`
			Temperature      int    `json:"temperature"`
			TemperatureUnit  string `json:"temperatureUnit"`
			WindSpeed        string `json:"windSpeed"`
			WindDirection    string `json:"windDirection"`
			DetailedForecast string `json:"detailedForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

// GetAlerts returns active alerts for a two-letter US state code.
func (c *Client) GetAlerts(ctx context.Context, state string) ([]Alert, error) {
	url := fmt.Sprintf("%s/alerts/active/area/%s", c.BaseURL, strings.ToUpper(state))

	var decoded alertsResponse
	if err := c.getJSON(ctx, url, &decoded); err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, len(decoded.Features))
	for _, feature := range decoded.Features {
		alerts = append(alerts, feature.Properties)
	}
	return alerts, nil
}

// GetForecast resolves the forecast office for a coordinate, then returns
// its forecast periods. The NWS API requires the two-step points lookup.
func (c *Client) GetForecast(ctx context.Context, latitude, longitude float64) ([]ForecastPeriod, error) {
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.BaseURL, latitude, longitude)

	var points pointsResponse
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return nil, err
	}
	if points.Properties.Forecast == "" {
		return nil, fmt.Errorf("no forecast available for %.4f,%.4f", latitude, longitude)
	}

	var forecast forecastResponse
	if err := c.getJSON(ctx, points.Properties.Forecast, &forecast); err != nil {
		return nil, err
	}

	periods := make([]ForecastPeriod, 0, len(forecast.Properties.Periods))
	for _, p := range forecast.Properties.Periods {
		periods = append(periods, ForecastPeriod{
			Name:             p.Name,
			Temperature:      p.Temperature,
			TemperatureUnit:  p.TemperatureUnit,
			WindSpeed:        p.WindSpeed,
			WindDirection:    p.WindDirection,
			DetailedForecast: p.DetailedForecast,
		})
	}
	return periods, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
