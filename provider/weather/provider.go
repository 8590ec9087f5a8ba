package weather

import (
	"context"
	"fmt"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// Provider exposes the weather client's lookups as tools.
type Provider struct {
	client *Client
}

// NewProvider creates the weather provider around an API client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "weather" }

// ListTools implements provider.Provider.
func (p *Provider) ListTools() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{
		{
			Name:        "get_alerts",
			Description: "Get active weather alerts for a US state.",
			InputSchema: provider.Object(map[string]provider.Property{
				"state": {Type: "string", Description: "Two-letter US state code, e.g. NY"},
			}, "state"),
		},
		{
			Name:        "get_forecast",
			Description: "Get the weather forecast for a coordinate.",
			InputSchema: provider.Object(map[string]provider.Property{
				"latitude":  {Type: "number", Description: "Latitude of the location"},
				"longitude": {Type: "number", Description: "Longitude of the location"},
			}, "latitude", "longitude"),
		},
	}
}

// Call implements provider.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	log.Debugf(ctx, "Weather provider executing %s", name)

	switch name {
	case "get_alerts":
		state, _ := args["state"].(string)
		if state == "" {
			return nil, fmt.Errorf("state is required")
		}
		alerts, err := p.client.GetAlerts(ctx, state)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"alerts": alerts, "count": len(alerts)}, nil

	case "get_forecast":
		lat, ok := floatArg(args["latitude"])
		if !ok {
			return nil, fmt.Errorf("latitude must be a number")
		}
		lon, ok := floatArg(args["longitude"])
		if !ok {
			return nil, fmt.Errorf("longitude must be a number")
		}
		periods, err := p.client.GetForecast(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"periods": periods}, nil
	}
	return nil, fmt.Errorf("weather provider has no tool %q", name)
}

// floatArg coerces the numeric types schema validation accepts for "number"
// arguments. JSON decoding yields float64, but in-process callers may pass
// plain ints.
func floatArg(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
