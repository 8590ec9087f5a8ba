// Package utils bundles small stateless helper tools the model tends to
// need around bookkeeping: date arithmetic and currency lookup.
package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// Provider implements the utility tools.
type Provider struct {
	// Now is swappable for tests.
	Now func() time.Time
}

// New creates the utilities provider.
func New() *Provider {
	return &Provider{Now: time.Now}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "utils" }

// ListTools implements provider.Provider.
func (p *Provider) ListTools() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{
		{
			Name: "calc_date",
			Description: `Evaluate a JavaScript expression to calculate a date. The variable 'now' holds the current timestamp in milliseconds.
Return a Date object or an ISO string; the last expression is the result.
Example for tomorrow: "new Date(now + 86400000)"`,
			InputSchema: provider.Object(map[string]provider.Property{
				"expression": {Type: "string", Description: "JavaScript expression returning a Date or ISO string"},
			}, "expression"),
		},
		{
			Name:        "currency_for_country",
			Description: "Look up the ISO 4217 currency code for a country.",
			InputSchema: provider.Object(map[string]provider.Property{
				"country_code": {Type: "string", Description: "ISO 3166-1 alpha-2 country code, e.g. DE"},
			}, "country_code"),
		},
	}
}

// Call implements provider.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case "calc_date":
		expression, _ := args["expression"].(string)
		result, err := p.evalDate(ctx, expression)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"date": result.Format("2006-01-02"),
			"iso":  result.Format(time.RFC3339),
		}, nil

	case "currency_for_country":
		code, _ := args["country_code"].(string)
		return map[string]interface{}{"currency": CurrencyForCountry(code)}, nil
	}
	return nil, fmt.Errorf("utils provider has no tool %q", name)
}

// evalDate runs the expression in a fresh goja VM with 'now' bound to the
// current epoch milliseconds. Goja exports JS Date values as time.Time.
func (p *Provider) evalDate(ctx context.Context, expression string) (time.Time, error) {
	if expression == "" {
		return time.Time{}, fmt.Errorf("expression is required")
	}
	log.Debugf(ctx, "calc_date evaluating: %s", expression)

	vm := goja.New()
	if err := vm.Set("now", p.Now().UnixMilli()); err != nil {
		return time.Time{}, fmt.Errorf("failed to set 'now': %w", err)
	}

	val, err := vm.RunString(expression)
	if err != nil {
		return time.Time{}, fmt.Errorf("js execution failed: %w", err)
	}

	exported := val.Export()
	if exported == nil {
		return time.Time{}, fmt.Errorf("expression result is null or undefined")
	}

	if date, ok := exported.(time.Time); ok {
		return date, nil
	}
	if str, ok := exported.(string); ok {
		if date, err := time.Parse(time.RFC3339, str); err == nil {
			return date, nil
		}
		if date, err := time.Parse("2006-01-02", str); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("expression result is not a Date or ISO string")
}

// CurrencyForCountry maps an ISO 3166-1 alpha-2 country code to its
// ISO 4217 currency code. Unknown or empty codes default to USD.
func CurrencyForCountry(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return "USD"
	}

	region, err := language.ParseRegion(code)
	if err != nil {
		return "USD"
	}
	cur, ok := currency.FromRegion(region)
	if !ok {
		return "USD"
	}
	return cur.String()
}
