package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcDate(t *testing.T) {
	p := New()
	p.Now = func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		expression string
		wantDate   string
		wantErr    bool
	}{
		{
			name:       "DateObject",
			expression: "new Date('2026-01-02T00:00:00Z')",
			wantDate:   "2026-01-02",
		},
		{
			name:       "ISOString",
			expression: "'2026-01-02T00:00:00Z'",
			wantDate:   "2026-01-02",
		},
		{
			name:       "Tomorrow",
			expression: "new Date(now + 86400000)",
			wantDate:   "2026-01-02",
		},
		{
			name:       "NumberResult",
			expression: "12345",
			wantErr:    true,
		},
		{
			name:       "NullResult",
			expression: "null",
			wantErr:    true,
		},
		{
			name:       "SyntaxError",
			expression: "new Date(",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Call(context.Background(), "calc_date", map[string]interface{}{
				"expression": tt.expression,
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, res.(map[string]interface{})["date"])
		})
	}
}

func TestCurrencyForCountry(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"US", "USD"},
		{"de", "EUR"},
		{" jp ", "JPY"},
		{"GB", "GBP"},
		{"", "USD"},
		{"XX", "USD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrencyForCountry(tt.code), "code %q", tt.code)
	}
}

func TestCurrencyTool(t *testing.T) {
	res, err := New().Call(context.Background(), "currency_for_country", map[string]interface{}{
		"country_code": "BD",
	})
	require.NoError(t, err)
	assert.Equal(t, "BDT", res.(map[string]interface{})["currency"])
}

func TestUnknownTool(t *testing.T) {
	_, err := New().Call(context.Background(), "frobnicate", nil)
	assert.Error(t, err)
}
