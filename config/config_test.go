package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")

		cfg, err := Load()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "openai", cfg.AI.Plugin)
		assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAI.Model)
		assert.Equal(t, "sqlite", cfg.Storage.Driver)
		assert.Equal(t, "expenses.db", cfg.Storage.Path)
		assert.Equal(t, "knowledge.json", cfg.Knowledge.Path)
		assert.Equal(t, "https://api.weather.gov", cfg.Weather.BaseURL)
		assert.Equal(t, 15, cfg.Chat.MaxToolRounds)
		assert.Equal(t, 20, cfg.Chat.MaxHistory)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("AI_PLUGIN", "gemini")
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("EXPENSE_DB_DSN", "host=localhost user=toolhost dbname=expenses")

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, "gemini", cfg.AI.Plugin)
		assert.Equal(t, "test-key", cfg.AI.Gemini.APIKey)
		assert.Equal(t, "postgres", cfg.Storage.Driver)
	})

	t.Run("MissingModelKey", func(t *testing.T) {
		t.Setenv("AI_PLUGIN", "openai")
		t.Setenv("OPENAI_API_KEY", "")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("SheetsRequiresCredentials", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")
		t.Setenv("SHEETS_ENABLED", "true")
		t.Setenv("GOOGLE_SHEETS_CREDENTIALS", "")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS")
	})

	t.Run("UnknownPlugin", func(t *testing.T) {
		t.Setenv("AI_PLUGIN", "claude")

		_, err := Load()
		assert.Error(t, err)
	})
}
