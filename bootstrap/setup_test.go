package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niloybiswas/toolhost/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AI: config.AIConfig{
			Plugin: "openai",
			OpenAI: config.OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		Storage: config.StorageConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dir, "expenses.db"),
		},
		Knowledge: config.KnowledgeConfig{Path: filepath.Join(dir, "knowledge.json")},
		Weather: config.WeatherConfig{
			BaseURL:   "https://api.weather.gov",
			UserAgent: "test",
			TimeoutS:  5,
		},
		Chat: config.ChatConfig{MaxToolRounds: 15, MaxHistory: 20, ToolTimeoutS: 30},
	}
}

func TestSetup_WiresAllProviders(t *testing.T) {
	app, err := Setup(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Shutdown(context.Background())

	names := map[string]bool{}
	for _, tool := range app.Registry.Catalog() {
		names[tool.Name] = true
	}

	// One tool from each enabled provider.
	assert.True(t, names["add_expense"])
	assert.True(t, names["get_alerts"])
	assert.True(t, names["search_knowledge"])
	assert.True(t, names["calc_date"])

	// Sheets stays out unless enabled.
	assert.False(t, names["append_row"])
	assert.Equal(t, "openai/gpt-4o-mini", app.Model.Name())
}

func TestSetup_SheetsRequiresValidCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sheets = config.SheetsConfig{Enabled: true, CredentialsFile: "/nonexistent/creds.json"}

	_, err := Setup(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets")
}

func TestSetup_ShutdownIdempotent(t *testing.T) {
	app, err := Setup(context.Background(), testConfig(t))
	require.NoError(t, err)

	app.Shutdown(context.Background())
	app.Shutdown(context.Background())
}
