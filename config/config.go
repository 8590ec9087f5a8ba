package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Weather   WeatherConfig   `yaml:"weather"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Chat      ChatConfig      `yaml:"chat"`
}

type AIConfig struct {
	Plugin string       `yaml:"plugin" env:"AI_PLUGIN" env-default:"openai"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
}

type StorageConfig struct {
	// Driver selects the database backend: "sqlite" or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	// Path is the sqlite database file.
	Path string `yaml:"path" env:"EXPENSE_DB_PATH" env-default:"expenses.db"`
	// DSN is the postgres connection string, used when Driver is "postgres".
	DSN string `yaml:"dsn" env:"EXPENSE_DB_DSN"`
}

type KnowledgeConfig struct {
	Path string `yaml:"path" env:"KNOWLEDGE_FILE" env-default:"knowledge.json"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url" env:"WEATHER_BASE_URL" env-default:"https://api.weather.gov"`
	// UserAgent is required by api.weather.gov; requests without one are rejected.
	UserAgent string `yaml:"user_agent" env:"WEATHER_USER_AGENT" env-default:"toolhost (contact@example.com)"`
	TimeoutS  int    `yaml:"timeout_seconds" env:"WEATHER_TIMEOUT_SECONDS" env-default:"30"`
}

type SheetsConfig struct {
	Enabled bool `yaml:"enabled" env:"SHEETS_ENABLED" env-default:"false"`
	// CredentialsFile is the service-account JSON key path. Required when Enabled.
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_SHEETS_CREDENTIALS"`
}

type ChatConfig struct {
	// MaxToolRounds bounds tool-call rounds within one user turn.
	MaxToolRounds int `yaml:"max_tool_rounds" env:"CHAT_MAX_TOOL_ROUNDS" env-default:"15"`
	// MaxHistory caps the retained conversation messages.
	MaxHistory int `yaml:"max_history" env:"CHAT_MAX_HISTORY" env-default:"20"`
	// ToolTimeoutS is the per-tool-call timeout applied by the dispatcher.
	ToolTimeoutS float64 `yaml:"tool_timeout_seconds" env:"CHAT_TOOL_TIMEOUT_SECONDS" env-default:"30"`
}

// Load reads configuration from config.yaml and environment variables.
// Priority: Env Vars > Config File > Defaults.
func Load() (*Config, error) {
	var cfg Config

	err := cleanenv.ReadConfig("config.yaml", &cfg)
	if err != nil {
		// No config file; fall back to env vars and defaults.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required credentials up front so misconfiguration fails at
// startup rather than at the first tool call.
func (c *Config) Validate() error {
	switch c.AI.Plugin {
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set (or set AI_PLUGIN=gemini)")
		}
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set (or set AI_PLUGIN=openai)")
		}
	default:
		return fmt.Errorf("unknown ai plugin %q (expected openai or gemini)", c.AI.Plugin)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for the sqlite driver")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("EXPENSE_DB_DSN must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (expected sqlite or postgres)", c.Storage.Driver)
	}

	if c.Sheets.Enabled && c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS must be set when sheets is enabled")
	}

	return nil
}
