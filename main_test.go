package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/niloybiswas/toolhost/bootstrap"
	"github.com/niloybiswas/toolhost/config"
)

func testApp(t *testing.T) *bootstrap.App {
	t.Helper()
	dir := t.TempDir()
	app, err := bootstrap.Setup(context.Background(), &config.Config{
		AI: config.AIConfig{
			Plugin: "openai",
			OpenAI: config.OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		Storage:   config.StorageConfig{Driver: "sqlite", Path: filepath.Join(dir, "expenses.db")},
		Knowledge: config.KnowledgeConfig{Path: filepath.Join(dir, "knowledge.json")},
		Weather:   config.WeatherConfig{BaseURL: "https://api.weather.gov", UserAgent: "test", TimeoutS: 5},
		Chat:      config.ChatConfig{MaxToolRounds: 15, MaxHistory: 20, ToolTimeoutS: 30},
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app
}

func TestRunREPL_ExitCommand(t *testing.T) {
	app := testApp(t)

	done := make(chan struct{})
	go func() {
		runREPL(context.Background(), app, strings.NewReader("tools\nexit\n"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("REPL did not exit on the exit command")
	}
}

func TestRunREPL_CancelledContextStopsLoop(t *testing.T) {
	app := testApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		// Plenty of pending input; the loop must stop before reading it.
		runREPL(ctx, app, strings.NewReader(strings.Repeat("tools\n", 100)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("REPL kept running after context cancellation")
	}
}
