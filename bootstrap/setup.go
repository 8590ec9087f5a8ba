package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/niloybiswas/toolhost/chat"
	"github.com/niloybiswas/toolhost/chatmodel"
	"github.com/niloybiswas/toolhost/config"
	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
	"github.com/niloybiswas/toolhost/provider/expense"
	"github.com/niloybiswas/toolhost/provider/knowledge"
	"github.com/niloybiswas/toolhost/provider/sheets"
	"github.com/niloybiswas/toolhost/provider/utils"
	"github.com/niloybiswas/toolhost/provider/weather"
	"github.com/niloybiswas/toolhost/registry"
	"github.com/niloybiswas/toolhost/storage"
)

// App holds the initialized components of the application
type App struct {
	Loop       *chat.Loop
	Registry   *registry.Registry
	Dispatcher *registry.Dispatcher
	Model      chatmodel.Model
	Store      *storage.Store
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1. Setup the reasoning model backend
	var model chatmodel.Model
	var err error

	if cfg.AI.Plugin == "gemini" {
		log.Infof(ctx, "Using Gemini backend (model: %s)", cfg.AI.Gemini.Model)
		model, err = chatmodel.NewGemini(ctx, cfg.AI.Gemini)
	} else {
		log.Infof(ctx, "Using OpenAI backend (model: %s)", cfg.AI.OpenAI.Model)
		model, err = chatmodel.NewOpenAI(cfg.AI.OpenAI)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model backend: %w", err)
	}

	// 2. Open expense storage
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open expense storage: %w", err)
	}

	// 3. Construct providers
	providers := []provider.Provider{
		expense.New(store),
		weather.NewProvider(weather.NewClient(cfg.Weather)),
		utils.New(),
	}

	kb, err := knowledge.New(ctx, cfg.Knowledge.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	providers = append(providers, kb)

	if cfg.Sheets.Enabled {
		sheetsProvider, err := sheets.New(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sheets provider: %w", err)
		}
		providers = append(providers, sheetsProvider)
	}

	// 4. Start the registry: sessions, catalog snapshots, merged namespace
	reg, err := registry.Start(ctx, providers)
	if err != nil {
		return nil, err
	}

	// 5. Dispatcher and conversation loop
	dispatcher := registry.NewDispatcher(reg, time.Duration(cfg.Chat.ToolTimeoutS*float64(time.Second)))
	loop := chat.New(model, dispatcher, reg.Catalog(), cfg.Chat)

	log.Infof(ctx, "Initialized %d providers, %d tools", len(providers), len(reg.Catalog()))

	return &App{
		Loop:       loop,
		Registry:   reg,
		Dispatcher: dispatcher,
		Model:      model,
		Store:      store,
	}, nil
}

// Shutdown closes provider sessions and the model backend.
func (a *App) Shutdown(ctx context.Context) {
	a.Registry.Shutdown(ctx)
	if closer, ok := a.Model.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warnf(ctx, "Failed to close model backend: %v", err)
		}
	}
}
