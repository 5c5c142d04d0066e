// Package infrastructure provides core service initialization for application
// startup. It assembles common dependencies (logging, database, storage, the
// inference client, and the optional search tool) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vigil-labs/vigil/internal/config"
	"github.com/vigil-labs/vigil/pkg/database"
	"github.com/vigil-labs/vigil/pkg/inference"
	"github.com/vigil-labs/vigil/pkg/lifecycle"
	"github.com/vigil-labs/vigil/pkg/search"
	"github.com/vigil-labs/vigil/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Search is nil when no search credentials are configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Inference inference.Client
	Search    search.Tool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	client := inference.NewOpenAI(&cfg.Inference, logger)

	var tool search.Tool
	if cfg.Search.Enabled() {
		tool, err = search.New(context.Background(), &cfg.Search, logger)
		if err != nil {
			return nil, fmt.Errorf("search init failed: %w", err)
		}
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Inference: client,
		Search:    tool,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
