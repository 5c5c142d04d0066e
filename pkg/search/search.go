// Package search provides the external web search tool invoked by agentic
// streaming turns, backed by the Google Custom Search API.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Result is a single search hit passed back to the model as tool output.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Tool executes web searches on behalf of a streaming turn.
type Tool interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

type googleSearch struct {
	svc      *customsearch.Service
	engineID string
	logger   *slog.Logger
}

// New creates a Tool backed by Google Custom Search.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Tool, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create search service: %w", err)
	}

	return &googleSearch{
		svc:      svc,
		engineID: cfg.EngineID,
		logger:   logger.With("system", "search"),
	}, nil
}

func (g *googleSearch) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 1 || limit > 10 {
		limit = 5
	}

	resp, err := g.svc.Cse.List().
		Q(query).
		Cx(g.engineID).
		Num(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	g.logger.Info("search executed", "query", query, "results", len(results))
	return results, nil
}
