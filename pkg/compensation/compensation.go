// Package compensation provides a two-phase side-effect pattern: perform an
// externally visible effect, then commit its record; if the commit fails,
// reverse the effect so state never silently diverges from the record of truth.
package compensation

import (
	"context"
	"fmt"
	"log/slog"
)

// Effect is a side effect with external visibility and a best-effort reversal.
// Apply performs the effect; Reverse undoes it after a failed commit.
type Effect struct {
	Name    string
	Apply   func(ctx context.Context) error
	Reverse func(ctx context.Context) error
}

// Coordinator runs effects and their commits, reversing the effect when the
// commit fails. A reversal is attempted exactly once; its outcome never
// replaces the commit's error.
type Coordinator struct {
	logger *slog.Logger
}

// New creates a Coordinator scoped to the given logger.
func New(logger *slog.Logger) *Coordinator {
	return &Coordinator{logger: logger.With("system", "compensation")}
}

// Run applies the effect and then invokes commit. When commit fails, the
// effect's reversal runs once; a failed reversal is logged at error level and
// the commit's error is returned unchanged.
func (c *Coordinator) Run(ctx context.Context, effect Effect, commit func(ctx context.Context) error) error {
	if err := effect.Apply(ctx); err != nil {
		return fmt.Errorf("apply %s: %w", effect.Name, err)
	}

	err := commit(ctx)
	if err == nil {
		return nil
	}

	if revErr := effect.Reverse(ctx); revErr != nil {
		c.logger.Error(
			"compensation failed, state may diverge",
			"effect", effect.Name,
			"commit_error", err,
			"reverse_error", revErr,
		)
	} else {
		c.logger.Warn("commit failed, effect reversed", "effect", effect.Name, "error", err)
	}

	return err
}
