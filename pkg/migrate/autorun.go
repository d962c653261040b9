package migrate

import (
	"context"
	"fmt"

	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/db"
	"github.com/figpreorders/figorders/pkg/logger"
)

// MaybeAutoRun applies pending migrations at startup when the feature flag is
// enabled and the slots live in a SQL backend.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate || !cfg.Store.UsesSQL() || client == nil {
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Dialect(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
