// @title Literacy Intervention API
// @version 1.0
// @description Backend for CRLA-based literacy assessment follow-up: intervention plans, templates, progress and prescriptive analysis.

// @contact.name API Support
// @contact.email support@literacy.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"literacy_backend/internal/app"
	"literacy_backend/internal/config"
	"literacy_backend/internal/service"
	"literacy_backend/pkg/configwatcher"
	"literacy_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	backfill := flag.Bool("backfill", false, "run the intervention backfill and studentObjectId migration, then exit")
	ensureIndexes := flag.Bool("ensure-indexes", false, "create MongoDB indexes on startup")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.RunBackfill = *backfill
	cfg.EnsureIndexes = *ensureIndexes || *backfill

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if cfg.RunBackfill {
		os.Exit(runBackfill(context.Background(), application))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := configwatcher.WatchConfig(ctx, *configDir, application.ApplyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	application.Run()
}

type backfiller interface {
	Backfill(ctx context.Context) (*service.BackfillSummary, *service.MigrationSummary, error)
	Close()
}

// runBackfill runs the one-shot repair jobs and returns the process exit code.
func runBackfill(ctx context.Context, b backfiller) int {
	defer b.Close()
	summary, migration, err := b.Backfill(ctx)
	if err != nil {
		logger.Log.Error("Backfill failed", zap.Error(err))
		return 1
	}
	logger.Log.Info("Backfill finished",
		zap.Int("totalInterventions", summary.TotalInterventions),
		zap.Int("updatedCount", summary.UpdatedCount),
		zap.Int("prescriptiveLinksAddedCount", summary.PrescriptiveLinksAddedCount),
		zap.Int("choiceDescriptionsAddedCount", summary.ChoiceDescriptionsAddedCount),
		zap.Int("categoryResultsScanned", migration.Scanned),
		zap.Int("categoryResultsMigrated", migration.Migrated),
		zap.Int("categoryResultsUnresolved", migration.Unresolved),
	)
	return 0
}
