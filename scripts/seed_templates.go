// Seeds the question, choice and sentence templates from a YAML file.
//
// Entries already present are skipped, so the script can be re-run after
// editing the seed file.
//
// Usage: go run scripts/seed_templates.go -file configs/seed_templates.yaml

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"literacy_backend/internal/config"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/service"
	"literacy_backend/pkg/database"
	"literacy_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	file := flag.String("file", "configs/seed_templates.yaml", "seed file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	seed, err := service.ParseTemplateSeed(data)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	client, db, err := database.InitMongo(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(ctx)

	templates := service.NewTemplateService(repository.NewTemplateRepository(db))
	summary, err := templates.SeedTemplates(ctx, seed)
	if err != nil {
		logger.Log.Error("Seeding stopped", zap.Error(err))
	}
	if summary != nil {
		logger.Log.Info("Template seed finished",
			zap.Int("questionsAdded", summary.QuestionsAdded),
			zap.Int("choicesAdded", summary.ChoicesAdded),
			zap.Int("sentencesAdded", summary.SentencesAdded),
			zap.Int("skipped", summary.Skipped),
		)
	}
}
