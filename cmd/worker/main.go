package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/ferialibre/listings-api/internal/config"
	"github.com/ferialibre/listings-api/internal/database"
	"github.com/ferialibre/listings-api/internal/ledger"
	"github.com/ferialibre/listings-api/internal/listing"
	"github.com/ferialibre/listings-api/internal/moderation"
	"github.com/ferialibre/listings-api/internal/queue"
	"github.com/ferialibre/listings-api/internal/queue/workers"
	"github.com/ferialibre/listings-api/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	lexicon, err := moderation.DefaultLexicon()
	if err != nil {
		slog.Error("invalid moderation lexicon", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewCloudinaryStorage(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	ledgerSvc := ledger.NewService(db)
	listingSvc := listing.NewService(db, moderation.NewEngine(lexicon), ledgerSvc, store, nil, nil)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	cleanupWorker := workers.NewCleanupWorker(listingSvc, cfg.Cleanup.RetentionDays)
	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeListingPurge, asynq.HandlerFunc(cleanupWorker.ProcessTask))

	// Daily purge at 02:00.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	payload, _ := json.Marshal(queue.ListingPurgePayload{RetentionDays: cfg.Cleanup.RetentionDays})
	if _, err := scheduler.Register("0 2 * * *", asynq.NewTask(queue.TypeListingPurge, payload)); err != nil {
		slog.Error("register purge schedule", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			slog.Error("scheduler error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("starting worker", "retention_days", cfg.Cleanup.RetentionDays)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
