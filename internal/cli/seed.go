package cli

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tulu-service/internal/config"
	"tulu-service/internal/content"
	"tulu-service/internal/infra/postgres"
	redisinfra "tulu-service/internal/infra/redis"
	"tulu-service/internal/logger"
)

// NewSeedCmd writes the content bundle (embedded or content.dir) to Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load series, scenes, dictionary and quizzes into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runSeed(cmd.Context(), cfg, log)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	bundle, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDB(ctx, db, log); err != nil {
		return err
	}
	stats, err := postgres.Seed(ctx, db, bundle)
	if err != nil {
		return err
	}
	log.Info("content seeded", "series", stats.Series, "scenes", stats.Scenes, "words", stats.Words, "quizzes", stats.Quizzes)

	// cached quiz copies would otherwise outlive the reseed until their ttl
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		cache := redisinfra.NewQuizRepository(client, nil, 0, log)
		for sceneID := range bundle.Quizzes {
			if err := cache.Invalidate(ctx, sceneID); err != nil {
				log.Warn("invalidating cached quiz failed", "scene_id", sceneID, "error", err)
			}
		}
	}
	return nil
}
