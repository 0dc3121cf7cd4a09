package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tulu-service/internal/app"
	"tulu-service/internal/config"
	"tulu-service/internal/content"
	"tulu-service/internal/infra/memory"
	mongoinfra "tulu-service/internal/infra/mongo"
	openaiinfra "tulu-service/internal/infra/openai"
	pgloader "tulu-service/internal/infra/postgres"
	redisinfra "tulu-service/internal/infra/redis"
	"tulu-service/internal/logger"
	"tulu-service/internal/quiz"
	transport "tulu-service/internal/transport/http"
	"tulu-service/internal/tts"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Tulu API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cmd.Context(), cfg, *port, log)
		},
	}
}

// contentSource is what the server reads scenes, words and quizzes from.
type contentSource interface {
	app.ContentStore
	memory.QuizLoader
}

func runServer(ctx context.Context, cfg config.Config, portFlag string, log *logger.Logger) error {
	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var source contentSource
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = pgloader.NewContentLoader(pool)
		log.Info("serving content from postgres")
	} else {
		bundle, err := content.LoadDir(cfg.Content.Dir)
		if err != nil {
			return err
		}
		source = memory.NewContentStore(bundle)
		log.Info("serving content bundle", "dir", cfg.Content.Dir, "scenes", len(bundle.Scenes), "quizzes", len(bundle.Quizzes))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var quizRepo app.QuizRepository
	var sessions app.SessionRepository
	var sharedSessions *redisinfra.SessionStore
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, source, quizTTL, log)
		sharedSessions = redisinfra.NewSessionStore(redisClient, redisTTL)
		sessions = sharedSessions
	} else {
		quizRepo = memory.NewQuizRepository(source, quizTTL)
		sessions = memory.NewSessionStore()
	}

	timing := quiz.Timing{
		AdvanceDelay:    config.TTLDuration(cfg.Quiz.AdvanceDelay, quiz.DefaultTiming.AdvanceDelay),
		CompletionDelay: config.TTLDuration(cfg.Quiz.CompletionDelay, quiz.DefaultTiming.CompletionDelay),
	}

	var history app.HistoryRepository = memory.NewHistoryStore()
	if cfg.Mongo.URI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err != nil {
			return err
		}
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "tulu"
		}
		store := mongoinfra.NewHistoryStore(client.Database(dbName))
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn("chat history index", "error", err)
		}
		history = store
	}

	var model app.ChatModel
	if m, err := openaiinfra.NewChatModel(openaiinfra.Config{
		APIKey:  cfg.Tutor.APIKey,
		BaseURL: cfg.Tutor.BaseURL,
		Model:   cfg.Tutor.Model,
	}); err != nil {
		log.Warn("tutor model disabled, answering from keyword table", "reason", err)
	} else {
		model = m
		log.Info("tutor model enabled", "model", m.Model())
	}

	speech, err := tts.NewClient(tts.Config{
		APIKey:       cfg.TTS.APIKey,
		Model:        cfg.TTS.Model,
		DefaultVoice: cfg.TTS.VoiceID,
		CacheDir:     cfg.TTS.CacheDir,
	}, log)
	if err != nil {
		return err
	}

	router := transport.NewRouter(transport.Services{
		Catalog:     app.NewCatalogService(source),
		Lexicon:     app.NewLexiconService(source),
		Quizzes:     app.NewQuizService(sessions, quizRepo, log, app.WithTiming(timing)),
		Tutor:       app.NewTutorService(model, history, cfg.Tutor.HistoryLimit, log),
		Speech:      speech,
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// tutor answers and speech synthesis can be slow
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("starting tulu service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if sharedSessions != nil {
		if live, err := sharedSessions.Live(shutdownCtx); err == nil {
			log.Info("quiz sessions live across instances", "count", live)
		}
	}
	return server.Shutdown(shutdownCtx)
}
