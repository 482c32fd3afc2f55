package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/config"
	"quizhub-service/internal/infra/genai"
	"quizhub-service/internal/infra/memory"
	"quizhub-service/internal/infra/postgres"
	redisinfra "quizhub-service/internal/infra/redis"
	"quizhub-service/internal/logging"
	transport "quizhub-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz platform server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(cfg)
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Stores: Postgres when configured, otherwise in-memory for local runs.
	var quizStore app.QuizStore
	var attemptStore app.AttemptStore
	var userStore app.UserStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store := postgres.NewStore(pool)
		quizStore, attemptStore, userStore = store, store, store
	} else {
		log.Warn("no postgres url configured, using in-memory store")
		store := memory.NewStore()
		quizStore, attemptStore, userStore = store, store, store
	}

	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		quizStore = redisinfra.NewQuizCache(quizStore, redisClient, quizTTL)
	}

	feed := app.NewStatsFeed()
	quizService := app.NewQuizService(quizStore, log)
	scorer := app.NewScorer(quizStore, attemptStore, feed, log)
	aggregator := app.NewAggregator(quizStore, attemptStore, log)
	userService := app.NewUserService(userStore)

	var generator *app.Generator
	if cfg.Generator.BaseURL != "" {
		completer := genai.NewClient(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model)
		generator = app.NewGenerator(completer, quizService, log)
	} else {
		generator = app.NewGenerator(unconfiguredCompleter{}, quizService, log)
	}

	api := transport.NewAPI(quizService, scorer, aggregator, generator, userService, log)
	statsHandler := transport.NewStatsHandler(quizService, feed, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, statsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz platform server", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
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
	return server.Shutdown(shutdownCtx)
}

var errGeneratorUnconfigured = errors.New("quiz generator not configured")

// unconfiguredCompleter keeps the generate endpoint wired when no generator
// service is configured; requests fail cleanly instead of panicking.
type unconfiguredCompleter struct{}

func (unconfiguredCompleter) Complete(context.Context, string) (string, error) {
	return "", errGeneratorUnconfigured
}
