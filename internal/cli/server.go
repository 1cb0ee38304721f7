package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	filestore "trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/memory"
	pgarchive "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/provider"
	"trivia-quiz-service/internal/screen"
	transport "trivia-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	timeout := config.TTLDuration(cfg.Provider.Timeout, 10*time.Second)
	client := provider.NewClient(
		config.StringOr(cfg.Provider.BaseURL, config.DefaultBaseURL),
		cfg.Provider.Category,
		timeout,
	)
	catalog := provider.NewCatalog(
		config.StringOr(cfg.Provider.CatalogURL, config.DefaultCatalogURL),
		config.TTLDuration(cfg.Provider.CatalogTTL, time.Hour),
		timeout,
	)

	store := buildSessionStore(cfg)

	var pool *pgxpool.Pool
	var archive app.ResultArchive
	var history transport.AttemptHistory
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		resultArchive := pgarchive.NewResultArchive(pool)
		archive = resultArchive
		history = resultArchive
	}

	rules := app.Rules{
		QuestionCount: config.IntOr(cfg.Provider.Amount, config.DefaultAmount),
		TotalTime:     config.IntOr(cfg.Quiz.TotalTime, config.DefaultTotalTime),
		PassingScore:  config.IntOr(cfg.Quiz.PassingScore, config.DefaultPassingScore),
	}
	service := app.NewSessionService(client, store, archive, rules)
	if err := service.Restore(ctx); err != nil {
		log.Printf("restore persisted session: %v", err)
	}

	controller := screen.NewController(service, func() {
		log.Printf("quiz finished")
	})
	defer controller.Stop()

	handler := transport.NewHandler(service, controller, catalog, history)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildSessionStore picks the persistence backend by config presence:
// redis, then file, then in-memory.
func buildSessionStore(cfg config.Config) app.SessionStore {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	}
	if cfg.Session.File != "" {
		return filestore.NewSessionStore(cfg.Session.File)
	}
	return memory.NewSessionStore()
}
