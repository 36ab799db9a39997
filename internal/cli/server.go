package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/infra/postgres"
	rediscache "quiz-attempt-service/internal/infra/redis"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
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

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

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

	var (
		quizzes   app.QuizStore
		questions app.QuestionStore
		attempts  app.AttemptStore
		ranking   app.RankingStore
	)
	quizTTL := config.TTLDuration(cfg.Cache.QuizTTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := postgres.NewStore(db)
		quizzes = store
		questions = store
		attempts = store
		ranking = postgres.NewRankingDao(pool)
	} else {
		// Demo mode: serve a built-in quiz from memory so the server is
		// playable without any backing services.
		store := memory.NewStore()
		seedDemoQuiz(store)
		quizzes = store
		questions = store
		attempts = store
		ranking = store
		logger.Info("no postgres configured, running with in-memory demo data")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizzes = rediscache.NewQuizCache(client, quizzes, quizTTL)
	} else {
		quizzes = memory.NewCachedQuizStore(quizzes, quizTTL)
	}

	attemptSvc := app.NewAttemptService(quizzes, attempts)
	gameplaySvc := app.NewGameplayService(quizzes, questions, attempts)
	rankingSvc := app.NewRankingService(quizzes, ranking)
	handler := transport.NewHandler(attemptSvc, gameplaySvc, rankingSvc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz attempt service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoQuiz loads a small quiz touching several question types; swap in
// the seed command with a Postgres URL for real data.
func seedDemoQuiz(store *memory.Store) {
	store.AddQuiz(domain.Quiz{
		Title:            "General knowledge",
		Description:      "A short demo quiz",
		RandomiseAnswers: true,
	}, []domain.Question{
		{
			Type:      domain.SingleChoice,
			Prompt:    "What is the capital of France?",
			Points:    2,
			Options:   json.RawMessage(`["Paris","London","Berlin","Madrid"]`),
			AnswerKey: json.RawMessage(`{"value":"Paris"}`),
		},
		{
			Type:      domain.TrueFalse,
			Prompt:    "The Pacific is the largest ocean.",
			Points:    1,
			AnswerKey: json.RawMessage(`{"value":true}`),
		},
		{
			Type:      domain.MultiChoice,
			Prompt:    "Which of these are primary colours?",
			Points:    3,
			Options:   json.RawMessage(`["Red","Green","Blue","Yellow"]`),
			AnswerKey: json.RawMessage(`{"values":["Red","Blue","Yellow"]}`),
		},
		{
			Type:      domain.ShortAnswer,
			Prompt:    "Which planet is known as the red planet?",
			Points:    2,
			AnswerKey: json.RawMessage(`{"value":"Mars"}`),
		},
	})
}
