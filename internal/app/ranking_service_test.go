package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
)

func TestRankingUnknownQuiz(t *testing.T) {
	store := memory.NewStore()
	ranking := app.NewRankingService(store, store)

	_, err := ranking.TopForQuiz(context.Background(), "no-such-quiz", 10)
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestRankingNonPositiveLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quiz := store.AddQuiz(domain.Quiz{Title: "Capitals"}, nil)

	attempt, _ := store.CreateAttempt(ctx, domain.Attempt{QuizID: quiz.ID, Nickname: "alice", StartedAt: time.Now()})
	if err := store.FinishAttempt(ctx, attempt.ID, 5, time.Now(), nil); err != nil {
		t.Fatalf("finish: %v", err)
	}

	ranking := app.NewRankingService(store, store)
	rows, err := ranking.TopForQuiz(ctx, quiz.ID, 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result for limit 0, got %+v", rows)
	}
}
