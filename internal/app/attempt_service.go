package app

import (
	"context"
	"strings"
	"time"

	"quiz-attempt-service/internal/domain"
)

// AttemptService owns the attempt lifecycle: creation and the guards around
// the single InProgress -> Finished transition. The transition itself is
// fired by GameplayService through AttemptStore.FinishAttempt.
type AttemptService struct {
	quizzes  QuizStore
	attempts AttemptStore
	now      func() time.Time
}

func NewAttemptService(quizzes QuizStore, attempts AttemptStore) *AttemptService {
	return NewAttemptServiceWithClock(quizzes, attempts, time.Now)
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(quizzes QuizStore, attempts AttemptStore, now func() time.Time) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: now}
}

// Start creates a fresh attempt for the quiz. The nickname is trimmed;
// non-blank enforcement belongs to the caller.
func (s *AttemptService) Start(ctx context.Context, quizID, nickname string) (domain.Attempt, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Attempt{}, err
	}
	return s.attempts.CreateAttempt(ctx, domain.Attempt{
		QuizID:    quizID,
		Nickname:  strings.TrimSpace(nickname),
		Score:     0,
		StartedAt: s.now(),
	})
}

// Get returns a single attempt for result pages.
func (s *AttemptService) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.attempts.GetAttempt(ctx, attemptID)
}

// GetQuiz returns the quiz configuration for play views.
func (s *AttemptService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// ListQuizzes exposes the playable quiz catalogue.
func (s *AttemptService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// requireGradable rejects attempts that already finished or whose quiz
// deadline has passed. The deadline is checked against wall-clock time at
// call time; there is no server-side timer that auto-finishes attempts.
func requireGradable(attempt domain.Attempt, quiz domain.Quiz, now time.Time) error {
	if attempt.Finished() {
		return domain.ErrAttemptFinished
	}
	if quiz.TimeLimitSeconds > 0 {
		deadline := attempt.StartedAt.Add(time.Duration(quiz.TimeLimitSeconds) * time.Second)
		if now.After(deadline) {
			return domain.ErrTimeLimitExceeded
		}
	}
	return nil
}
