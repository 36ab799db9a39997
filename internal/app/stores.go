package app

import (
	"context"
	"time"

	"quiz-attempt-service/internal/domain"
)

// QuizStore loads quiz configuration (from cache/backing store).
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuestionStore loads questions, answer keys included.
type QuestionStore interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
	QuestionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// AttemptStore owns attempt rows and their graded answers.
//
// FinishAttempt is the only way finished_at is ever written. It persists the
// answer batch, the final score, and the finish timestamp as one atomic unit,
// guarded by a compare-and-set on finished_at: when two submissions race for
// the same attempt, exactly one wins and the loser gets ErrAttemptFinished
// with nothing persisted.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	FinishAttempt(ctx context.Context, attemptID string, totalScore int, finishedAt time.Time, answers []domain.AttemptAnswer) error
}

// RankingStore is the read-only leaderboard projection over finished attempts.
type RankingStore interface {
	TopForQuiz(ctx context.Context, quizID string, limit int) ([]domain.RankingRow, error)
}
