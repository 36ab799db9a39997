// Package postgres persists quizzes, questions, attempts, and graded answers
// in Postgres through bun. The leaderboard read lives in ranking.go as a raw
// SQL query.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

// Store implements app.QuizStore, app.QuestionStore, and app.AttemptStore.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("q.id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("title ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, len(rows))
	for i, row := range rows {
		quizzes[i] = row.toDomain()
	}
	return quizzes, nil
}

func (s *Store) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("qn.id = ?", questionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) QuestionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("qn.quiz_id = ?", quizID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]domain.Question, len(rows))
	for i, row := range rows {
		questions[i] = row.toDomain()
	}
	return questions, nil
}

func (s *Store) CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	row := attemptRow{
		ID:        attempt.ID,
		QuizID:    attempt.QuizID,
		Nickname:  attempt.Nickname,
		Score:     attempt.Score,
		StartedAt: attempt.StartedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).Where("a.id = ?", attemptID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return row.toDomain(), nil
}

// FinishAttempt writes the answer batch and flips finished_at in one
// transaction. The UPDATE carries a finished_at IS NULL guard, so of two
// racing submissions only one sees rows affected; the loser rolls back with
// ErrAttemptFinished and leaves no answer rows behind.
func (s *Store) FinishAttempt(ctx context.Context, attemptID string, totalScore int, finishedAt time.Time, answers []domain.AttemptAnswer) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*attemptRow)(nil)).
			Set("score = ?", totalScore).
			Set("finished_at = ?", finishedAt).
			Where("id = ?", attemptID).
			Where("finished_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("finish attempt: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("finish attempt: %w", err)
		}
		if affected == 0 {
			exists, err := tx.NewSelect().Model((*attemptRow)(nil)).Where("id = ?", attemptID).Exists(ctx)
			if err != nil {
				return fmt.Errorf("finish attempt: %w", err)
			}
			if !exists {
				return domain.ErrAttemptNotFound
			}
			return domain.ErrAttemptFinished
		}

		if len(answers) == 0 {
			return nil
		}
		rows := make([]attemptAnswerRow, len(answers))
		for i, a := range answers {
			id := a.ID
			if id == "" {
				id = uuid.NewString()
			}
			rows[i] = attemptAnswerRow{
				ID:            id,
				AttemptID:     a.AttemptID,
				QuestionID:    a.QuestionID,
				Answer:        a.Answer,
				Correct:       a.Correct,
				AwardedPoints: a.AwardedPoints,
				AnsweredAt:    a.AnsweredAt,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt answers: %w", err)
		}
		return nil
	})
}

// SaveQuiz inserts a quiz and its questions, minting IDs where absent and
// assigning positions in input order. Used by the seed command and tests.
func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz, questions []domain.Question) (domain.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := quizToRow(quiz)
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		rows := make([]questionRow, len(questions))
		for i, q := range questions {
			id := q.ID
			if id == "" {
				id = uuid.NewString()
			}
			rows[i] = questionRow{
				ID:        id,
				QuizID:    quiz.ID,
				Type:      string(q.Type),
				Prompt:    q.Prompt,
				Points:    q.Points,
				Options:   q.Options,
				AnswerKey: q.AnswerKey,
				Position:  i,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}
