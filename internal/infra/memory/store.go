// Package memory provides in-memory store implementations used by tests and
// the no-database demo mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

// Store keeps quizzes, questions, attempts, and graded answers in process
// memory. It implements app.QuizStore, app.QuestionStore, app.AttemptStore,
// and app.RankingStore.
type Store struct {
	mu               sync.RWMutex
	quizzes          map[string]domain.Quiz
	quizOrder        []string
	questionsByQuiz  map[string][]domain.Question // storage order
	questionsByID    map[string]domain.Question
	attempts         map[string]domain.Attempt
	answersByAttempt map[string][]domain.AttemptAnswer
}

func NewStore() *Store {
	return &Store{
		quizzes:          make(map[string]domain.Quiz),
		questionsByQuiz:  make(map[string][]domain.Question),
		questionsByID:    make(map[string]domain.Question),
		attempts:         make(map[string]domain.Attempt),
		answersByAttempt: make(map[string][]domain.AttemptAnswer),
	}
}

// AddQuiz registers a quiz and its questions, minting IDs where absent.
// Question order is preserved as storage order.
func (s *Store) AddQuiz(quiz domain.Quiz, questions []domain.Question) domain.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	s.quizzes[quiz.ID] = quiz
	s.quizOrder = append(s.quizOrder, quiz.ID)

	stored := make([]domain.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.QuizID = quiz.ID
		stored[i] = q
		s.questionsByID[q.ID] = q
	}
	s.questionsByQuiz[quiz.ID] = stored
	return quiz
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		out = append(out, s.quizzes[id])
	}
	return out, nil
}

func (s *Store) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questionsByID[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) QuestionsByQuiz(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := s.questionsByQuiz[quizID]
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, nil
}

func (s *Store) CreateAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	s.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (s *Store) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// FinishAttempt applies the score, the finish timestamp, and the answer batch
// under one lock. The finished_at check and write happen atomically, so only
// one of two racing submissions can succeed.
func (s *Store) FinishAttempt(_ context.Context, attemptID string, totalScore int, finishedAt time.Time, answers []domain.AttemptAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if attempt.Finished() {
		return domain.ErrAttemptFinished
	}

	for _, row := range answers {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		s.answersByAttempt[attemptID] = append(s.answersByAttempt[attemptID], row)
	}
	attempt.Score = totalScore
	ts := finishedAt
	attempt.FinishedAt = &ts
	s.attempts[attemptID] = attempt
	return nil
}

// AnswersByAttempt returns the graded rows of an attempt; handy for tests
// asserting zero writes on rejected submissions.
func (s *Store) AnswersByAttempt(attemptID string) []domain.AttemptAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.answersByAttempt[attemptID]
	out := make([]domain.AttemptAnswer, len(rows))
	copy(out, rows)
	return out
}

func (s *Store) TopForQuiz(_ context.Context, quizID string, limit int) ([]domain.RankingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	finished := make([]domain.Attempt, 0)
	for _, attempt := range s.attempts {
		if attempt.QuizID == quizID && attempt.Finished() {
			finished = append(finished, attempt)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		if finished[i].Score != finished[j].Score {
			return finished[i].Score > finished[j].Score
		}
		return finished[i].FinishedAt.Before(*finished[j].FinishedAt)
	})

	if limit < len(finished) {
		finished = finished[:limit]
	}
	rows := make([]domain.RankingRow, len(finished))
	for i, attempt := range finished {
		rows[i] = domain.RankingRow{Nickname: attempt.Nickname, Score: attempt.Score}
	}
	return rows, nil
}
