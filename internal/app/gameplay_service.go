package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
)

// GameplayService assembles the question set for an attempt and orchestrates
// the submit-and-finish flow.
type GameplayService struct {
	quizzes   QuizStore
	questions QuestionStore
	attempts  AttemptStore
	now       func() time.Time

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand
}

func NewGameplayService(quizzes QuizStore, questions QuestionStore, attempts AttemptStore) *GameplayService {
	return NewGameplayServiceWithClock(quizzes, questions, attempts, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameplayServiceWithClock is test-only for deterministic timestamps and
// shuffles.
func NewGameplayServiceWithClock(quizzes QuizStore, questions QuestionStore, attempts AttemptStore, now func() time.Time, rnd *rand.Rand) *GameplayService {
	return &GameplayService{
		quizzes:   quizzes,
		questions: questions,
		attempts:  attempts,
		now:       now,
		rnd:       rnd,
	}
}

// QuestionsForAttempt returns the quiz's questions as client-facing views,
// in storage order, or in a fresh random permutation per call when the quiz
// randomises questions. Fetching is blocked once the attempt has finished;
// an expired time limit only blocks submission, not fetching.
func (s *GameplayService) QuestionsForAttempt(ctx context.Context, attemptID string) ([]domain.QuestionView, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Finished() {
		return nil, domain.ErrAttemptFinished
	}

	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.QuestionsByQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.QuestionView, len(questions))
	for i, q := range questions {
		views[i] = q.View()
	}
	if quiz.RandomiseQuestions {
		s.shuffleViews(views)
	}
	return views, nil
}

// SubmitAndFinish grades the whole answer batch and fires the attempt's
// single finish transition. Preconditions short-circuit before anything is
// persisted: the attempt must exist and be gradable, and every referenced
// question must exist and belong to the attempt's quiz. Questions the client
// never answered are simply not graded and contribute no points.
func (s *GameplayService) SubmitAndFinish(ctx context.Context, attemptID string, answers []domain.SubmittedAnswer) (domain.SubmitOutcome, error) {
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	if err := requireGradable(attempt, quiz, s.now()); err != nil {
		return domain.SubmitOutcome{}, err
	}
	// At most one answer per question; a later duplicate replaces the
	// earlier one.
	answers = dedupeAnswers(answers)

	// Resolve every referenced question before grading anything, so a bad
	// reference aborts the submission with zero writes.
	questions := make([]domain.Question, len(answers))
	for i, sub := range answers {
		q, err := s.questions.GetQuestion(ctx, sub.QuestionID)
		if err != nil {
			return domain.SubmitOutcome{}, err
		}
		if q.QuizID != attempt.QuizID {
			return domain.SubmitOutcome{}, domain.ErrQuestionNotInQuiz
		}
		questions[i] = q
	}

	now := s.now()
	total := 0
	rows := make([]domain.AttemptAnswer, len(answers))
	for i, sub := range answers {
		q := questions[i]
		correct := scoring.IsCorrect(q, sub.Answer)
		awarded := 0
		if correct {
			awarded = q.Points
		} else if quiz.NegativePointsEnabled {
			awarded = -q.Points
		}
		rows[i] = domain.AttemptAnswer{
			AttemptID:     attempt.ID,
			QuestionID:    q.ID,
			Answer:        sub.Answer,
			Correct:       correct,
			AwardedPoints: awarded,
			AnsweredAt:    now,
		}
		total += awarded
	}

	if err := s.attempts.FinishAttempt(ctx, attempt.ID, total, now, rows); err != nil {
		return domain.SubmitOutcome{}, err
	}
	return domain.SubmitOutcome{AttemptID: attempt.ID, TotalScore: total}, nil
}

func dedupeAnswers(answers []domain.SubmittedAnswer) []domain.SubmittedAnswer {
	seen := make(map[string]int, len(answers))
	out := answers[:0:0]
	for _, a := range answers {
		if i, ok := seen[a.QuestionID]; ok {
			out[i] = a
			continue
		}
		seen[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out
}

func (s *GameplayService) shuffleViews(views []domain.QuestionView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
}
