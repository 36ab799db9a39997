package app

import (
	"context"

	"quiz-attempt-service/internal/domain"
)

// RankingService is a read-only projection over finished attempts. It never
// mutates attempt state.
type RankingService struct {
	quizzes QuizStore
	ranking RankingStore
}

func NewRankingService(quizzes QuizStore, ranking RankingStore) *RankingService {
	return &RankingService{quizzes: quizzes, ranking: ranking}
}

// TopForQuiz returns at most limit rows ordered by score descending, earlier
// finish winning ties.
func (s *RankingService) TopForQuiz(ctx context.Context, quizID string, limit int) ([]domain.RankingRow, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.RankingRow{}, nil
	}
	return s.ranking.TopForQuiz(ctx, quizID, limit)
}
