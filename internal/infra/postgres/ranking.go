package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// RankingDao reads the leaderboard with raw SQL over pgx. It implements
// app.RankingStore and never writes.
type RankingDao struct {
	pool *pgxpool.Pool
}

func NewRankingDao(pool *pgxpool.Pool) *RankingDao {
	return &RankingDao{pool: pool}
}

func (d *RankingDao) TopForQuiz(ctx context.Context, quizID string, limit int) ([]domain.RankingRow, error) {
	rows, err := d.pool.Query(ctx, `
		select nickname, score
		from attempts
		where quiz_id = $1 and finished_at is not null
		order by score desc, finished_at asc
		limit $2`,
		quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking query: %w", err)
	}
	defer rows.Close()

	result := make([]domain.RankingRow, 0, limit)
	for rows.Next() {
		var row domain.RankingRow
		if err := rows.Scan(&row.Nickname, &row.Score); err != nil {
			return nil, fmt.Errorf("ranking scan: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ranking rows: %w", err)
	}
	return result, nil
}
