package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	"quiz-attempt-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID                    string `bun:"id,pk"`
	Title                 string `bun:"title,notnull"`
	Description           string `bun:"description"`
	RandomiseQuestions    bool   `bun:"randomise_questions,notnull"`
	RandomiseAnswers      bool   `bun:"randomise_answers,notnull"`
	TimeLimitSeconds      int    `bun:"time_limit_seconds,nullzero"`
	NegativePointsEnabled bool   `bun:"negative_points_enabled,notnull"`
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:                    r.ID,
		Title:                 r.Title,
		Description:           r.Description,
		RandomiseQuestions:    r.RandomiseQuestions,
		RandomiseAnswers:      r.RandomiseAnswers,
		TimeLimitSeconds:      r.TimeLimitSeconds,
		NegativePointsEnabled: r.NegativePointsEnabled,
	}
}

func quizToRow(q domain.Quiz) quizRow {
	return quizRow{
		ID:                    q.ID,
		Title:                 q.Title,
		Description:           q.Description,
		RandomiseQuestions:    q.RandomiseQuestions,
		RandomiseAnswers:      q.RandomiseAnswers,
		TimeLimitSeconds:      q.TimeLimitSeconds,
		NegativePointsEnabled: q.NegativePointsEnabled,
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID        string          `bun:"id,pk"`
	QuizID    string          `bun:"quiz_id,notnull"`
	Type      string          `bun:"type,notnull"`
	Prompt    string          `bun:"prompt,notnull"`
	Points    int             `bun:"points,notnull"`
	Options   json.RawMessage `bun:"options,type:jsonb,nullzero"`
	AnswerKey json.RawMessage `bun:"answer_key,type:jsonb,notnull"`
	Position  int             `bun:"position,notnull"` // storage order within the quiz
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:        r.ID,
		QuizID:    r.QuizID,
		Type:      domain.QuestionType(r.Type),
		Prompt:    r.Prompt,
		Points:    r.Points,
		Options:   r.Options,
		AnswerKey: r.AnswerKey,
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID         string     `bun:"id,pk"`
	QuizID     string     `bun:"quiz_id,notnull"`
	Nickname   string     `bun:"nickname,notnull"`
	Score      int        `bun:"score,notnull"`
	StartedAt  time.Time  `bun:"started_at,notnull"`
	FinishedAt *time.Time `bun:"finished_at"`
}

func (r attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:         r.ID,
		QuizID:     r.QuizID,
		Nickname:   r.Nickname,
		Score:      r.Score,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

type attemptAnswerRow struct {
	bun.BaseModel `bun:"table:attempt_answers,alias:aa"`

	ID            string          `bun:"id,pk"`
	AttemptID     string          `bun:"attempt_id,notnull"`
	QuestionID    string          `bun:"question_id,notnull"`
	Answer        json.RawMessage `bun:"answer,type:jsonb,notnull"`
	Correct       bool            `bun:"is_correct,notnull"`
	AwardedPoints int             `bun:"awarded_points,notnull"`
	AnsweredAt    time.Time       `bun:"answered_at,notnull"`
}
