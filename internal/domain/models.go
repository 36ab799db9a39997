package domain

import (
	"encoding/json"
	"time"
)

// QuestionType discriminates the grading semantics of a question. Unknown
// values are tolerated everywhere and always grade as incorrect.
type QuestionType string

const (
	SingleChoice QuestionType = "SINGLE_CHOICE"
	MultiChoice  QuestionType = "MULTI_CHOICE"
	TrueFalse    QuestionType = "TRUE_FALSE"
	ShortAnswer  QuestionType = "SHORT_ANSWER"
	ListChoice   QuestionType = "LIST_CHOICE"
	FillBlanks   QuestionType = "FILL_BLANKS"
	Sorting      QuestionType = "SORTING"
	Matching     QuestionType = "MATCHING"
)

// Quiz is the read-only configuration an attempt runs against. The engine
// never mutates a quiz.
type Quiz struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	RandomiseQuestions    bool   `json:"randomiseQuestions"`
	RandomiseAnswers      bool   `json:"randomiseAnswers"`
	TimeLimitSeconds      int    `json:"timeLimitSeconds,omitempty"` // zero means no limit
	NegativePointsEnabled bool   `json:"negativePointsEnabled"`
}

// Question belongs to exactly one quiz and is immutable once an attempt
// references it. Options and AnswerKey carry raw JSON whose shape depends
// on Type.
type Question struct {
	ID        string          `json:"id"`
	QuizID    string          `json:"quizId"`
	Type      QuestionType    `json:"type"`
	Prompt    string          `json:"prompt"`
	Points    int             `json:"points"`
	Options   json.RawMessage `json:"options,omitempty"`
	AnswerKey json.RawMessage `json:"answerKey,omitempty"` // never exposed through QuestionView
}

// Attempt is one participant's pass through a quiz. FinishedAt is the sole
// authoritative finished flag; once set it never changes.
type Attempt struct {
	ID         string     `json:"id"`
	QuizID     string     `json:"quizId"`
	Nickname   string     `json:"nickname"`
	Score      int        `json:"score"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Finished reports whether the attempt has completed its one-way transition.
func (a Attempt) Finished() bool {
	return a.FinishedAt != nil
}

// AttemptAnswer records the graded outcome for a single question of an
// attempt. At most one exists per (attempt, question) pair and it is never
// updated once written.
type AttemptAnswer struct {
	ID            string          `json:"id"`
	AttemptID     string          `json:"attemptId"`
	QuestionID    string          `json:"questionId"`
	Answer        json.RawMessage `json:"answer"`
	Correct       bool            `json:"correct"`
	AwardedPoints int             `json:"awardedPoints"`
	AnsweredAt    time.Time       `json:"answeredAt"`
}

// SubmittedAnswer is one element of a submission batch.
type SubmittedAnswer struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

// QuestionView is the client-facing projection of a question. It
// deliberately omits the answer key.
type QuestionView struct {
	ID      string          `json:"id"`
	Type    QuestionType    `json:"type"`
	Prompt  string          `json:"prompt"`
	Points  int             `json:"points"`
	Options json.RawMessage `json:"options,omitempty"`
}

// View projects a question into its client-facing shape.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Points:  q.Points,
		Options: q.Options,
	}
}

// SubmitOutcome is the result of grading and finishing an attempt.
type SubmitOutcome struct {
	AttemptID  string `json:"attemptId"`
	TotalScore int    `json:"totalScore"`
}

// RankingRow is one leaderboard line for a quiz.
type RankingRow struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}
