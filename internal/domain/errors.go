package domain

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates the referenced attempt does not exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptFinished rejects operations on an attempt that already
	// completed its one-way finish transition.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrTimeLimitExceeded rejects a submission made after the quiz deadline.
	ErrTimeLimitExceeded = errors.New("time limit exceeded")
	// ErrQuestionNotInQuiz rejects answers for questions of another quiz.
	ErrQuestionNotInQuiz = errors.New("question does not belong to quiz")
)
