// Package http exposes the play API over JSON HTTP.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

const defaultRankingLimit = 10

// Handler wires the play use cases into HTTP routes.
type Handler struct {
	attempts *app.AttemptService
	gameplay *app.GameplayService
	ranking  *app.RankingService
	log      *zap.Logger

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand
}

func NewHandler(attempts *app.AttemptService, gameplay *app.GameplayService, ranking *app.RankingService, log *zap.Logger) *Handler {
	return &Handler{
		attempts: attempts,
		gameplay: gameplay,
		ranking:  ranking,
		log:      log,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Register mounts all play routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quizzes", h.listQuizzes)
	mux.HandleFunc("POST /api/quizzes/{quizID}/attempts", h.startAttempt)
	mux.HandleFunc("GET /api/quizzes/{quizID}/ranking", h.getRanking)
	mux.HandleFunc("GET /api/attempts/{attemptID}", h.getAttempt)
	mux.HandleFunc("GET /api/attempts/{attemptID}/questions", h.getQuestions)
	mux.HandleFunc("POST /api/attempts/{attemptID}/answers", h.submitAnswers)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.attempts.ListQuizzes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

type startAttemptRequest struct {
	Nickname string `json:"nickname"`
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	// Non-blank enforcement lives here, not in the core.
	if strings.TrimSpace(req.Nickname) == "" {
		h.writeBadRequest(w, "nickname is required")
		return
	}

	attempt, err := h.attempts.Start(r.Context(), r.PathValue("quizID"), req.Nickname)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.attempts.Get(r.Context(), r.PathValue("attemptID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

type questionResponse struct {
	ID      string              `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Points  int                 `json:"points"`
	Options []string            `json:"options,omitempty"`
}

func (h *Handler) getQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attemptID := r.PathValue("attemptID")

	attempt, err := h.attempts.Get(ctx, attemptID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	quiz, err := h.attempts.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views, err := h.gameplay.QuestionsForAttempt(ctx, attemptID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]questionResponse, len(views))
	for i, v := range views {
		out[i] = questionResponse{
			ID:      v.ID,
			Type:    v.Type,
			Prompt:  v.Prompt,
			Points:  v.Points,
			Options: h.optionsForPlay(v.Options, quiz.RandomiseAnswers),
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

type submitAnswersRequest struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

func (h *Handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	// Blank answers are rejected at the boundary; the core tolerates
	// partial answer sets and would silently skip them instead.
	for _, a := range req.Answers {
		if isBlankPayload(a.Answer) {
			h.writeBadRequest(w, "you must answer every question")
			return
		}
	}

	outcome, err := h.gameplay.SubmitAndFinish(r.Context(), r.PathValue("attemptID"), req.Answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) getRanking(w http.ResponseWriter, r *http.Request) {
	limit := defaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	rows, err := h.ranking.TopForQuiz(r.Context(), r.PathValue("quizID"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func isBlankPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAttemptFinished),
		errors.Is(err, domain.ErrTimeLimitExceeded):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuestionNotInQuiz):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("write response", zap.Error(err))
	}
}
