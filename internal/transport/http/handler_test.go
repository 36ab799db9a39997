package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
)

type testEnv struct {
	store  *memory.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	attempts := app.NewAttemptService(store, store)
	gameplay := app.NewGameplayService(store, store, store)
	ranking := app.NewRankingService(store, store)
	handler := NewHandler(attempts, gameplay, ranking, zap.NewNop())

	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testEnv{store: store, server: server}
}

func (e *testEnv) seedQuiz(quiz domain.Quiz, questions []domain.Question) (domain.Quiz, []domain.Question) {
	saved := e.store.AddQuiz(quiz, questions)
	stored, _ := e.store.QuestionsByQuiz(context.Background(), saved.ID)
	return saved, stored
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Type:      domain.SingleChoice,
			Prompt:    "Capital of France?",
			Points:    3,
			Options:   json.RawMessage(`["Paris","London","Madrid"]`),
			AnswerKey: json.RawMessage(`{"value":"Paris"}`),
		},
		{
			Type:      domain.TrueFalse,
			Prompt:    "The sky is green.",
			Points:    2,
			AnswerKey: json.RawMessage(`{"value":false}`),
		},
	}
}

func TestStartAttempt(t *testing.T) {
	env := newTestEnv(t)
	quiz, _ := env.seedQuiz(domain.Quiz{Title: "Capitals"}, sampleQuestions())

	resp := env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "  alice "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	attempt := decode[domain.Attempt](t, resp)
	if attempt.Nickname != "alice" || attempt.QuizID != quiz.ID {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
}

func TestStartAttemptValidation(t *testing.T) {
	env := newTestEnv(t)
	quiz, _ := env.seedQuiz(domain.Quiz{Title: "Capitals"}, nil)

	resp := env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank nickname, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.post(t, "/api/quizzes/no-such-quiz/attempts", map[string]string{"nickname": "alice"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestQuestionsEndpointHidesAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	quiz, _ := env.seedQuiz(domain.Quiz{Title: "Capitals"}, sampleQuestions())

	attempt := decode[domain.Attempt](t, env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "alice"}))

	resp := env.get(t, "/api/attempts/"+attempt.ID+"/questions")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	questions := decode[[]questionResponse](t, resp)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Options == nil {
		t.Fatalf("expected parsed options, got %+v", questions[0])
	}
}

func TestSubmitFlow(t *testing.T) {
	env := newTestEnv(t)
	quiz, questions := env.seedQuiz(domain.Quiz{Title: "Capitals"}, sampleQuestions())

	attempt := decode[domain.Attempt](t, env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "alice"}))

	body := map[string]any{
		"answers": []map[string]any{
			{"questionId": questions[0].ID, "answer": map[string]any{"value": "Paris"}},
			{"questionId": questions[1].ID, "answer": map[string]any{"value": true}},
		},
	}
	resp := env.post(t, "/api/attempts/"+attempt.ID+"/answers", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	outcome := decode[domain.SubmitOutcome](t, resp)
	if outcome.TotalScore != 3 {
		t.Fatalf("expected total 3, got %d", outcome.TotalScore)
	}

	// Second submission conflicts.
	resp = env.post(t, "/api/attempts/"+attempt.ID+"/answers", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on resubmit, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The finished attempt can no longer fetch questions.
	resp = env.get(t, "/api/attempts/"+attempt.ID+"/questions")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 fetching finished attempt, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubmitRejectsBlankAnswer(t *testing.T) {
	env := newTestEnv(t)
	quiz, questions := env.seedQuiz(domain.Quiz{Title: "Capitals"}, sampleQuestions())
	attempt := decode[domain.Attempt](t, env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "alice"}))

	body := map[string]any{
		"answers": []map[string]any{
			{"questionId": questions[0].ID, "answer": nil},
		},
	}
	resp := env.post(t, "/api/attempts/"+attempt.ID+"/answers", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank answer, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if rows := env.store.AnswersByAttempt(attempt.ID); len(rows) != 0 {
		t.Fatalf("blank answer must not reach the core, got %d rows", len(rows))
	}
}

func TestSubmitForeignQuestionIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	quiz, _ := env.seedQuiz(domain.Quiz{Title: "Capitals"}, sampleQuestions())
	_, foreign := env.seedQuiz(domain.Quiz{Title: "Rivers"}, sampleQuestions())
	attempt := decode[domain.Attempt](t, env.post(t, "/api/quizzes/"+quiz.ID+"/attempts", map[string]string{"nickname": "alice"}))

	body := map[string]any{
		"answers": []map[string]any{
			{"questionId": foreign[0].ID, "answer": map[string]any{"value": "Paris"}},
		},
	}
	resp := env.post(t, "/api/attempts/"+attempt.ID+"/answers", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for foreign question, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRankingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	quiz, _ := env.seedQuiz(domain.Quiz{Title: "Capitals"}, nil)

	base := time.Now()
	seedFinished := func(nickname string, score int, at time.Time) {
		attempt, _ := env.store.CreateAttempt(context.Background(), domain.Attempt{QuizID: quiz.ID, Nickname: nickname, StartedAt: base})
		if err := env.store.FinishAttempt(context.Background(), attempt.ID, score, at, nil); err != nil {
			t.Fatalf("finish %s: %v", nickname, err)
		}
	}
	seedFinished("bronze", 5, base.Add(time.Minute))
	seedFinished("gold", 20, base.Add(2*time.Minute))
	seedFinished("silver", 10, base.Add(3*time.Minute))

	resp := env.get(t, "/api/quizzes/"+quiz.ID+"/ranking?limit=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	rows := decode[[]domain.RankingRow](t, resp)
	if len(rows) != 2 || rows[0].Nickname != "gold" || rows[1].Nickname != "silver" {
		t.Fatalf("unexpected ranking %+v", rows)
	}

	resp = env.get(t, "/api/quizzes/"+quiz.ID+"/ranking?limit=zero")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
