package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/screen"
)

type stubProvider struct {
	questions []domain.Question
	err       error
}

func (p *stubProvider) FetchQuestions(_ context.Context, _ int) ([]domain.Question, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.questions, nil
}

func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			Category:         "General Knowledge",
			Difficulty:       "easy",
			Prompt:           fmt.Sprintf("Question %d: what&#039;s right?", i),
			CorrectAnswer:    fmt.Sprintf("right-%d", i),
			IncorrectAnswers: []string{"wrong-a", "wrong-b", "wrong-c"},
		})
	}
	return questions
}

type testEnv struct {
	server  *httptest.Server
	client  *http.Client
	service *app.SessionService
}

func newTestEnv(t *testing.T, provider app.QuestionProvider, questionCount int) *testEnv {
	t.Helper()
	rules := app.Rules{QuestionCount: questionCount, TotalTime: 60, PassingScore: 70}
	service := app.NewSessionService(provider, memory.NewSessionStore(), nil, rules)
	// huge tick and tiny advance keep HTTP tests deterministic
	controller := screen.NewControllerWithTiming(service, nil, time.Hour, 5*time.Millisecond)
	handler := NewHandler(service, controller, nil, nil)

	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Cleanup(controller.Stop)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{server: server, client: client, service: service}
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := e.client.Post(e.server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestQuizScreenRequiresSession(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, 3)

	resp := env.get(t, "/quiz")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to start screen, got %q", loc)
	}
}

func TestResultScreenRequiresQuestions(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, 3)

	resp := env.get(t, "/result")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestStartRejectsBlankName(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(3)}, 3)

	resp := env.post(t, "/start", map[string]string{"name": "   "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", resp.StatusCode)
	}
}

func TestStartSurfacesProviderFailure(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("%w: connection refused", domain.ErrProvider)}
	env := newTestEnv(t, provider, 3)

	resp := env.post(t, "/start", map[string]string{"name": "Ann"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	if errBody["error"] == "" {
		t.Fatalf("expected error message in body")
	}

	// the start screen reports the failure and no resumable session
	var start startScreen
	decodeBody(t, env.get(t, "/"), &start)
	if start.Resumable || start.LastError == "" {
		t.Fatalf("unexpected start screen: %+v", start)
	}
}

func TestStartAndQuizScreen(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(3)}, 3)

	var started startResponse
	decodeBody(t, env.post(t, "/start", map[string]string{"name": "  Ann  "}), &started)
	if started.Redirect != "/quiz" {
		t.Fatalf("expected redirect to /quiz, got %q", started.Redirect)
	}
	if started.Session.Username != "Ann" {
		t.Fatalf("expected trimmed name, got %q", started.Session.Username)
	}

	var quiz quizScreen
	decodeBody(t, env.get(t, "/quiz"), &quiz)
	if quiz.QuestionNumber != 1 || quiz.QuestionCount != 3 {
		t.Fatalf("unexpected progress: %+v", quiz)
	}
	if len(quiz.Choices) != 4 {
		t.Fatalf("expected 4 choices, got %d", len(quiz.Choices))
	}
	if quiz.Prompt != "Question 0: what's right?" {
		t.Fatalf("expected decoded prompt, got %q", quiz.Prompt)
	}
	// labels are decoded, values stay raw for comparison
	for _, c := range quiz.Choices {
		if c.Value == "" || c.Label == "" {
			t.Fatalf("incomplete choice: %+v", c)
		}
	}

	// the choice order is stable across renders
	var again quizScreen
	decodeBody(t, env.get(t, "/quiz"), &again)
	for i := range quiz.Choices {
		if quiz.Choices[i] != again.Choices[i] {
			t.Fatalf("choice order changed between renders")
		}
	}
}

func TestAnswerDebounce(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(3)}, 3)
	decodeBody(t, env.post(t, "/start", map[string]string{"name": "Ann"}), &startResponse{})

	resp := env.post(t, "/quiz/answer", map[string]string{"answer": "right-0"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for first answer, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/quiz/answer", map[string]string{"answer": "wrong-a"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for second pick, got %d", resp.StatusCode)
	}
}

func TestFinishedQuizRedirectsToResult(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(1)}, 1)
	decodeBody(t, env.post(t, "/start", map[string]string{"name": "Ann"}), &startResponse{})

	resp := env.post(t, "/quiz/answer", map[string]string{"answer": "right-0"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if env.service.Snapshot().IsFinished {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !env.service.Snapshot().IsFinished {
		t.Fatalf("quiz never finished")
	}

	resp = env.get(t, "/quiz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/result" {
		t.Fatalf("expected redirect to /result, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	var report reportScreen
	decodeBody(t, env.get(t, "/result"), &report)
	if report.Report.CorrectCount != 1 || report.Report.ScorePercent != 100 || !report.Report.Passed {
		t.Fatalf("unexpected report: %+v", report.Report)
	}
}

func TestResetClearsSession(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(2)}, 2)
	decodeBody(t, env.post(t, "/start", map[string]string{"name": "Ann"}), &startResponse{})

	resp := env.post(t, "/reset", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	var start startScreen
	decodeBody(t, env.get(t, "/"), &start)
	if start.Resumable {
		t.Fatalf("expected no resumable session after reset")
	}
}

func TestStartScreenShowsResumableSession(t *testing.T) {
	env := newTestEnv(t, &stubProvider{questions: sampleQuestions(3)}, 3)
	decodeBody(t, env.post(t, "/start", map[string]string{"name": "Ann"}), &startResponse{})

	var start startScreen
	decodeBody(t, env.get(t, "/"), &start)
	if !start.Resumable || start.Session == nil {
		t.Fatalf("expected resumable session, got %+v", start)
	}
	if start.Session.Username != "Ann" || start.Session.QuestionCount != 3 {
		t.Fatalf("unexpected session summary: %+v", start.Session)
	}
}
