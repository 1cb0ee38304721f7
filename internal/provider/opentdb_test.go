package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

const sampleBody = `{
	"response_code": 0,
	"results": [
		{
			"category": "Science &amp; Nature",
			"type": "multiple",
			"difficulty": "medium",
			"question": "What is the powerhouse of the cell?",
			"correct_answer": "Mitochondria",
			"incorrect_answers": ["Nucleus", "Ribosome", "Golgi apparatus"]
		},
		{
			"category": "History",
			"type": "multiple",
			"difficulty": "easy",
			"question": "Who wasn&#039;t a Roman emperor?",
			"correct_answer": "Cicero",
			"incorrect_answers": ["Nero", "Trajan", "Hadrian"]
		}
	]
}`

func TestFetchQuestionsSuccess(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"amount":   r.URL.Query().Get("amount"),
			"type":     r.URL.Query().Get("type"),
			"category": r.URL.Query().Get("category"),
		}
		w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, 9, 5*time.Second)
	questions, err := client.FetchQuestions(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotQuery["amount"] != "2" || gotQuery["type"] != "multiple" || gotQuery["category"] != "9" {
		t.Fatalf("unexpected query params: %+v", gotQuery)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	// payload passes through verbatim, entities still escaped
	if questions[0].Category != "Science &amp; Nature" || questions[0].CorrectAnswer != "Mitochondria" {
		t.Fatalf("unexpected first question: %+v", questions[0])
	}
	if questions[1].Prompt != "Who wasn&#039;t a Roman emperor?" {
		t.Fatalf("prompt must not be decoded: %q", questions[1].Prompt)
	}
	if len(questions[0].IncorrectAnswers) != 3 {
		t.Fatalf("expected 3 incorrect answers, got %d", len(questions[0].IncorrectAnswers))
	}
}

func TestFetchQuestionsShortResultPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code": 0, "results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 5*time.Second)
	questions, err := client.FetchQuestions(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected empty pass-through, got %d", len(questions))
	}
}

func TestFetchQuestionsProviderCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code": 1, "results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 5*time.Second)
	_, err := client.FetchQuestions(context.Background(), 50)
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider for response_code 1, got %v", err)
	}
}

func TestFetchQuestionsBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 5*time.Second)
	if _, err := client.FetchQuestions(context.Background(), 10); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider for bad payload, got %v", err)
	}
}

func TestFetchQuestionsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 5*time.Second)
	if _, err := client.FetchQuestions(context.Background(), 10); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider for HTTP 500, got %v", err)
	}

	server.Close()
	if _, err := client.FetchQuestions(context.Background(), 10); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider for refused connection, got %v", err)
	}
}
