package http

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"log"
	"net/http"
	"strings"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/screen"
)

// CategoryCatalog supplies the provider category list for the start
// screen. Optional.
type CategoryCatalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// AttemptHistory lists archived finished attempts for the report
// screen. Optional.
type AttemptHistory interface {
	RecentAttempts(ctx context.Context, limit int) ([]domain.Attempt, error)
}

// Handler exposes the three logical screens (start, quiz, report) as a
// JSON surface with redirect-based route guards.
type Handler struct {
	service    *app.SessionService
	controller *screen.Controller
	catalog    CategoryCatalog
	history    AttemptHistory
}

func NewHandler(service *app.SessionService, controller *screen.Controller, catalog CategoryCatalog, history AttemptHistory) *Handler {
	return &Handler{
		service:    service,
		controller: controller,
		catalog:    catalog,
		history:    history,
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleStartScreen)
	mux.HandleFunc("/start", h.handleStart)
	mux.HandleFunc("/quiz", h.handleQuizScreen)
	mux.HandleFunc("/quiz/answer", h.handleAnswer)
	mux.HandleFunc("/result", h.handleResult)
	mux.HandleFunc("/reset", h.handleReset)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

type sessionSummary struct {
	Username      string `json:"username"`
	QuestionCount int    `json:"questionCount"`
	CurrentIndex  int    `json:"currentIndex"`
	TimeLeft      int    `json:"timeLeft"`
}

type startScreen struct {
	Resumable  bool              `json:"resumable"`
	Session    *sessionSummary   `json:"session,omitempty"`
	Categories []domain.Category `json:"categories,omitempty"`
	LastError  string            `json:"lastError,omitempty"`
}

func (h *Handler) handleStartScreen(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.service.Snapshot()
	payload := startScreen{
		Resumable: snapshot.Active(),
		LastError: h.service.LastError(),
	}
	if snapshot.Active() {
		payload.Session = &sessionSummary{
			Username:      snapshot.Username,
			QuestionCount: len(snapshot.Questions),
			CurrentIndex:  snapshot.CurrentIndex,
			TimeLeft:      snapshot.TimeLeft,
		}
	}
	if h.catalog != nil {
		categories, err := h.catalog.Categories(r.Context())
		if err != nil {
			// the start screen still renders without the category list
			log.Printf("load categories: %v", err)
		} else {
			payload.Categories = categories
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

type startRequest struct {
	Name string `json:"name"`
}

type startResponse struct {
	Redirect string             `json:"redirect"`
	Session  domain.SessionView `json:"session"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, err := h.service.StartNewQuiz(r.Context(), name); err != nil {
		switch {
		case errors.Is(err, domain.ErrFetchInFlight):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrProvider):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.controller.Reset()
	h.controller.Start()
	writeJSON(w, http.StatusOK, startResponse{
		Redirect: "/quiz",
		Session:  h.service.View(),
	})
}

type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type quizScreen struct {
	Username       string   `json:"username"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	Prompt         string   `json:"prompt"`
	Choices        []choice `json:"choices"`
	QuestionNumber int      `json:"questionNumber"`
	QuestionCount  int      `json:"questionCount"`
	TimeLeft       int      `json:"timeLeft"`
	Answered       bool     `json:"answered"`
}

func (h *Handler) handleQuizScreen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.service.Snapshot()
	if snapshot.Username == "" || len(snapshot.Questions) == 0 {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if snapshot.IsFinished {
		http.Redirect(w, r, "/result", http.StatusFound)
		return
	}

	// mounting the quiz screen starts the countdown; Start is
	// idempotent so remounts never double-tick
	h.controller.Start()

	q := snapshot.Questions[snapshot.CurrentIndex]
	raw := h.controller.Choices(snapshot.CurrentIndex)
	choices := make([]choice, 0, len(raw))
	for _, value := range raw {
		// value stays provider-escaped for answer comparison; only the
		// label is decoded
		choices = append(choices, choice{Value: value, Label: html.UnescapeString(value)})
	}
	_, answered := snapshot.Answers[snapshot.CurrentIndex]

	writeJSON(w, http.StatusOK, quizScreen{
		Username:       snapshot.Username,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Prompt:         html.UnescapeString(q.Prompt),
		Choices:        choices,
		QuestionNumber: snapshot.CurrentIndex + 1,
		QuestionCount:  len(snapshot.Questions),
		TimeLeft:       snapshot.TimeLeft,
		Answered:       answered,
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.controller.SelectAnswer(req.Answer); err != nil {
		switch {
		case errors.Is(err, domain.ErrAnswerLocked):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrNoActiveSession), errors.Is(err, domain.ErrQuizFinished):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, h.service.View())
}

type reportScreen struct {
	Username string           `json:"username"`
	Report   domain.Report    `json:"report"`
	History  []domain.Attempt `json:"history,omitempty"`
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.service.Snapshot()
	if len(snapshot.Questions) == 0 {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	payload := reportScreen{
		Username: snapshot.Username,
		Report:   h.service.Report(),
	}
	if h.history != nil {
		history, err := h.history.RecentAttempts(r.Context(), 10)
		if err != nil {
			log.Printf("load attempt history: %v", err)
		} else {
			payload.History = history
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.controller.Reset()
	h.service.ResetQuiz(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
