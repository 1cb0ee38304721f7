package app

import (
	"context"
	"log"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// QuestionProvider supplies one batch of questions per new quiz.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, count int) ([]domain.Question, error)
}

// SessionStore persists the session snapshot between restarts
// (in-memory, JSON file, Redis, etc).
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, bool, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// ResultArchive records finished attempts. Optional; pass nil to
// disable archiving.
type ResultArchive interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) error
}

// Rules carries the configured quiz parameters.
type Rules struct {
	QuestionCount int
	TotalTime     int
	PassingScore  int
}

// SessionService owns the single quiz session and its state machine:
// Idle -> Loading -> InProgress -> Finished, terminal until reset.
// Every mutation writes the session through to the store.
type SessionService struct {
	provider QuestionProvider
	store    SessionStore
	archive  ResultArchive
	rules    Rules
	now      func() time.Time

	mu          sync.Mutex
	session     domain.Session
	loading     bool
	lastError   string
	subscribers map[chan domain.SessionView]struct{}
}

func NewSessionService(provider QuestionProvider, store SessionStore, archive ResultArchive, rules Rules) *SessionService {
	return &SessionService{
		provider:    provider,
		store:       store,
		archive:     archive,
		rules:       rules,
		now:         time.Now,
		session:     emptySession(rules),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

// NewSessionServiceWithClock is test-only for deterministic timestamps.
func NewSessionServiceWithClock(provider QuestionProvider, store SessionStore, archive ResultArchive, rules Rules, now func() time.Time) *SessionService {
	svc := NewSessionService(provider, store, archive, rules)
	svc.now = now
	return svc
}

func emptySession(rules Rules) domain.Session {
	return domain.Session{
		Answers:  make(map[int]string),
		TimeLeft: rules.TotalTime,
	}
}

// Restore rehydrates a previously persisted session, if one exists.
// Call once at startup, before serving.
func (s *SessionService) Restore(ctx context.Context) error {
	session, ok, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if session.Answers == nil {
		session.Answers = make(map[int]string)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.broadcastLocked()
	return nil
}

// StartNewQuiz fetches a fresh question batch and replaces the session.
// On provider failure the previous session is left untouched, so a
// failed restart keeps any prior attempt resumable.
func (s *SessionService) StartNewQuiz(ctx context.Context, name string) (domain.Session, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return domain.Session{}, domain.ErrFetchInFlight
	}
	s.loading = true
	s.lastError = ""
	count := s.rules.QuestionCount
	s.mu.Unlock()

	questions, err := s.provider.FetchQuestions(ctx, count)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
		return domain.Session{}, err
	}

	s.session = domain.Session{
		Username:  name,
		Questions: questions,
		Answers:   make(map[int]string),
		TimeLeft:  s.rules.TotalTime,
	}
	s.persistLocked(ctx)
	s.broadcastLocked()
	return s.session.Clone(), nil
}

// AnswerQuestion records the answer for the current question. Last
// write wins; the index does not advance and correctness is not
// checked here.
func (s *SessionService) AnswerQuestion(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.session.Questions) == 0 {
		return domain.ErrNoActiveSession
	}
	if s.session.IsFinished {
		return domain.ErrQuizFinished
	}
	s.session.Answers[s.session.CurrentIndex] = answer
	s.persistLocked(context.Background())
	s.broadcastLocked()
	return nil
}

// NextQuestion advances the progress pointer, finishing the quiz when
// the current question is the last one.
func (s *SessionService) NextQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.session.Questions) == 0 {
		return domain.ErrNoActiveSession
	}
	if s.session.IsFinished {
		return domain.ErrQuizFinished
	}
	if s.session.CurrentIndex < len(s.session.Questions)-1 {
		s.session.CurrentIndex++
		s.persistLocked(context.Background())
		s.broadcastLocked()
		return nil
	}
	s.finishLocked()
	return nil
}

// TickTimer consumes one second of the countdown. The quiz finishes on
// the tick that observes zero, not the tick that reaches it; TimeLeft
// never goes negative.
func (s *SessionService) TickTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.IsFinished || len(s.session.Questions) == 0 {
		return
	}
	if s.session.TimeLeft > 0 {
		s.session.TimeLeft--
		s.persistLocked(context.Background())
		s.broadcastLocked()
		return
	}
	s.finishLocked()
}

// FinishQuiz marks the session terminal. Idempotent; answers, index and
// remaining time are untouched.
func (s *SessionService) FinishQuiz() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.session.Questions) == 0 {
		return
	}
	s.finishLocked()
}

func (s *SessionService) finishLocked() {
	if s.session.IsFinished {
		return
	}
	s.session.IsFinished = true
	s.persistLocked(context.Background())

	if s.archive != nil {
		report := BuildReport(s.session, s.rules)
		attempt := domain.Attempt{
			ID:               uuid.NewString(),
			Username:         s.session.Username,
			CorrectCount:     report.CorrectCount,
			QuestionCount:    len(s.session.Questions),
			ScorePercent:     report.ScorePercent,
			Passed:           report.Passed,
			TimeTakenSeconds: report.TimeTakenSeconds,
			FinishedAt:       s.now(),
		}
		archive := s.archive
		go func() {
			if err := archive.SaveAttempt(context.Background(), attempt); err != nil {
				log.Printf("archive attempt: %v", err)
			}
		}()
	}
	s.broadcastLocked()
}

// ResetQuiz clears all session state and erases the persisted record.
// Always succeeds and is callable from any state.
func (s *SessionService) ResetQuiz(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = emptySession(s.rules)
	s.lastError = ""
	if err := s.store.Clear(ctx); err != nil {
		log.Printf("clear persisted session: %v", err)
	}
	s.broadcastLocked()
}

// Snapshot returns a deep copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Report derives the score card from the current session state.
func (s *SessionService) Report() domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildReport(s.session, s.rules)
}

// Loading reports whether a question fetch is outstanding. The surface
// uses it to disable the submit control.
func (s *SessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message from the most recent failed start, or
// the empty string.
func (s *SessionService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// View returns the subscriber-facing snapshot of the session.
func (s *SessionService) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel receiving a view on every state change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *SessionService) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.viewLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *SessionService) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.session); err != nil {
		log.Printf("persist session: %v", err)
	}
}

func (s *SessionService) broadcastLocked() {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// drop the stale update so a slow reader never blocks the broadcast
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *SessionService) viewLocked() domain.SessionView {
	return domain.SessionView{
		Username:      s.session.Username,
		QuestionCount: len(s.session.Questions),
		CurrentIndex:  s.session.CurrentIndex,
		AnsweredCount: len(s.session.Answers),
		TimeLeft:      s.session.TimeLeft,
		IsFinished:    s.session.IsFinished,
	}
}
