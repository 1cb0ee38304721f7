package domain

import "time"

// Question is one multiple-choice question as furnished by the trivia
// provider. Prompt and answer texts may carry HTML-escaped entities;
// decode them for display only, never before comparing answers.
type Question struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Prompt           string   `json:"prompt"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
}

// Session is the full mutable state of one quiz attempt, persisted
// across restarts. Transient flags (fetch in flight, last error) live
// on the service, not here.
type Session struct {
	Username     string         `json:"username"`
	Questions    []Question     `json:"questions"`
	CurrentIndex int            `json:"currentIndex"`
	Answers      map[int]string `json:"answers"`
	TimeLeft     int            `json:"timeLeft"`
	IsFinished   bool           `json:"isFinished"`
}

// Active reports whether the session can still be played or resumed.
func (s Session) Active() bool {
	return len(s.Questions) > 0 && !s.IsFinished
}

// Clone returns a deep copy so callers can hold a snapshot without
// aliasing the live answer map.
func (s Session) Clone() Session {
	out := s
	if s.Questions != nil {
		out.Questions = append([]Question(nil), s.Questions...)
	}
	out.Answers = make(map[int]string, len(s.Answers))
	for i, a := range s.Answers {
		out.Answers[i] = a
	}
	return out
}

// SessionView is a snapshot-friendly view of a session, pushed to
// subscribers on every state change.
type SessionView struct {
	Username      string `json:"username"`
	QuestionCount int    `json:"questionCount"`
	CurrentIndex  int    `json:"currentIndex"`
	AnsweredCount int    `json:"answeredCount"`
	TimeLeft      int    `json:"timeLeft"`
	IsFinished    bool   `json:"isFinished"`
}

// Report summarizes a finished session.
type Report struct {
	CorrectCount     int  `json:"correctCount"`
	IncorrectCount   int  `json:"incorrectCount"`
	ScorePercent     int  `json:"scorePercent"`
	TimeTakenSeconds int  `json:"timeTakenSeconds"`
	Passed           bool `json:"passed"`
}

// Category is one provider question category, offered on the start
// screen.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Attempt is an archived finished quiz run.
type Attempt struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	CorrectCount     int       `json:"correctCount"`
	QuestionCount    int       `json:"questionCount"`
	ScorePercent     int       `json:"scorePercent"`
	Passed           bool      `json:"passed"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	FinishedAt       time.Time `json:"finishedAt"`
}
