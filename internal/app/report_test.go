package app_test

import (
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestReportSevenOfTen(t *testing.T) {
	questions := sampleQuestions(10)
	answers := make(map[int]string)
	for i := 0; i < 7; i++ {
		answers[i] = questions[i].CorrectAnswer
	}
	for i := 7; i < 10; i++ {
		answers[i] = "wrong-a"
	}
	session := domain.Session{
		Username:   "Ann",
		Questions:  questions,
		Answers:    answers,
		TimeLeft:   5,
		IsFinished: true,
	}

	report := app.BuildReport(session, app.Rules{QuestionCount: 10, TotalTime: 60, PassingScore: 70})
	if report.CorrectCount != 7 || report.IncorrectCount != 3 {
		t.Fatalf("expected 7/3, got %d/%d", report.CorrectCount, report.IncorrectCount)
	}
	if report.ScorePercent != 70 {
		t.Fatalf("expected 70%%, got %d", report.ScorePercent)
	}
	if !report.Passed {
		t.Fatalf("expected pass at the threshold")
	}
	if report.TimeTakenSeconds != 55 {
		t.Fatalf("expected 55s taken, got %d", report.TimeTakenSeconds)
	}
}

func TestReportUnansweredCountAsWrong(t *testing.T) {
	questions := sampleQuestions(4)
	session := domain.Session{
		Questions: questions,
		Answers:   map[int]string{1: questions[1].CorrectAnswer},
		TimeLeft:  30,
	}
	report := app.BuildReport(session, testRules())
	if report.CorrectCount != 1 || report.IncorrectCount != 3 {
		t.Fatalf("expected 1/3, got %d/%d", report.CorrectCount, report.IncorrectCount)
	}
}

func TestReportRounding(t *testing.T) {
	cases := []struct {
		total, correct, want int
	}{
		{3, 1, 33},
		{3, 2, 67},
		{8, 3, 38}, // 37.5 rounds away from zero
		{7, 5, 71},
	}
	for _, tc := range cases {
		questions := sampleQuestions(tc.total)
		answers := make(map[int]string)
		for i := 0; i < tc.correct; i++ {
			answers[i] = questions[i].CorrectAnswer
		}
		report := app.BuildReport(domain.Session{Questions: questions, Answers: answers, TimeLeft: 60}, testRules())
		if report.ScorePercent != tc.want {
			t.Fatalf("%d/%d: expected %d%%, got %d%%", tc.correct, tc.total, tc.want, report.ScorePercent)
		}
	}
}

func TestReportEmptyQuestionSet(t *testing.T) {
	report := app.BuildReport(domain.Session{TimeLeft: 60}, testRules())
	if report.ScorePercent != 0 || report.CorrectCount != 0 || report.IncorrectCount != 0 {
		t.Fatalf("expected zero report, got %+v", report)
	}
	if report.Passed {
		t.Fatalf("empty session must not pass")
	}
}

func TestReportTimeTakenClamped(t *testing.T) {
	// TimeLeft above the configured total must not yield negative time
	report := app.BuildReport(domain.Session{Questions: sampleQuestions(1), TimeLeft: 90}, testRules())
	if report.TimeTakenSeconds != 0 {
		t.Fatalf("expected clamped 0s, got %d", report.TimeTakenSeconds)
	}
}
