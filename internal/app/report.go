package app

import (
	"math"

	"trivia-quiz-service/internal/domain"
)

// BuildReport derives the final score card from a session. Pure: it
// depends only on the answers recorded against the question list, not
// on the order they were submitted in, and never mutates the session.
func BuildReport(session domain.Session, rules Rules) domain.Report {
	total := len(session.Questions)

	correct := 0
	for i, q := range session.Questions {
		// unanswered indices never match and count as wrong
		if answer, ok := session.Answers[i]; ok && answer == q.CorrectAnswer {
			correct++
		}
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(correct) / float64(total)))
	}

	taken := rules.TotalTime - session.TimeLeft
	if taken < 0 {
		taken = 0
	}
	if taken > rules.TotalTime {
		taken = rules.TotalTime
	}

	return domain.Report{
		CorrectCount:     correct,
		IncorrectCount:   total - correct,
		ScorePercent:     percent,
		TimeTakenSeconds: taken,
		Passed:           percent >= rules.PassingScore,
	}
}
