package postgres

import (
	"context"
	"fmt"

	"trivia-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultArchive stores finished quiz attempts in Postgres.
type ResultArchive struct {
	pool *pgxpool.Pool
}

func NewResultArchive(pool *pgxpool.Pool) *ResultArchive {
	return &ResultArchive{pool: pool}
}

func (a *ResultArchive) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO quiz_attempts
			(id, username, correct_count, question_count, score_percent, passed, time_taken_seconds, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attempt.ID,
		attempt.Username,
		attempt.CorrectCount,
		attempt.QuestionCount,
		attempt.ScorePercent,
		attempt.Passed,
		attempt.TimeTakenSeconds,
		attempt.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

// RecentAttempts lists the most recently finished attempts, newest
// first.
func (a *ResultArchive) RecentAttempts(ctx context.Context, limit int) ([]domain.Attempt, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT id, username, correct_count, question_count, score_percent, passed, time_taken_seconds, finished_at
		FROM quiz_attempts
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var attempt domain.Attempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.Username,
			&attempt.CorrectCount,
			&attempt.QuestionCount,
			&attempt.ScorePercent,
			&attempt.Passed,
			&attempt.TimeTakenSeconds,
			&attempt.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
