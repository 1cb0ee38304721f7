package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createAttemptsSQL = `
CREATE TABLE IF NOT EXISTS quiz_attempts (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL,
	correct_count INT NOT NULL,
	question_count INT NOT NULL,
	score_percent INT NOT NULL,
	passed BOOLEAN NOT NULL,
	time_taken_seconds INT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createAttemptsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS quiz_attempts`)
			return err
		},
	)
}
