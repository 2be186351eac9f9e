package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users and cases tables if they do not exist yet.
// Proceedings and parties live in jsonb columns; they are always read and
// written as whole documents alongside the case row.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS cases (
			id SERIAL PRIMARY KEY,
			case_number TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			petitioner TEXT NOT NULL,
			respondent TEXT NOT NULL,
			docketed_date TIMESTAMP NOT NULL,
			court_proceedings JSONB,
			parties_involved JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
