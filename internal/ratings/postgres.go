package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/muse-movies/muse/pkg/postgres"
)

// PostgresStore keeps the rating log in a table for deployments that
// outgrow the flat file. Rows are insert-only to preserve the append-only
// contract.
type PostgresStore struct {
	client *postgres.Client
}

const createRatingsTable = `
CREATE TABLE IF NOT EXISTS ratings (
	id         BIGSERIAL PRIMARY KEY,
	title      TEXT NOT NULL,
	rating     SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	created_at TIMESTAMPTZ NOT NULL
)`

// NewPostgresStore ensures the ratings table exists.
func NewPostgresStore(ctx context.Context, client *postgres.Client) (*PostgresStore, error) {
	if _, err := client.DB.ExecContext(ctx, createRatingsTable); err != nil {
		return nil, fmt.Errorf("creating ratings table: %w", err)
	}
	return &PostgresStore{client: client}, nil
}

// Append validates and inserts one rating event.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if err := ValidateRating(event.Rating); err != nil {
		return err
	}
	_, err := s.client.DB.ExecContext(ctx,
		`INSERT INTO ratings (title, rating, created_at) VALUES ($1, $2, $3)`,
		event.Title, event.Rating, event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting rating: %w", err)
	}
	return nil
}

// All returns the full log in insert order.
func (s *PostgresStore) All(ctx context.Context) ([]Event, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT title, rating, created_at FROM ratings ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ratings: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts time.Time
		if err := rows.Scan(&e.Title, &e.Rating, &ts); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		e.Timestamp = ts
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rating rows: %w", err)
	}
	return events, nil
}
