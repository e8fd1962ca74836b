package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// QuoteRecord is a persisted quote snapshot: the serialized breakdown plus
// enough metadata to audit it later without recomputation.
type QuoteRecord struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Currency  string          `json:"currency"`
	Breakdown json.RawMessage `json:"breakdown"`
	Estimated bool            `json:"estimated"`
	CreatedAt time.Time       `json:"createdAt"`
}

// InsertQuote persists a quote snapshot and returns it with id and timestamp.
func (s *Store) InsertQuote(ctx context.Context, q QuoteRecord) (QuoteRecord, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO quotes (kind, currency, breakdown, estimated)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, q.Kind, q.Currency, q.Breakdown, q.Estimated).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("insert quote: %w", err)
	}
	return q, nil
}

// GetQuote loads a persisted quote snapshot by id.
func (s *Store) GetQuote(ctx context.Context, id string) (QuoteRecord, error) {
	var q QuoteRecord
	err := s.Pool.QueryRow(ctx, `
		SELECT id, kind, currency, breakdown, estimated, created_at
		FROM quotes
		WHERE id = $1
	`, id).Scan(&q.ID, &q.Kind, &q.Currency, &q.Breakdown, &q.Estimated, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRecord{}, ErrNotFound
		}
		return QuoteRecord{}, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}
