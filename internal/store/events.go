package store

import (
	"context"
	"fmt"

	"github.com/noah-isme/backend-tienda/internal/events"
)

// InsertEvent persists a domain event, satisfying events.Store.
func (s *Store) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	ev := events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, occurred_at
	`, topic, aggregateID, payload).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}
