package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store provides the persistence operations the pricing service needs:
// catalog reads, rate table reads/writes, offer management, and quote
// snapshots. All SQL lives here; the calculation engines never see it.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store over the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}
