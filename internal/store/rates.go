package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/backend-tienda/internal/fx"
)

// Currency is a supported currency code with a display name.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RateRow is one persisted exchange rate pair.
type RateRow struct {
	FromCode  string    `json:"from"`
	ToCode    string    `json:"to"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCurrencies returns all supported currencies ordered by code.
func (s *Store) ListCurrencies(ctx context.Context) ([]Currency, error) {
	rows, err := s.Pool.Query(ctx, `SELECT code, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()
	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCurrency registers or renames a currency.
func (s *Store) UpsertCurrency(ctx context.Context, c Currency) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO currencies (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
	`, c.Code, c.Name)
	if err != nil {
		return fmt.Errorf("upsert currency: %w", err)
	}
	return nil
}

// RateTable assembles the full exchange-rate snapshot keyed as FROM/TO.
// Zero and negative rates are skipped on the way out so the conversion layer
// never sees them.
func (s *Store) RateTable(ctx context.Context) (fx.Table, error) {
	rows, err := s.Pool.Query(ctx, `SELECT from_code, to_code, rate FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}
	defer rows.Close()
	table := fx.Table{}
	for rows.Next() {
		var (
			from, to string
			rate     float64
		)
		if err := rows.Scan(&from, &to, &rate); err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		if rate <= 0 {
			continue
		}
		table[fx.PairKey(from, to)] = rate
	}
	return table, rows.Err()
}

// ListRates returns all persisted rates with their update timestamps.
func (s *Store) ListRates(ctx context.Context) ([]RateRow, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT from_code, to_code, rate, updated_at
		FROM exchange_rates
		ORDER BY from_code, to_code
	`)
	if err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}
	defer rows.Close()
	var out []RateRow
	for rows.Next() {
		var r RateRow
		if err := rows.Scan(&r.FromCode, &r.ToCode, &r.Rate, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRate writes one direction of a currency pair.
func (s *Store) UpsertRate(ctx context.Context, from, to string, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("upsert rate %s/%s: rate must be positive", from, to)
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (from_code, to_code, rate, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (from_code, to_code) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()
	`, from, to, rate)
	if err != nil {
		return fmt.Errorf("upsert rate: %w", err)
	}
	return nil
}
