package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-tienda/internal/combo"
)

// GetCombo loads a combo with its constituent items in stored order.
func (s *Store) GetCombo(ctx context.Context, id string) (combo.Combo, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, profit_margin, base_total_price
		FROM combos
		WHERE id = $1
	`, id)
	var c combo.Combo
	if err := row.Scan(&c.ID, &c.Name, &c.ProfitMargin, &c.BaseTotalPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return combo.Combo{}, ErrNotFound
		}
		return combo.Combo{}, fmt.Errorf("get combo: %w", err)
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT product_id, qty
		FROM combo_items
		WHERE combo_id = $1
		ORDER BY position, product_id
	`, id)
	if err != nil {
		return combo.Combo{}, fmt.Errorf("list combo items: %w", err)
	}
	defer rows.Close()
	c.Quantities = make(map[string]float64)
	for rows.Next() {
		var (
			productID string
			qty       float64
		)
		if err := rows.Scan(&productID, &qty); err != nil {
			return combo.Combo{}, fmt.Errorf("scan combo item: %w", err)
		}
		c.ProductIDs = append(c.ProductIDs, productID)
		c.Quantities[productID] = qty
	}
	return c, rows.Err()
}

// ListComboIDs returns every combo id, oldest first.
func (s *Store) ListComboIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id FROM combos ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list combo ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan combo id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertCombo creates a combo together with its items and returns its id.
func (s *Store) InsertCombo(ctx context.Context, c combo.Combo) (string, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO combos (name, profit_margin, base_total_price)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.Name, c.ProfitMargin, c.BaseTotalPrice).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert combo: %w", err)
	}
	for position, productID := range c.ProductIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO combo_items (combo_id, product_id, qty, position)
			VALUES ($1, $2, $3, $4)
		`, id, productID, c.QuantityFor(productID), position); err != nil {
			return "", fmt.Errorf("insert combo item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// UpdateComboSnapshot persists the recomputed base total so pricing can fall
// back to it when constituents disappear.
func (s *Store) UpdateComboSnapshot(ctx context.Context, id string, baseTotal float64) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE combos
		SET base_total_price = $2, updated_at = now()
		WHERE id = $1
	`, id, baseTotal)
	if err != nil {
		return fmt.Errorf("update combo snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
