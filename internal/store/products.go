package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-tienda/internal/combo"
)

// GetProduct loads a single product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (combo.Product, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, base_price, base_currency_id, stock
		FROM products
		WHERE id = $1
	`, id)
	var p combo.Product
	if err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &p.BaseCurrencyID, &p.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return combo.Product{}, ErrNotFound
		}
		return combo.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetProductsByIDs loads the requested products keyed by id. Missing ids are
// simply absent from the map; the pricing layer decides how to degrade.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]combo.Product, error) {
	products := make(map[string]combo.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, base_price, base_currency_id, stock
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p combo.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.BasePrice, &p.BaseCurrencyID, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// InsertProduct creates a product and returns its id.
func (s *Store) InsertProduct(ctx context.Context, p combo.Product) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO products (name, base_price, base_currency_id, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.Name, p.BasePrice, p.BaseCurrencyID, p.Stock).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}
