package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-tienda/internal/pricing"
)

// ErrOfferCodeTaken indicates an offer code collision on insert.
var ErrOfferCodeTaken = errors.New("store: offer code already exists")

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// OfferRecord is a persisted promotional offer. The embedded pricing.Offer
// is the exact shape the discount engine consumes.
type OfferRecord struct {
	pricing.Offer
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const offerColumns = `id, code, discount_type, discount_value, min_purchase_amount, max_discount_amount, active, created_at, updated_at`

func scanOffer(row pgx.Row) (OfferRecord, error) {
	var o OfferRecord
	err := row.Scan(
		&o.ID, &o.Code, &o.DiscountType, &o.DiscountValue,
		&o.MinPurchaseAmount, &o.MaxDiscountAmount,
		&o.Active, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// GetOffer loads an offer by id.
func (s *Store) GetOffer(ctx context.Context, id string) (OfferRecord, error) {
	o, err := scanOffer(s.Pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OfferRecord{}, ErrNotFound
		}
		return OfferRecord{}, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

// GetOfferByCode loads an active offer by its public code.
func (s *Store) GetOfferByCode(ctx context.Context, code string) (OfferRecord, error) {
	o, err := scanOffer(s.Pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE code = $1 AND active`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OfferRecord{}, ErrNotFound
		}
		return OfferRecord{}, fmt.Errorf("get offer by code: %w", err)
	}
	return o, nil
}

// ListOffers returns all offers ordered by creation time, newest first.
func (s *Store) ListOffers(ctx context.Context) ([]OfferRecord, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	var out []OfferRecord
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// InsertOffer creates an offer and returns the stored record.
func (s *Store) InsertOffer(ctx context.Context, o OfferRecord) (OfferRecord, error) {
	stored, err := scanOffer(s.Pool.QueryRow(ctx, `
		INSERT INTO offers (code, discount_type, discount_value, min_purchase_amount, max_discount_amount, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+offerColumns, o.Code, o.DiscountType, o.DiscountValue, o.MinPurchaseAmount, o.MaxDiscountAmount, o.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return OfferRecord{}, ErrOfferCodeTaken
		}
		return OfferRecord{}, fmt.Errorf("insert offer: %w", err)
	}
	return stored, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UpdateOffer rewrites an offer's rule fields by id.
func (s *Store) UpdateOffer(ctx context.Context, o OfferRecord) (OfferRecord, error) {
	stored, err := scanOffer(s.Pool.QueryRow(ctx, `
		UPDATE offers
		SET discount_type = $2,
		    discount_value = $3,
		    min_purchase_amount = $4,
		    max_discount_amount = $5,
		    active = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+offerColumns, o.ID, o.DiscountType, o.DiscountValue, o.MinPurchaseAmount, o.MaxDiscountAmount, o.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OfferRecord{}, ErrNotFound
		}
		return OfferRecord{}, fmt.Errorf("update offer: %w", err)
	}
	return stored, nil
}
