package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/fx"
	"github.com/noah-isme/backend-tienda/internal/obs"
	"github.com/noah-isme/backend-tienda/internal/store"
)

// ErrNotConfigured indicates the service is missing its store dependency.
var ErrNotConfigured = errors.New("rates: service not configured")

type rateStore interface {
	RateTable(ctx context.Context) (fx.Table, error)
	ListRates(ctx context.Context) ([]store.RateRow, error)
	ListCurrencies(ctx context.Context) ([]store.Currency, error)
	UpsertRate(ctx context.Context, from, to string, rate float64) error
	UpsertCurrency(ctx context.Context, c store.Currency) error
}

// Service serves exchange-rate snapshots and conversions. Snapshots are
// cached in Redis so quote bursts do not hammer Postgres.
type Service struct {
	Store        rateStore
	Cache        *Cache
	BaseCurrency string
	Log          zerolog.Logger
}

func (s *Service) base() string {
	if s.BaseCurrency == "" {
		return fx.DefaultBaseCurrency
	}
	return s.BaseCurrency
}

// Table returns the current exchange-rate snapshot, from cache when possible.
// Cache failures degrade to a direct store read.
func (s *Service) Table(ctx context.Context) (fx.Table, error) {
	if s == nil || s.Store == nil {
		return nil, ErrNotConfigured
	}
	var cached fx.Table
	hit, err := s.Cache.GetJSON(ctx, tableCacheKey, &cached)
	if err != nil {
		s.Log.Warn().Err(err).Msg("rates cache read failed")
	}
	if hit {
		return cached, nil
	}
	table, err := s.Store.RateTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate table: %w", err)
	}
	if err := s.Cache.SetJSON(ctx, tableCacheKey, table); err != nil {
		s.Log.Warn().Err(err).Msg("rates cache write failed")
	}
	return table, nil
}

// Convert converts an amount between currencies using the current snapshot.
// A missing rate never fails the call: the amount passes through 1:1 with the
// estimated flag raised so callers can surface it.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (fx.Result, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return fx.Result{}, err
	}
	res := fx.ConvertDetailed(amount, from, to, table, s.base())
	if obs.ConversionTotal != nil {
		path := "rate"
		if res.Estimated {
			path = "passthrough"
		}
		obs.ConversionTotal.WithLabelValues(path).Inc()
	}
	if res.Estimated {
		if obs.ConversionEstimatedTotal != nil {
			obs.ConversionEstimatedTotal.Inc()
		}
		s.Log.Warn().
			Str("from", from).
			Str("to", to).
			Msg("no exchange rate available, amount passed through 1:1")
	}
	return res, nil
}

// ConverterFor returns a closure suitable for the combo pricing engine,
// bound to a single snapshot so one quote sees consistent rates.
func (s *Service) ConverterFor(ctx context.Context) (func(amount float64, from, to string) float64, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	base := s.base()
	return func(amount float64, from, to string) float64 {
		return fx.Convert(amount, from, to, table, base)
	}, nil
}

// List returns all persisted rates with update timestamps.
func (s *Service) List(ctx context.Context) ([]store.RateRow, error) {
	if s == nil || s.Store == nil {
		return nil, ErrNotConfigured
	}
	return s.Store.ListRates(ctx)
}

// Currencies returns the supported currency set.
func (s *Service) Currencies(ctx context.Context) ([]store.Currency, error) {
	if s == nil || s.Store == nil {
		return nil, ErrNotConfigured
	}
	return s.Store.ListCurrencies(ctx)
}

// UpsertRate writes one direction of a pair and invalidates the snapshot cache.
func (s *Service) UpsertRate(ctx context.Context, from, to string, rate float64) error {
	if s == nil || s.Store == nil {
		return ErrNotConfigured
	}
	from = fx.NormalizeCode(from)
	to = fx.NormalizeCode(to)
	if from == "" || to == "" || from == to {
		return &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    fmt.Sprintf("invalid currency pair %q/%q", from, to),
			HTTPStatus: http.StatusBadRequest,
		}
	}
	if err := s.Store.UpsertRate(ctx, from, to, rate); err != nil {
		return err
	}
	if err := s.Cache.Invalidate(ctx, tableCacheKey); err != nil {
		s.Log.Warn().Err(err).Msg("rates cache invalidation failed")
	}
	return nil
}

// UpsertCurrency registers or renames a supported currency.
func (s *Service) UpsertCurrency(ctx context.Context, c store.Currency) error {
	if s == nil || s.Store == nil {
		return ErrNotConfigured
	}
	c.Code = fx.NormalizeCode(c.Code)
	if c.Code == "" {
		return &common.AppError{Code: "BAD_REQUEST", Message: "currency code is required", HTTPStatus: http.StatusBadRequest}
	}
	return s.Store.UpsertCurrency(ctx, c)
}
