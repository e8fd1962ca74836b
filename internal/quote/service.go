package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tienda/internal/combo"
	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/events"
	"github.com/noah-isme/backend-tienda/internal/obs"
	"github.com/noah-isme/backend-tienda/internal/offer"
	"github.com/noah-isme/backend-tienda/internal/pricing"
	"github.com/noah-isme/backend-tienda/internal/rates"
	"github.com/noah-isme/backend-tienda/internal/store"
)

// Quote kinds as persisted in the quotes table.
const (
	KindOrder = "order"
	KindCombo = "combo"
)

// ErrNotFound indicates a referenced entity (combo, quote) does not exist.
var ErrNotFound = errors.New("quote: not found")

// ErrOfferNotFound indicates the supplied offer code resolved to nothing.
var ErrOfferNotFound = errors.New("quote: offer not found")

type quoteStore interface {
	GetCombo(ctx context.Context, id string) (combo.Combo, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]combo.Product, error)
	InsertQuote(ctx context.Context, q store.QuoteRecord) (store.QuoteRecord, error)
	GetQuote(ctx context.Context, id string) (store.QuoteRecord, error)
}

// Service orchestrates quote calculation: it loads the inputs, runs the pure
// pricing engines, persists the resulting breakdown, and emits an event.
type Service struct {
	Store  quoteStore
	Rates  *rates.Service
	Offers *offer.Service
	Bus    *events.Bus
	Log    zerolog.Logger

	BaseCurrency         string
	DefaultMarginPercent float64
	DefaultTaxPercent    float64
	DefaultShippingCost  float64
}

// OrderRequest captures the inputs for an order-total quote. Omitted shipping
// and tax fall back to configured defaults; explicit zeros are honored.
type OrderRequest struct {
	Subtotal                float64  `json:"subtotal" validate:"gte=0"`
	CategoryDiscountPercent float64  `json:"categoryDiscountPercent" validate:"gte=0,lte=100"`
	OfferCode               string   `json:"offerCode"`
	ShippingCost            *float64 `json:"shippingCost"`
	TaxPercent              *float64 `json:"taxPercent"`
}

// OrderQuote is a persisted order-total calculation.
type OrderQuote struct {
	ID        string            `json:"id"`
	Currency  string            `json:"currency"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// ComboRequest captures the inputs for a combo price quote.
type ComboRequest struct {
	ComboID    string `json:"-"`
	CurrencyID string `json:"currencyId"`
}

// ComboQuote is a persisted combo pricing calculation.
type ComboQuote struct {
	ID         string        `json:"id"`
	ComboID    string        `json:"comboId"`
	CurrencyID string        `json:"currencyId"`
	Pricing    combo.Pricing `json:"pricing"`
}

func (s *Service) ready() error {
	if s == nil || s.Store == nil {
		return errors.New("quote service not configured")
	}
	return nil
}

// Order computes, persists, and returns an order-total quote.
func (s *Service) Order(ctx context.Context, req OrderRequest) (OrderQuote, error) {
	if err := s.ready(); err != nil {
		return OrderQuote{}, err
	}
	var appliedOffer *pricing.Offer
	if s.Offers != nil {
		resolved, err := s.Offers.Resolve(ctx, req.OfferCode)
		if err != nil {
			if errors.Is(err, offer.ErrNotFound) {
				return OrderQuote{}, &common.AppError{Code: "NOT_FOUND", Message: "offer not found", HTTPStatus: http.StatusNotFound, Err: ErrOfferNotFound}
			}
			return OrderQuote{}, err
		}
		appliedOffer = resolved
	}

	shipping := s.DefaultShippingCost
	if req.ShippingCost != nil {
		shipping = *req.ShippingCost
	}
	tax := s.DefaultTaxPercent
	if req.TaxPercent != nil {
		tax = *req.TaxPercent
	}

	breakdown := pricing.CalculateOrderTotal(pricing.OrderInput{
		Subtotal:                req.Subtotal,
		CategoryDiscountPercent: req.CategoryDiscountPercent,
		Offer:                   appliedOffer,
		ShippingCost:            shipping,
		TaxPercent:              tax,
	})

	rec, err := s.persist(ctx, KindOrder, s.BaseCurrency, breakdown, false)
	if err != nil {
		s.countQuote(KindOrder, "error")
		return OrderQuote{}, err
	}
	s.countQuote(KindOrder, "ok")
	return OrderQuote{ID: rec.ID, Currency: rec.Currency, Breakdown: breakdown}, nil
}

// Combo computes, persists, and returns a combo price quote in the selected
// display currency.
func (s *Service) Combo(ctx context.Context, req ComboRequest) (ComboQuote, error) {
	if err := s.ready(); err != nil {
		return ComboQuote{}, err
	}
	c, products, err := s.loadCombo(ctx, req.ComboID)
	if err != nil {
		return ComboQuote{}, err
	}

	var convert combo.ConvertFunc
	if s.Rates != nil {
		fn, err := s.Rates.ConverterFor(ctx)
		if err != nil {
			return ComboQuote{}, err
		}
		convert = fn
	}

	currency := req.CurrencyID
	if currency == "" {
		currency = s.BaseCurrency
	}
	result := combo.ComputePricing(combo.Params{
		Combo:               c,
		Products:            products,
		Convert:             convert,
		SelectedCurrencyID:  currency,
		BaseCurrencyID:      s.BaseCurrency,
		DefaultProfitMargin: s.DefaultMarginPercent,
	})
	if result.Estimated {
		s.Log.Warn().
			Str("comboId", c.ID).
			Msg("combo priced from snapshot or passthrough, result is an estimate")
	}

	rec, err := s.persist(ctx, KindCombo, currency, result, result.Estimated)
	if err != nil {
		s.countQuote(KindCombo, "error")
		return ComboQuote{}, err
	}
	s.countQuote(KindCombo, "ok")
	return ComboQuote{ID: rec.ID, ComboID: c.ID, CurrencyID: currency, Pricing: result}, nil
}

// StockIssues reports availability problems for a combo's constituents.
func (s *Service) StockIssues(ctx context.Context, comboID string) ([]combo.StockIssue, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	c, products, err := s.loadCombo(ctx, comboID)
	if err != nil {
		return nil, err
	}
	return combo.CheckStockIssues(c, products), nil
}

// Get loads a previously persisted quote.
func (s *Service) Get(ctx context.Context, id string) (store.QuoteRecord, error) {
	if err := s.ready(); err != nil {
		return store.QuoteRecord{}, err
	}
	rec, err := s.Store.GetQuote(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.QuoteRecord{}, &common.AppError{Code: "NOT_FOUND", Message: "quote not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
		}
		return store.QuoteRecord{}, err
	}
	return rec, nil
}

func (s *Service) loadCombo(ctx context.Context, comboID string) (combo.Combo, map[string]combo.Product, error) {
	c, err := s.Store.GetCombo(ctx, comboID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return combo.Combo{}, nil, &common.AppError{Code: "NOT_FOUND", Message: "combo not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
		}
		return combo.Combo{}, nil, err
	}
	products, err := s.Store.GetProductsByIDs(ctx, c.ProductIDs)
	if err != nil {
		return combo.Combo{}, nil, fmt.Errorf("load combo products: %w", err)
	}
	return c, products, nil
}

func (s *Service) persist(ctx context.Context, kind, currency string, breakdown any, estimated bool) (store.QuoteRecord, error) {
	encoded, err := json.Marshal(breakdown)
	if err != nil {
		return store.QuoteRecord{}, fmt.Errorf("encode breakdown: %w", err)
	}
	rec, err := s.Store.InsertQuote(ctx, store.QuoteRecord{
		Kind:      kind,
		Currency:  currency,
		Breakdown: encoded,
		Estimated: estimated,
	})
	if err != nil {
		return store.QuoteRecord{}, fmt.Errorf("persist quote: %w", err)
	}
	// Event persistence is best-effort; the quote itself is already stored.
	if _, err := s.Bus.Emit(ctx, events.TopicQuoteCreated, rec.ID, map[string]any{
		"kind":      kind,
		"currency":  currency,
		"estimated": estimated,
	}); err != nil {
		s.Log.Warn().Err(err).Str("quoteId", rec.ID).Msg("quote event emission failed")
	}
	return rec, nil
}

func (s *Service) countQuote(kind, result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(kind, result).Inc()
	}
}
