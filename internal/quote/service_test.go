package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tienda/internal/combo"
	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/events"
	"github.com/noah-isme/backend-tienda/internal/fx"
	"github.com/noah-isme/backend-tienda/internal/offer"
	"github.com/noah-isme/backend-tienda/internal/pricing"
	"github.com/noah-isme/backend-tienda/internal/rates"
	"github.com/noah-isme/backend-tienda/internal/store"
)

type stubQuoteStore struct {
	combos    map[string]combo.Combo
	products  map[string]combo.Product
	quotes    map[string]store.QuoteRecord
	snapshots map[string]float64
	inserted  int
}

func (s *stubQuoteStore) ListComboIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range s.combos {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *stubQuoteStore) UpdateComboSnapshot(ctx context.Context, id string, baseTotal float64) error {
	if s.snapshots == nil {
		s.snapshots = map[string]float64{}
	}
	s.snapshots[id] = baseTotal
	return nil
}

func (s *stubQuoteStore) GetCombo(ctx context.Context, id string) (combo.Combo, error) {
	c, ok := s.combos[id]
	if !ok {
		return combo.Combo{}, store.ErrNotFound
	}
	return c, nil
}

func (s *stubQuoteStore) GetProductsByIDs(ctx context.Context, ids []string) (map[string]combo.Product, error) {
	out := make(map[string]combo.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubQuoteStore) InsertQuote(ctx context.Context, q store.QuoteRecord) (store.QuoteRecord, error) {
	s.inserted++
	q.ID = fmt.Sprintf("q-%d", s.inserted)
	if s.quotes == nil {
		s.quotes = map[string]store.QuoteRecord{}
	}
	s.quotes[q.ID] = q
	return q, nil
}

func (s *stubQuoteStore) GetQuote(ctx context.Context, id string) (store.QuoteRecord, error) {
	q, ok := s.quotes[id]
	if !ok {
		return store.QuoteRecord{}, store.ErrNotFound
	}
	return q, nil
}

type stubOfferStore struct {
	byCode map[string]store.OfferRecord
}

func (s *stubOfferStore) GetOffer(ctx context.Context, id string) (store.OfferRecord, error) {
	return store.OfferRecord{}, store.ErrNotFound
}

func (s *stubOfferStore) GetOfferByCode(ctx context.Context, code string) (store.OfferRecord, error) {
	rec, ok := s.byCode[code]
	if !ok {
		return store.OfferRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *stubOfferStore) ListOffers(ctx context.Context) ([]store.OfferRecord, error) {
	return nil, nil
}

func (s *stubOfferStore) InsertOffer(ctx context.Context, o store.OfferRecord) (store.OfferRecord, error) {
	return o, nil
}

func (s *stubOfferStore) UpdateOffer(ctx context.Context, o store.OfferRecord) (store.OfferRecord, error) {
	return o, nil
}

type stubTableStore struct {
	table fx.Table
}

func (s *stubTableStore) RateTable(ctx context.Context) (fx.Table, error) { return s.table, nil }

func (s *stubTableStore) ListRates(ctx context.Context) ([]store.RateRow, error) { return nil, nil }

func (s *stubTableStore) ListCurrencies(ctx context.Context) ([]store.Currency, error) {
	return nil, nil
}

func (s *stubTableStore) UpsertRate(ctx context.Context, from, to string, rate float64) error {
	return nil
}

func (s *stubTableStore) UpsertCurrency(ctx context.Context, c store.Currency) error { return nil }

func newTestService(st *stubQuoteStore, offers map[string]store.OfferRecord, table fx.Table) *Service {
	return &Service{
		Store:                st,
		Rates:                &rates.Service{Store: &stubTableStore{table: table}, BaseCurrency: "USD", Log: zerolog.Nop()},
		Offers:               &offer.Service{Store: &stubOfferStore{byCode: offers}},
		Bus:                  &events.Bus{},
		Log:                  zerolog.Nop(),
		BaseCurrency:         "USD",
		DefaultMarginPercent: 40,
		DefaultTaxPercent:    0,
		DefaultShippingCost:  0,
	}
}

func TestOrderQuoteUsesDefaultsForOmittedFields(t *testing.T) {
	st := &stubQuoteStore{}
	svc := newTestService(st, nil, nil)
	svc.DefaultShippingCost = 5
	svc.DefaultTaxPercent = 10

	q, err := svc.Order(context.Background(), OrderRequest{Subtotal: 100})
	require.NoError(t, err)
	require.Equal(t, 5.0, q.Breakdown.ShippingCost)
	require.Equal(t, 10.0, q.Breakdown.TaxPercent)
	require.Equal(t, 115.5, q.Breakdown.Total)
}

func TestOrderQuoteHonorsExplicitZeros(t *testing.T) {
	st := &stubQuoteStore{}
	svc := newTestService(st, nil, nil)
	svc.DefaultShippingCost = 5
	svc.DefaultTaxPercent = 10

	zero := 0.0
	q, err := svc.Order(context.Background(), OrderRequest{
		Subtotal:     100,
		ShippingCost: &zero,
		TaxPercent:   &zero,
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, q.Breakdown.Total)
}

func TestOrderQuoteResolvesOfferCode(t *testing.T) {
	st := &stubQuoteStore{}
	offers := map[string]store.OfferRecord{
		"TEN": {
			Offer: pricing.Offer{
				ID:            "offer-ten",
				DiscountType:  pricing.DiscountTypePercentage,
				DiscountValue: 10,
			},
			Code:   "TEN",
			Active: true,
		},
	}
	svc := newTestService(st, offers, nil)

	q, err := svc.Order(context.Background(), OrderRequest{Subtotal: 100, OfferCode: "TEN"})
	require.NoError(t, err)
	require.True(t, q.Breakdown.OfferApplied)
	require.Equal(t, 10.0, q.Breakdown.OfferDiscountAmount)
	require.Equal(t, 90.0, q.Breakdown.Total)
}

func TestOrderQuoteUnknownOfferCode(t *testing.T) {
	st := &stubQuoteStore{}
	svc := newTestService(st, nil, nil)

	_, err := svc.Order(context.Background(), OrderRequest{Subtotal: 100, OfferCode: "NOPE"})
	require.ErrorIs(t, err, ErrOfferNotFound)
	require.Zero(t, st.inserted, "failed quote must not be persisted")
}

func TestOrderQuoteIsPersisted(t *testing.T) {
	st := &stubQuoteStore{}
	svc := newTestService(st, nil, nil)

	q, err := svc.Order(context.Background(), OrderRequest{Subtotal: 50})
	require.NoError(t, err)

	rec, err := svc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, KindOrder, rec.Kind)

	var stored pricing.Breakdown
	require.NoError(t, json.Unmarshal(rec.Breakdown, &stored))
	require.Equal(t, q.Breakdown.Total, stored.Total)
}

func TestComboQuoteLivePricing(t *testing.T) {
	st := &stubQuoteStore{
		combos: map[string]combo.Combo{
			"c1": {ID: "c1", Name: "Duo", ProductIDs: []string{"p1", "p2"}},
		},
		products: map[string]combo.Product{
			"p1": {ID: "p1", BasePrice: 10, BaseCurrencyID: "USD"},
			"p2": {ID: "p2", BasePrice: 20, BaseCurrencyID: "USD"},
		},
	}
	svc := newTestService(st, nil, nil)

	q, err := svc.Combo(context.Background(), ComboRequest{ComboID: "c1"})
	require.NoError(t, err)
	require.Equal(t, 30.0, q.Pricing.BasePrice)
	require.Equal(t, 42.0, q.Pricing.FinalPrice)
	require.False(t, q.Pricing.Estimated)
}

func TestComboQuoteSnapshotFallbackIsEstimated(t *testing.T) {
	snapshot := 55.5
	st := &stubQuoteStore{
		combos: map[string]combo.Combo{
			"c1": {ID: "c1", ProductIDs: []string{"gone"}, BaseTotalPrice: &snapshot},
		},
	}
	svc := newTestService(st, nil, nil)

	q, err := svc.Combo(context.Background(), ComboRequest{ComboID: "c1"})
	require.NoError(t, err)
	require.True(t, q.Pricing.Estimated)
	require.Equal(t, 55.5, q.Pricing.BasePrice)

	rec, err := svc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	require.True(t, rec.Estimated)
}

func TestComboQuoteDisplayCurrency(t *testing.T) {
	st := &stubQuoteStore{
		combos: map[string]combo.Combo{
			"c1": {ID: "c1", ProductIDs: []string{"p1"}},
		},
		products: map[string]combo.Product{
			"p1": {ID: "p1", BasePrice: 10, BaseCurrencyID: "USD"},
		},
	}
	svc := newTestService(st, nil, fx.Table{"USD/CUP": 120})

	q, err := svc.Combo(context.Background(), ComboRequest{ComboID: "c1", CurrencyID: "CUP"})
	require.NoError(t, err)
	require.Equal(t, "CUP", q.CurrencyID)
	require.Equal(t, 1200.0, q.Pricing.BasePrice)
	require.Equal(t, 1680.0, q.Pricing.FinalPrice)
}

func TestComboQuoteUnknownCombo(t *testing.T) {
	svc := newTestService(&stubQuoteStore{}, nil, nil)

	_, err := svc.Combo(context.Background(), ComboRequest{ComboID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestStockIssues(t *testing.T) {
	st := &stubQuoteStore{
		combos: map[string]combo.Combo{
			"c1": {
				ID:         "c1",
				ProductIDs: []string{"p1", "p2"},
				Quantities: map[string]float64{"p1": 3},
			},
		},
		products: map[string]combo.Product{
			"p1": {ID: "p1", Name: "Widget", Stock: 1},
			"p2": {ID: "p2", Name: "Gadget", Stock: 4},
		},
	}
	svc := newTestService(st, nil, nil)

	issues, err := svc.StockIssues(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "p1", issues[0].ProductID)
	require.Equal(t, combo.IssueInsufficient, issues[0].Issue)
}
