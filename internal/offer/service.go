package offer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/obs"
	"github.com/noah-isme/backend-tienda/internal/pricing"
	"github.com/noah-isme/backend-tienda/internal/store"
)

// ErrNotFound indicates the requested offer does not exist or is inactive.
var ErrNotFound = errors.New("offer: not found")

type offerStore interface {
	GetOffer(ctx context.Context, id string) (store.OfferRecord, error)
	GetOfferByCode(ctx context.Context, code string) (store.OfferRecord, error)
	ListOffers(ctx context.Context) ([]store.OfferRecord, error)
	InsertOffer(ctx context.Context, o store.OfferRecord) (store.OfferRecord, error)
	UpdateOffer(ctx context.Context, o store.OfferRecord) (store.OfferRecord, error)
}

// Service manages promotional offers and evaluates them against subtotals.
type Service struct {
	Store offerStore
}

// PreviewResult is the outcome of a dry-run offer evaluation.
type PreviewResult struct {
	Code          string  `json:"code"`
	Applied       bool    `json:"applied"`
	Reason        string  `json:"reason,omitempty"`
	Discount      float64 `json:"discount"`
	FinalSubtotal float64 `json:"finalSubtotal"`
}

// Resolve loads an active offer by its public code. A blank code resolves to
// no offer without error so callers can pass user input straight through.
func (s *Service) Resolve(ctx context.Context, code string) (*pricing.Offer, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("offer service not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	rec, err := s.Store.GetOfferByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &common.AppError{Code: "NOT_FOUND", Message: "offer not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
		}
		return nil, err
	}
	offer := rec.Offer
	return &offer, nil
}

// Preview evaluates an offer code against a subtotal without persisting
// anything. An ineligible offer is a normal outcome, not an error.
func (s *Service) Preview(ctx context.Context, code string, subtotal float64) (PreviewResult, error) {
	offer, err := s.Resolve(ctx, code)
	if err != nil {
		return PreviewResult{}, err
	}
	res := pricing.ApplyOffer(subtotal, offer)
	if obs.OfferEvaluationTotal != nil {
		result := "applied"
		if !res.Applied {
			result = "rejected"
		}
		obs.OfferEvaluationTotal.WithLabelValues(result).Inc()
	}
	return PreviewResult{
		Code:          code,
		Applied:       res.Applied,
		Reason:        res.Reason,
		Discount:      res.DiscountAmount,
		FinalSubtotal: res.FinalSubtotal,
	}, nil
}

// List returns all offers, active or not.
func (s *Service) List(ctx context.Context) ([]store.OfferRecord, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("offer service not configured")
	}
	return s.Store.ListOffers(ctx)
}

// Create validates and persists a new offer.
func (s *Service) Create(ctx context.Context, rec store.OfferRecord) (store.OfferRecord, error) {
	if s == nil || s.Store == nil {
		return store.OfferRecord{}, errors.New("offer service not configured")
	}
	if err := validateRule(rec); err != nil {
		return store.OfferRecord{}, err
	}
	stored, err := s.Store.InsertOffer(ctx, rec)
	if err != nil {
		if errors.Is(err, store.ErrOfferCodeTaken) {
			return store.OfferRecord{}, &common.AppError{Code: "CONFLICT", Message: "offer code already exists", HTTPStatus: http.StatusConflict, Err: err}
		}
		return store.OfferRecord{}, err
	}
	return stored, nil
}

// Update rewrites an existing offer's rule fields.
func (s *Service) Update(ctx context.Context, rec store.OfferRecord) (store.OfferRecord, error) {
	if s == nil || s.Store == nil {
		return store.OfferRecord{}, errors.New("offer service not configured")
	}
	if err := validateRule(rec); err != nil {
		return store.OfferRecord{}, err
	}
	stored, err := s.Store.UpdateOffer(ctx, rec)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.OfferRecord{}, &common.AppError{Code: "NOT_FOUND", Message: "offer not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
		}
		return store.OfferRecord{}, err
	}
	return stored, nil
}

func validateRule(rec store.OfferRecord) error {
	switch rec.DiscountType {
	case pricing.DiscountTypePercentage:
		if rec.DiscountValue < 0 || rec.DiscountValue > 100 {
			return badRequest("discount_value", "percentage discount must be between 0 and 100")
		}
	case pricing.DiscountTypeFixedAmount:
		if rec.DiscountValue < 0 {
			return badRequest("discount_value", "fixed discount must not be negative")
		}
	default:
		return badRequest("discount_type", "unknown discount type")
	}
	if rec.MinPurchaseAmount != nil && *rec.MinPurchaseAmount < 0 {
		return badRequest("min_purchase_amount", "minimum purchase amount must not be negative")
	}
	if rec.MaxDiscountAmount != nil && *rec.MaxDiscountAmount < 0 {
		return badRequest("max_discount_amount", "maximum discount amount must not be negative")
	}
	return nil
}

func badRequest(field, message string) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"field": field,
		},
	}
}
