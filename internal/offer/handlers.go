package offer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/events"
	"github.com/noah-isme/backend-tienda/internal/pricing"
	"github.com/noah-isme/backend-tienda/internal/store"
)

// Handler exposes offer preview and administrative management endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Bus      *events.Bus
}

type offerPayload struct {
	Code              string   `json:"code" validate:"required"`
	DiscountType      string   `json:"discount_type" validate:"required"`
	DiscountValue     float64  `json:"discount_value" validate:"gte=0"`
	MinPurchaseAmount *float64 `json:"min_purchase_amount"`
	MaxDiscountAmount *float64 `json:"max_discount_amount"`
	Active            *bool    `json:"active"`
}

type previewRequest struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
}

func (p offerPayload) record() store.OfferRecord {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return store.OfferRecord{
		Offer: pricing.Offer{
			DiscountType:      p.DiscountType,
			DiscountValue:     p.DiscountValue,
			MinPurchaseAmount: p.MinPurchaseAmount,
			MaxDiscountAmount: p.MaxDiscountAmount,
		},
		Code:   strings.TrimSpace(p.Code),
		Active: active,
	}
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	if h.Validate != nil {
		return h.Validate.Struct(dst)
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// Preview evaluates an offer code against a subtotal without persisting state.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	var req previewRequest
	if err := h.decode(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	res, err := h.Svc.Preview(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// List returns all offers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	offers, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list offers", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": offers})
}

// Create inserts a new offer rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	var payload offerPayload
	if err := h.decode(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	stored, err := h.Svc.Create(r.Context(), payload.record())
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, _ = h.Bus.Emit(r.Context(), events.TopicOfferChanged, stored.ID, map[string]any{
		"code":   stored.Code,
		"action": "created",
	})
	common.JSON(w, http.StatusCreated, map[string]any{"data": stored})
}

// Update mutates an existing offer identified by id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}
	var payload offerPayload
	if err := h.decode(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	rec := payload.record()
	rec.ID = id
	stored, err := h.Svc.Update(r.Context(), rec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	_, _ = h.Bus.Emit(r.Context(), events.TopicOfferChanged, stored.ID, map[string]any{
		"code":   stored.Code,
		"action": "updated",
	})
	common.JSON(w, http.StatusOK, map[string]any{"data": stored})
}
