package rates

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-tienda/internal/common"
	"github.com/noah-isme/backend-tienda/internal/events"
	"github.com/noah-isme/backend-tienda/internal/store"
)

// Handler exposes the currency and exchange-rate endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Bus      *events.Bus
}

type convertRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
}

type upsertRateRequest struct {
	From string  `json:"from" validate:"required"`
	To   string  `json:"to" validate:"required"`
	Rate float64 `json:"rate" validate:"gt=0"`
}

type upsertCurrencyRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
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

// ListCurrencies returns the supported currency set.
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	currencies, err := h.Svc.Currencies(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list currencies", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": currencies})
}

// ListRates returns all persisted exchange rates.
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	rows, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list rates", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":         rows,
		"baseCurrency": h.Svc.base(),
	})
}

// Convert converts an amount between two currencies. A missing rate does not
// fail the call; the response carries an estimated flag instead.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	var req convertRequest
	if err := h.decode(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	res, err := h.Svc.Convert(r.Context(), req.Amount, req.From, req.To)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "conversion failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"amount":    res.Amount,
			"from":      req.From,
			"to":        req.To,
			"estimated": res.Estimated,
		},
	})
}

// UpsertRate writes one direction of a currency pair.
func (h *Handler) UpsertRate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	var req upsertRateRequest
	if err := h.decode(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.UpsertRate(r.Context(), req.From, req.To, req.Rate); err != nil {
		h.writeError(w, err)
		return
	}
	// Event persistence is best-effort; the rate write already succeeded.
	_, _ = h.Bus.Emit(r.Context(), events.TopicRateUpserted, req.From+"/"+req.To, map[string]any{
		"from": req.From,
		"to":   req.To,
		"rate": req.Rate,
	})
	common.JSON(w, http.StatusOK, map[string]any{"data": req})
}

// UpsertCurrency registers or renames a supported currency.
func (h *Handler) UpsertCurrency(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	var req upsertCurrencyRequest
	if err := h.decode(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.UpsertCurrency(r.Context(), store.Currency{Code: req.Code, Name: req.Name}); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": req})
}
