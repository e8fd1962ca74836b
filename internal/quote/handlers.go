package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-tienda/internal/common"
)

// Handler exposes the quote endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
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

// CreateOrder computes and persists an order-total quote.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req OrderRequest
	if err := h.decode(r, &req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	q, err := h.Svc.Order(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": q})
}

// Get returns a previously computed quote by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}
	rec, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

// PriceCombo computes and persists a combo price quote.
func (h *Handler) PriceCombo(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	comboID := strings.TrimSpace(chi.URLParam(r, "id"))
	if comboID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "combo id is required", nil)
		return
	}
	var req ComboRequest
	if r.ContentLength > 0 {
		if err := h.decode(r, &req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
			return
		}
	}
	req.ComboID = comboID
	q, err := h.Svc.Combo(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": q})
}

// StockIssues reports availability problems for a combo.
func (h *Handler) StockIssues(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	comboID := strings.TrimSpace(chi.URLParam(r, "id"))
	if comboID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "combo id is required", nil)
		return
	}
	issues, err := h.Svc.StockIssues(r.Context(), comboID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"purchasable": len(issues) == 0,
			"issues":      issues,
		},
	})
}
