package offer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tienda/internal/store"
)

func newTestHandler(st *stubOfferStore) *Handler {
	return &Handler{
		Svc:      &Service{Store: st},
		Validate: validator.New(),
	}
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func chiRouterForUpdate(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Put("/offers/{id}", h.Update)
	return r
}

func TestPreviewUnknownCodeReturnsNotFound(t *testing.T) {
	h := newTestHandler(&stubOfferStore{})

	req := httptest.NewRequest(http.MethodPost, "/offers/preview", strings.NewReader(`{"code":"GHOST","subtotal":100}`))
	rr := httptest.NewRecorder()
	h.Preview(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", decodeErrorBody(t, rr)["code"])
}

func TestCreateDuplicateCodeReturnsConflict(t *testing.T) {
	st := &stubOfferStore{byCode: map[string]store.OfferRecord{
		"DUP": percentOffer("DUP", 5),
	}}
	h := newTestHandler(st)

	payload := `{"code":"DUP","discount_type":"percentage","discount_value":5}`
	req := httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "CONFLICT", decodeErrorBody(t, rr)["code"])
}

func TestCreateInvalidRuleReturnsBadRequestWithField(t *testing.T) {
	h := newTestHandler(&stubOfferStore{})

	payload := `{"code":"X","discount_type":"percentage","discount_value":150}`
	req := httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	errBody := decodeErrorBody(t, rr)
	require.Equal(t, "BAD_REQUEST", errBody["code"])
	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "discount_value", details["field"])
}

func TestUpdateUnknownOfferReturnsNotFound(t *testing.T) {
	h := newTestHandler(&stubOfferStore{})

	payload := `{"code":"X","discount_type":"percentage","discount_value":5}`
	req := httptest.NewRequest(http.MethodPut, "/offers/missing", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	router := chiRouterForUpdate(h)
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", decodeErrorBody(t, rr)["code"])
}
