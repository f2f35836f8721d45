package healers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealerRouter(dir Directory) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/healers", NewHandler(dir, nil).Routes)
	return r
}

func TestHandlerListIncludesPagination(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealerRouter(&countingDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healers?healer_type=prophet&limit=5&offset=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success    bool     `json:"success"`
		Data       []Healer `json:"data"`
		Pagination struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "prophet", body.Data[0].HealerType)
	assert.Equal(t, 5, body.Pagination.Limit)
	assert.Equal(t, 10, body.Pagination.Offset)
}

func TestHandlerListRejectsUnknownSort(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealerRouter(&countingDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healers?sort=password", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetNotFound(t *testing.T) {
	missing := uuid.New()
	rec := httptest.NewRecorder()
	newHealerRouter(&countingDirectory{missing: missing}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healers/"+missing.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Healer not found"}`, rec.Body.String())
}

func TestHandlerGetBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealerRouter(&countingDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healers/17", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAvailability(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealerRouter(&countingDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healers/"+uuid.NewString()+"/availability", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []Availability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Data[0].DayOfWeek)
}
