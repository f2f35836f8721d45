package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calendarBody struct {
	Success bool `json:"success"`
	Data    struct {
		Title         string   `json:"title"`
		LeadingBlanks int      `json:"leading_blanks"`
		Days          []Day    `json:"days"`
		Weeks         [][]*Day `json:"weeks"`
		Prev          string   `json:"prev"`
		Next          string   `json:"next"`
	} `json:"data"`
	Error string `json:"error"`
}

func serveCalendar(t *testing.T, target string) (*httptest.ResponseRecorder, calendarBody) {
	t.Helper()
	h := NewHandler(nil)
	h.now = func() time.Time { return time.Date(2025, time.November, 15, 16, 30, 0, 0, time.UTC) }
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body calendarBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandlerDefaultsToCurrentMonth(t *testing.T) {
	rec, body := serveCalendar(t, "/api/calendar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "November 2025", body.Data.Title)
	assert.Equal(t, "2025-10", body.Data.Prev)
	assert.Equal(t, "2025-12", body.Data.Next)
	assert.True(t, body.Data.Days[13].Disabled)
	assert.False(t, body.Data.Days[14].Disabled)
}

func TestHandlerMonthAndBounds(t *testing.T) {
	rec, body := serveCalendar(t, "/api/calendar?month=2025-12&max_date=2025-12-10&selected=2025-12-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "December 2025", body.Data.Title)
	assert.True(t, body.Data.Days[4].Selected)
	assert.False(t, body.Data.Days[9].Disabled)
	assert.True(t, body.Data.Days[10].Disabled)
	assert.Equal(t, "2026-01", body.Data.Next)
}

func TestHandlerRejectsBadMonth(t *testing.T) {
	rec, body := serveCalendar(t, "/api/calendar?month=December")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "month must be in YYYY-MM format", body.Error)
}

func TestHandlerRejectsBadMinDate(t *testing.T) {
	rec, _ := serveCalendar(t, "/api/calendar?min_date=2025-13-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
