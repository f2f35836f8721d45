package respond

import (
	"encoding/json"
	"net/http"

	"github.com/avenrae/avenrae-api/pkg/apperrors"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// Envelope is the body shape shared by every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a successful envelope around data.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// Page writes a successful envelope with pagination metadata.
func Page(w http.ResponseWriter, data any, limit, offset int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &Pagination{Limit: limit, Offset: offset}})
}

// Error maps err to a status code and writes a failure envelope. Server
// errors are logged with their cause and reported generically.
func Error(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}
	JSON(w, status, Envelope{Success: false, Error: apperrors.PublicMessage(err)})
}
