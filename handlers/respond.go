package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"p9e.in/qac/config"
)

// writeJSON encodes v before sending the status so an encoding failure becomes a 500
// rather than an empty success.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		config.Log.Error("failed to encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDBError maps not-found to 404 and logs everything else as a 500.
func writeDBError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeError(w, http.StatusConflict, "record already exists")
	case errors.Is(err, errNoReferenceStore):
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
	default:
		config.Log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

// pagination reads page/limit query params (defaults 1/10, limit capped at 100).
func pagination(r *http.Request) (page, limit, offset int) {
	page, limit = 1, 10
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
