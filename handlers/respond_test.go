package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	t.Run("encodes with status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeJSON(rec, http.StatusCreated, map[string]int{"n": 1})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n":1}`, rec.Body.String())
	})

	t.Run("unencodable value is a 500 with a body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeJSON(rec, http.StatusOK, map[string]float64{"total": math.Inf(1)})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
	})
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query               string
		page, limit, offset int
	}{
		{"", 1, 10, 0},
		{"?page=3&limit=20", 3, 20, 40},
		{"?page=0&limit=500", 1, 100, 0},
		{"?page=x&limit=-4", 1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, limit, offset := pagination(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
