package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/qac/pkg/cpo"
)

func postCalculate(t *testing.T, body string) (*httptest.ResponseRecorder, calculateResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qac/cpo/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CalculateCPO(rec, req)

	var resp calculateResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestCalculateCPO_KnownValue(t *testing.T) {
	rec, resp := postCalculate(t, `{
		"readings": [{"tank_no": 1, "oil_level": "100", "temperature": 28.2, "ffa": 4}],
		"geometry": [{"tank_no": 1, "height_m": 10, "volume_m3": 500}],
		"density":  [{"temperature_c": 28, "density": 0.9}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45.0, resp.Total)
	assert.Equal(t, 45.0, resp.Volumes[1])
	require.Len(t, resp.Tanks, 1)
	assert.Equal(t, 0.5, resp.Tanks[0].VolumePerCm)
	assert.Equal(t, cpo.DensityExact, resp.Tanks[0].DensitySource)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, 1, resp.Quality.TankCount)
	assert.Equal(t, 4.0, resp.Quality.AvgFFA)
}

func TestCalculateCPO_EmptyInlineTablesDegrade(t *testing.T) {
	rec, resp := postCalculate(t, `{
		"readings": [{"tank_no": 1, "oil_level": 100, "temperature": 28}, {"tank_no": 2, "oil_level": 50, "temperature": 30}],
		"geometry": [],
		"density":  [{"temperature_c": 28, "density": 0.9}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, resp.Total)
	assert.Equal(t, map[int]float64{1: 0, 2: 0}, resp.Volumes)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, cpo.SkipNoReferenceData, resp.Skipped[0].Reason)
}

func TestCalculateCPO_RoundsForDisplay(t *testing.T) {
	rec, resp := postCalculate(t, `{
		"readings": [{"tank_no": 3, "oil_level": 333.3, "temperature": 41}],
		"geometry": [{"tank_no": 3, "height_m": 7, "volume_m3": 100}],
		"density":  [{"temperature_c": 40, "density": 0.8961}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	expected := cpo.SafeRound(333.3*(100.0/7/100)*0.8961, 3)
	assert.Equal(t, expected, resp.Total)
	assert.Equal(t, cpo.DensityBelow, resp.Tanks[0].DensitySource)
}

func TestCalculateCPO_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"readings": [`, http.StatusBadRequest},
		{"duplicate tank", `{"readings": [{"tank_no": 1}, {"tank_no": "1"}], "geometry": [], "density": []}`, http.StatusBadRequest},
		{"stored tables without database", `{"readings": [{"tank_no": 1, "oil_level": 1, "temperature": 30}]}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := postCalculate(t, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestCalculateCPO_MalformedZeroTanksAreAllowed(t *testing.T) {
	rec, resp := postCalculate(t, `{
		"readings": [{"tank_no": "", "oil_level": 10, "temperature": 30}, {"tank_no": null, "oil_level": 20, "temperature": 30}],
		"geometry": [{"tank_no": 1, "height_m": 10, "volume_m3": 500}],
		"density":  [{"temperature_c": 30, "density": 0.9}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[int]float64{0: 0}, resp.Volumes)
	assert.Len(t, resp.Skipped, 2)
}

func TestSanitizeNumeric(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"default allows decimal", `{"value": "1,234.56"}`, "1234.56"},
		{"collapses points", `{"value": "12.34.56", "allow_decimal": true}`, "12.3456"},
		{"decimals disallowed", `{"value": "1,234.56", "allow_decimal": false}`, "123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/qac/numeric/sanitize", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			SanitizeNumeric(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var out map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, tt.expected, out["value"])
		})
	}
}

func TestCalculateCPO_OverflowingGeometryDegradesToZero(t *testing.T) {
	rec, resp := postCalculate(t, `{
		"readings": [{"tank_no": 1, "oil_level": 100, "temperature": 30}],
		"geometry": [{"tank_no": 1, "height_m": 1e-300, "volume_m3": 1e300}],
		"density":  [{"temperature_c": 30, "density": 0.9}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
	assert.Equal(t, 0.0, resp.Total)
	assert.Equal(t, map[int]float64{1: 0}, resp.Volumes)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, cpo.SkipNoGeometry, resp.Skipped[0].Reason)
}
