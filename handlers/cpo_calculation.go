package handlers

import (
	"fmt"
	"net/http"

	"p9e.in/qac/pkg/cpo"
)

type calculateRequest struct {
	Readings []cpo.ReadingInput `json:"readings"`
	// nil means "use the stored table"; an empty array is used as given.
	Geometry *[]cpo.TankGeometry `json:"geometry"`
	Density  *[]cpo.DensityPoint `json:"density"`
}

type calculateResponse struct {
	Volumes map[int]float64     `json:"volumes"`
	Total   float64             `json:"total"`
	Tanks   []cpo.TankVolume    `json:"tanks"`
	Skipped []cpo.SkippedTank   `json:"skipped"`
	Quality cpo.QualityAverages `json:"quality"`
}

// newCalculateResponse rounds weights to 3 places for display.
func newCalculateResponse(vol cpo.VolumeResult, quality cpo.QualityAverages) calculateResponse {
	resp := calculateResponse{
		Volumes: make(map[int]float64, len(vol.Volumes)),
		Total:   cpo.SafeRound(vol.Total, 3),
		Tanks:   make([]cpo.TankVolume, len(vol.Tanks)),
		Skipped: vol.Skipped,
		Quality: quality,
	}
	for k, v := range vol.Volumes {
		resp.Volumes[k] = cpo.SafeRound(v, 3)
	}
	for i, t := range vol.Tanks {
		t.VolumePerCm = cpo.SafeRound(t.VolumePerCm, 4)
		t.WeightTons = cpo.SafeRound(t.WeightTons, 3)
		resp.Tanks[i] = t
	}
	return resp
}

// CalculateCPO runs the tank volume engine without persisting anything.
func CalculateCPO(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	readings := cpo.NormalizeAll(req.Readings)
	if tankNo, dup := duplicateTankNo(readings); dup {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("tank %d appears more than once", tankNo))
		return
	}

	geometry, density, err := referenceTables(req.Geometry, req.Density)
	if err != nil {
		writeDBError(w, "load reference data", err)
		return
	}

	engine := cpo.NewEngine()
	vol := engine.ComputeVolumes(readings, geometry, density)
	quality := engine.ComputeQualityAverages(readings)

	writeJSON(w, http.StatusOK, newCalculateResponse(vol, quality))
}

type sanitizeRequest struct {
	Value        string `json:"value"`
	AllowDecimal *bool  `json:"allow_decimal"`
}

// SanitizeNumeric exposes the numeric data-entry filter so forms share one rule.
func SanitizeNumeric(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	allow := true
	if req.AllowDecimal != nil {
		allow = *req.AllowDecimal
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": cpo.SanitizeNumericInput(req.Value, allow)})
}
