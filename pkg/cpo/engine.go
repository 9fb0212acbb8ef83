package cpo

import "math"

// FallbackDensity is used when the density table has no entry at, just below or just above
// the rounded temperature. Units are ton/m³.
const FallbackDensity = 0.8841

// TankReading is one tank's measurement, already normalised to strict numeric types.
// A nil quality pointer means the metric was not reported.
type TankReading struct {
	TankNo      int      `json:"tank_no"`
	OilLevel    float64  `json:"oil_level"`
	Temperature float64  `json:"temperature"`
	FFA         *float64 `json:"ffa,omitempty"`
	Moisture    *float64 `json:"moisture,omitempty"`
	DOBI        *float64 `json:"dobi,omitempty"`
}

// HasQuality reports whether at least one quality metric was reported.
func (r TankReading) HasQuality() bool {
	return r.FFA != nil || r.Moisture != nil || r.DOBI != nil
}

// TankGeometry is the static shape of a tank. DiameterM is descriptive only.
type TankGeometry struct {
	TankNo    int      `json:"tank_no"`
	HeightM   float64  `json:"height_m"`
	VolumeM3  float64  `json:"volume_m3"`
	DiameterM *float64 `json:"diameter_m,omitempty"`
}

// Usable reports whether the entry can be used in the volume formula.
func (g TankGeometry) Usable() bool {
	if !(g.HeightM > 0 && g.VolumeM3 > 0) {
		return false
	}
	return isFinite(g.VolumePerCm())
}

// VolumePerCm is cubic meters of oil per centimeter of level.
func (g TankGeometry) VolumePerCm() float64 {
	return g.VolumeM3 / g.HeightM / 100
}

// DensityPoint maps a whole-degree temperature to oil density.
type DensityPoint struct {
	TemperatureC int     `json:"temperature_c"`
	Density      float64 `json:"density"`
}

// DensitySource tells which rule resolved a density.
type DensitySource string

const (
	DensityExact    DensitySource = "exact"
	DensityBelow    DensitySource = "below"
	DensityAbove    DensitySource = "above"
	DensityFallback DensitySource = "fallback"
)

// SkipReason explains why a tank contributed zero weight.
type SkipReason string

const (
	SkipNoReferenceData SkipReason = "no_reference_data"
	SkipInvalidTankNo   SkipReason = "invalid_tank_no"
	SkipNoOilLevel      SkipReason = "no_oil_level"
	SkipNoTemperature   SkipReason = "no_temperature"
	SkipNoGeometry      SkipReason = "no_geometry"
	SkipNonFiniteWeight SkipReason = "non_finite_weight"
)

// SkippedTank is a diagnostic entry for a zeroed reading.
type SkippedTank struct {
	TankNo int        `json:"tank_no"`
	Reason SkipReason `json:"reason"`
}

// TankVolume is the per-reading calculation detail, in input order.
type TankVolume struct {
	TankNo        int           `json:"tank_no"`
	Temperature   int           `json:"temperature"`
	VolumePerCm   float64       `json:"volume_per_cm"`
	Density       float64       `json:"density"`
	DensitySource DensitySource `json:"density_source,omitempty"`
	WeightTons    float64       `json:"weight_tons"`
	SkipReason    SkipReason    `json:"skip_reason,omitempty"`
}

// VolumeResult holds the weight of every reading keyed by tank number and their sum.
type VolumeResult struct {
	Volumes map[int]float64 `json:"volumes"`
	Total   float64         `json:"total"`
	Tanks   []TankVolume    `json:"tanks"`
	Skipped []SkippedTank   `json:"skipped"`
}

// QualityAverages are the 2dp means over tanks that reported any quality metric.
type QualityAverages struct {
	AvgFFA      float64 `json:"avg_ffa"`
	AvgMoisture float64 `json:"avg_moisture"`
	AvgDOBI     float64 `json:"avg_dobi"`
	TankCount   int     `json:"tank_count"`
}

// Engine converts tank readings into oil mass and quality averages.
// It keeps no state; the zero value is ready to use from any goroutine.
type Engine struct{}

// NewEngine returns an Engine
func NewEngine() Engine {
	return Engine{}
}

// ComputeVolumes derives per-tank weight in tons and the total.
// It never fails: unusable readings are recorded with zero weight and listed in Skipped.
// Tank numbers are expected to be unique; a repeated number keeps the last weight in
// Volumes while Total still adds every reading.
func (Engine) ComputeVolumes(readings []TankReading, geometry []TankGeometry, densityTable []DensityPoint) VolumeResult {
	result := VolumeResult{
		Volumes: make(map[int]float64, len(readings)),
		Tanks:   make([]TankVolume, 0, len(readings)),
		Skipped: []SkippedTank{},
	}

	skip := func(tankNo, temp int, reason SkipReason) {
		result.Volumes[tankNo] = 0
		result.Tanks = append(result.Tanks, TankVolume{TankNo: tankNo, Temperature: temp, SkipReason: reason})
		result.Skipped = append(result.Skipped, SkippedTank{TankNo: tankNo, Reason: reason})
	}

	// Without both reference tables nothing can be converted.
	if len(geometry) == 0 || len(densityTable) == 0 {
		for _, r := range readings {
			skip(normalizeTankNo(r.TankNo), roundTemperature(r.Temperature), SkipNoReferenceData)
		}
		return result
	}

	tanks := indexGeometry(geometry)
	densities := indexDensity(densityTable)

	for _, r := range readings {
		tankNo := normalizeTankNo(r.TankNo)
		temp := roundTemperature(r.Temperature)

		if tankNo == 0 {
			skip(tankNo, temp, SkipInvalidTankNo)
			continue
		}
		if r.OilLevel == 0 || math.IsNaN(r.OilLevel) {
			skip(tankNo, temp, SkipNoOilLevel)
			continue
		}
		// 0°C is indistinguishable from a missing reading.
		if temp == 0 {
			skip(tankNo, temp, SkipNoTemperature)
			continue
		}
		g, ok := tanks[tankNo]
		if !ok {
			skip(tankNo, temp, SkipNoGeometry)
			continue
		}

		density, source := lookupDensity(densities, temp)
		perCm := g.VolumePerCm()
		weight := r.OilLevel * perCm * density
		if !isFinite(weight) {
			skip(tankNo, temp, SkipNonFiniteWeight)
			continue
		}

		result.Volumes[tankNo] = weight
		result.Total += weight
		result.Tanks = append(result.Tanks, TankVolume{
			TankNo:        tankNo,
			Temperature:   temp,
			VolumePerCm:   perCm,
			Density:       density,
			DensitySource: source,
			WeightTons:    weight,
		})
	}

	return result
}

// ComputeQualityAverages averages FFA, moisture and DOBI over the tanks that reported
// at least one of them. A metric missing on an included tank counts as 0 for that metric.
func (Engine) ComputeQualityAverages(readings []TankReading) QualityAverages {
	var sumFFA, sumMoisture, sumDOBI float64
	count := 0
	for _, r := range readings {
		if !r.HasQuality() {
			continue
		}
		count++
		sumFFA += valueOrZero(r.FFA)
		sumMoisture += valueOrZero(r.Moisture)
		sumDOBI += valueOrZero(r.DOBI)
	}
	if count == 0 {
		return QualityAverages{}
	}

	n := float64(count)
	return QualityAverages{
		AvgFFA:      SafeRound(sumFFA/n, 2),
		AvgMoisture: SafeRound(sumMoisture/n, 2),
		AvgDOBI:     SafeRound(sumDOBI/n, 2),
		TankCount:   count,
	}
}

// ComputeVolumes runs Engine.ComputeVolumes.
func ComputeVolumes(readings []TankReading, geometry []TankGeometry, densityTable []DensityPoint) VolumeResult {
	return Engine{}.ComputeVolumes(readings, geometry, densityTable)
}

// ComputeQualityAverages runs Engine.ComputeQualityAverages.
func ComputeQualityAverages(readings []TankReading) QualityAverages {
	return Engine{}.ComputeQualityAverages(readings)
}

// ResolveDensity picks the density for a rounded temperature: exact match, then one degree
// below, then one degree above, then FallbackDensity.
func ResolveDensity(densityTable []DensityPoint, temperature int) (float64, DensitySource) {
	return lookupDensity(indexDensity(densityTable), temperature)
}

func lookupDensity(densities map[int]float64, temp int) (float64, DensitySource) {
	if d, ok := densities[temp]; ok {
		return d, DensityExact
	}
	if d, ok := densities[temp-1]; ok {
		return d, DensityBelow
	}
	if d, ok := densities[temp+1]; ok {
		return d, DensityAbove
	}
	return FallbackDensity, DensityFallback
}

// indexGeometry keeps the first usable entry per tank.
func indexGeometry(geometry []TankGeometry) map[int]TankGeometry {
	out := make(map[int]TankGeometry, len(geometry))
	for _, g := range geometry {
		if !g.Usable() {
			continue
		}
		if _, exists := out[g.TankNo]; !exists {
			out[g.TankNo] = g
		}
	}
	return out
}

func indexDensity(table []DensityPoint) map[int]float64 {
	out := make(map[int]float64, len(table))
	for _, p := range table {
		if _, exists := out[p.TemperatureC]; !exists {
			out[p.TemperatureC] = p.Density
		}
	}
	return out
}

func normalizeTankNo(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func roundTemperature(t float64) int {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return int(math.Round(t))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
