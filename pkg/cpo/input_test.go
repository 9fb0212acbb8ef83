package cpo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingInput_Normalize(t *testing.T) {
	raw := `[
		{"tank_no": "1", "oil_level": "1,020.5", "temperature": 45.4, "ffa": "3.2", "moisture": "", "dobi": null},
		{"tank_no": 2.9, "oil_level": 800, "temperature": "51"},
		{"tank_no": "", "oil_level": "abc", "temperature": ""}
	]`
	var inputs []ReadingInput
	require.NoError(t, json.Unmarshal([]byte(raw), &inputs))

	got := NormalizeAll(inputs)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].TankNo)
	assert.Equal(t, 1020.5, got[0].OilLevel)
	assert.Equal(t, 45.4, got[0].Temperature)
	require.NotNil(t, got[0].FFA)
	assert.Equal(t, 3.2, *got[0].FFA)
	assert.Nil(t, got[0].Moisture)
	assert.Nil(t, got[0].DOBI)

	assert.Equal(t, 2, got[1].TankNo)
	assert.Equal(t, 51.0, got[1].Temperature)
	assert.False(t, got[1].HasQuality())

	assert.Equal(t, TankReading{}, got[2])
}

func TestReadingInput_NormalizedFeedsEngine(t *testing.T) {
	inputs := []ReadingInput{
		{TankNo: "1", OilLevel: "100", Temperature: "27.6", FFA: 4.0},
		{TankNo: 2, OilLevel: nil, Temperature: 30, Moisture: "0.1", DOBI: "2"},
	}
	readings := NormalizeAll(inputs)

	res := ComputeVolumes(readings,
		[]TankGeometry{{TankNo: 1, HeightM: 10, VolumeM3: 500}, {TankNo: 2, HeightM: 10, VolumeM3: 500}},
		[]DensityPoint{{TemperatureC: 28, Density: 0.9}})
	assert.InDelta(t, 45.0, res.Total, 1e-9)
	assert.Equal(t, 0.0, res.Volumes[2])

	avg := ComputeQualityAverages(readings)
	assert.Equal(t, 2, avg.TankCount)
	assert.InDelta(t, 0.05, avg.AvgMoisture, 1e-9)
}

func TestReadingInput_StringsMatchNumbers(t *testing.T) {
	tests := []struct {
		name   string
		asText string
		asNum  float64
	}{
		{"negative", "-100", -100},
		{"exponent", "1e3", 1000},
		{"decimal", "27.6", 27.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fromText := ReadingInput{TankNo: 1, OilLevel: tt.asText, Temperature: tt.asText, FFA: tt.asText}.Normalize()
			fromNum := ReadingInput{TankNo: 1, OilLevel: tt.asNum, Temperature: tt.asNum, FFA: tt.asNum}.Normalize()
			assert.Equal(t, fromNum, fromText)
			assert.Equal(t, tt.asNum, fromText.OilLevel)
		})
	}
}
