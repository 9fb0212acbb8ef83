package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/qac/models"
	"p9e.in/qac/pkg/cpo"
)

func TestLoadDefaultDensity(t *testing.T) {
	points, err := LoadDefaultDensity()
	require.NoError(t, err)
	require.NotEmpty(t, points)

	seen := map[int]bool{}
	for i, p := range points {
		assert.False(t, seen[p.TemperatureC], "duplicate temperature %d", p.TemperatureC)
		seen[p.TemperatureC] = true
		assert.Greater(t, p.Density, 0.85)
		assert.Less(t, p.Density, 0.95)
		if i > 0 {
			assert.Less(t, p.Density, points[i-1].Density, "density should fall as temperature rises")
		}
	}

	d, src := cpo.ResolveDensity(models.EngineDensity(points), 60)
	assert.Equal(t, cpo.DensityExact, src)
	assert.InDelta(t, cpo.FallbackDensity, d, 0.001)
}

func TestLoadDefaultTanks(t *testing.T) {
	tanks, err := LoadDefaultTanks()
	require.NoError(t, err)
	require.NotEmpty(t, tanks)

	for _, tank := range tanks {
		assert.Positive(t, tank.TankNo)
		assert.True(t, tank.IsActive)
		assert.True(t, tank.Engine().Usable(), "tank %d", tank.TankNo)
	}
}
