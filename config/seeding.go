package config

import (
	"embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"p9e.in/qac/models"
)

//go:embed reference/*.yaml
var referenceFS embed.FS

type densitySeed struct {
	Density []struct {
		TemperatureC int     `yaml:"temperature_c"`
		Density      float64 `yaml:"density"`
	} `yaml:"density"`
}

type tankSeed struct {
	Tanks []struct {
		TankNo    int      `yaml:"tank_no"`
		Name      string   `yaml:"name"`
		HeightM   float64  `yaml:"height_m"`
		VolumeM3  float64  `yaml:"volume_m3"`
		DiameterM *float64 `yaml:"diameter_m"`
	} `yaml:"tanks"`
}

// LoadDefaultDensity parses the embedded density table.
func LoadDefaultDensity() ([]models.DensityPoint, error) {
	data, err := referenceFS.ReadFile("reference/density.yaml")
	if err != nil {
		return nil, fmt.Errorf("read density seed: %w", err)
	}
	var seed densitySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse density seed: %w", err)
	}
	points := make([]models.DensityPoint, 0, len(seed.Density))
	for _, d := range seed.Density {
		points = append(points, models.DensityPoint{TemperatureC: d.TemperatureC, Density: d.Density})
	}
	return points, nil
}

// LoadDefaultTanks parses the embedded tank farm geometry.
func LoadDefaultTanks() ([]models.TankGeometry, error) {
	data, err := referenceFS.ReadFile("reference/tanks.yaml")
	if err != nil {
		return nil, fmt.Errorf("read tank seed: %w", err)
	}
	var seed tankSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse tank seed: %w", err)
	}
	tanks := make([]models.TankGeometry, 0, len(seed.Tanks))
	for _, t := range seed.Tanks {
		tanks = append(tanks, models.TankGeometry{
			TankNo:    t.TankNo,
			Name:      t.Name,
			HeightM:   t.HeightM,
			VolumeM3:  t.VolumeM3,
			DiameterM: t.DiameterM,
			IsActive:  true,
		})
	}
	return tanks, nil
}

// SeedReferenceData fills the density and tank tables from the embedded defaults.
// A table that already holds rows is left alone.
func SeedReferenceData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.DensityPoint{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count density points: %w", err)
	}
	if count == 0 {
		points, err := LoadDefaultDensity()
		if err != nil {
			return err
		}
		if err := db.Create(&points).Error; err != nil {
			return fmt.Errorf("seed density points: %w", err)
		}
		Log.Info("Seeded density table", zap.Int("rows", len(points)))
	} else {
		Log.Debug("Density table already populated", zap.Int64("rows", count))
	}

	if err := db.Model(&models.TankGeometry{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count tanks: %w", err)
	}
	if count == 0 {
		tanks, err := LoadDefaultTanks()
		if err != nil {
			return err
		}
		if err := db.Create(&tanks).Error; err != nil {
			return fmt.Errorf("seed tanks: %w", err)
		}
		Log.Info("Seeded tank geometry", zap.Int("tanks", len(tanks)))
	} else {
		Log.Debug("Tank geometry already populated", zap.Int64("tanks", count))
	}
	return nil
}
