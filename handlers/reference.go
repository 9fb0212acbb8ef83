package handlers

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"p9e.in/qac/config"
	"p9e.in/qac/models"
	"p9e.in/qac/pkg/cpo"
)

var errNoReferenceStore = errors.New("database not connected")

func currentDB() (*gorm.DB, error) {
	if config.DB == nil {
		return nil, errNoReferenceStore
	}
	return config.DB, nil
}

// loadGeometry returns active tank geometry for the engine.
func loadGeometry(db *gorm.DB) ([]cpo.TankGeometry, error) {
	var rows []models.TankGeometry
	if err := db.Where("is_active = ?", true).Order("tank_no").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load tank geometry: %w", err)
	}
	return models.EngineGeometry(rows), nil
}

func loadDensity(db *gorm.DB) ([]cpo.DensityPoint, error) {
	var rows []models.DensityPoint
	if err := db.Order("temperature_c").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load density table: %w", err)
	}
	return models.EngineDensity(rows), nil
}

// referenceTables fills in whichever table the caller did not supply from the database.
func referenceTables(geometry *[]cpo.TankGeometry, density *[]cpo.DensityPoint) ([]cpo.TankGeometry, []cpo.DensityPoint, error) {
	var g []cpo.TankGeometry
	var d []cpo.DensityPoint
	if geometry != nil {
		g = *geometry
	}
	if density != nil {
		d = *density
	}
	if geometry != nil && density != nil {
		return g, d, nil
	}

	db, err := currentDB()
	if err != nil {
		return nil, nil, err
	}
	if geometry == nil {
		if g, err = loadGeometry(db); err != nil {
			return nil, nil, err
		}
	}
	if density == nil {
		if d, err = loadDensity(db); err != nil {
			return nil, nil, err
		}
	}
	return g, d, nil
}

// duplicateTankNo returns the first positive tank number seen twice.
func duplicateTankNo(readings []cpo.TankReading) (int, bool) {
	seen := make(map[int]bool, len(readings))
	for _, r := range readings {
		if r.TankNo <= 0 {
			continue
		}
		if seen[r.TankNo] {
			return r.TankNo, true
		}
		seen[r.TankNo] = true
	}
	return 0, false
}
