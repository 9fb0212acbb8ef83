package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/qac/pkg/cpo"
)

// DensityPoint is one row of the CPO temperature to density table (ton/m³).
type DensityPoint struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TemperatureC int       `gorm:"column:temperature_c;uniqueIndex;not null" json:"temperatureC"`
	Density      float64   `gorm:"not null" json:"density"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d *DensityPoint) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

func EngineDensity(rows []DensityPoint) []cpo.DensityPoint {
	out := make([]cpo.DensityPoint, len(rows))
	for i, r := range rows {
		out[i] = cpo.DensityPoint{TemperatureC: r.TemperatureC, Density: r.Density}
	}
	return out
}
