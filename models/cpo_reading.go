package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/qac/pkg/cpo"
)

// CpoReading is one tank-farm dip session with its computed totals.
type CpoReading struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ReadingDate      JSONTime         `gorm:"column:reading_date;not null;index" json:"readingDate"`
	Shift            string           `gorm:"size:20" json:"shift"`
	Location         string           `gorm:"size:100;index" json:"location"`
	RecordedByID     *uuid.UUID       `gorm:"type:uuid" json:"recordedById,omitempty"`
	RecordedByName   string           `gorm:"size:100" json:"recordedByName"`
	Notes            string           `gorm:"type:text" json:"notes"`
	Attachments      pq.StringArray   `gorm:"type:text[]" json:"attachments"`
	TotalTons        float64          `gorm:"column:total_tons" json:"totalTons"`
	AvgFFA           float64          `gorm:"column:avg_ffa" json:"avgFfa"`
	AvgMoisture      float64          `gorm:"column:avg_moisture" json:"avgMoisture"`
	AvgDOBI          float64          `gorm:"column:avg_dobi" json:"avgDobi"`
	QualityTankCount int              `gorm:"column:quality_tank_count" json:"qualityTankCount"`
	Skipped          datatypes.JSON   `gorm:"type:jsonb" json:"skipped"`
	Tanks            []CpoTankReading `gorm:"foreignKey:CpoReadingID;constraint:OnDelete:CASCADE" json:"tanks"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// CpoTankReading is one tank row of a CpoReading.
type CpoTankReading struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CpoReadingID uuid.UUID `gorm:"type:uuid;not null;index" json:"cpoReadingId"`
	TankNo       int       `gorm:"not null" json:"tankNo"`
	OilLevel     float64   `json:"oilLevel"`
	Temperature  float64   `json:"temperature"`
	FFA          *float64  `gorm:"column:ffa" json:"ffa,omitempty"`
	Moisture     *float64  `json:"moisture,omitempty"`
	DOBI         *float64  `gorm:"column:dobi" json:"dobi,omitempty"`
	DensityUsed  float64   `json:"densityUsed"`
	WeightTons   float64   `json:"weightTons"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *CpoReading) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (c *CpoTankReading) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// EngineReadings converts the tank rows into engine readings, in row order.
func (c *CpoReading) EngineReadings() []cpo.TankReading {
	out := make([]cpo.TankReading, len(c.Tanks))
	for i, t := range c.Tanks {
		out[i] = cpo.TankReading{
			TankNo:      t.TankNo,
			OilLevel:    t.OilLevel,
			Temperature: t.Temperature,
			FFA:         t.FFA,
			Moisture:    t.Moisture,
			DOBI:        t.DOBI,
		}
	}
	return out
}

// ApplyResults copies engine output onto the reading and its tank rows.
// Tanks and vol.Tanks are in the same order since both come from EngineReadings.
func (c *CpoReading) ApplyResults(vol cpo.VolumeResult, quality cpo.QualityAverages) error {
	for i := range c.Tanks {
		if i >= len(vol.Tanks) {
			break
		}
		c.Tanks[i].DensityUsed = vol.Tanks[i].Density
		c.Tanks[i].WeightTons = cpo.SafeRound(vol.Tanks[i].WeightTons, 3)
	}
	c.TotalTons = cpo.SafeRound(vol.Total, 3)
	c.AvgFFA = quality.AvgFFA
	c.AvgMoisture = quality.AvgMoisture
	c.AvgDOBI = quality.AvgDOBI
	c.QualityTankCount = quality.TankCount

	skipped, err := json.Marshal(vol.Skipped)
	if err != nil {
		return err
	}
	c.Skipped = datatypes.JSON(skipped)
	return nil
}

// NewTankRows builds tank rows from normalized readings.
func NewTankRows(readings []cpo.TankReading) []CpoTankReading {
	rows := make([]CpoTankReading, len(readings))
	for i, r := range readings {
		rows[i] = CpoTankReading{
			TankNo:      r.TankNo,
			OilLevel:    r.OilLevel,
			Temperature: r.Temperature,
			FFA:         r.FFA,
			Moisture:    r.Moisture,
			DOBI:        r.DOBI,
		}
	}
	return rows
}
