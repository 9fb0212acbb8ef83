package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/qac/pkg/cpo"
)

// TankGeometry is the static shape of one CPO storage tank.
// Rows with non-positive height or volume are kept so they can be corrected;
// the volume engine ignores them.
type TankGeometry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TankNo    int       `gorm:"uniqueIndex;not null" json:"tankNo"`
	Name      string    `gorm:"size:100" json:"name"`
	HeightM   float64   `gorm:"column:height_m;not null" json:"heightM"`
	VolumeM3  float64   `gorm:"column:volume_m3;not null" json:"volumeM3"`
	DiameterM *float64  `gorm:"column:diameter_m" json:"diameterM,omitempty"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *TankGeometry) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Engine converts the row to the engine's geometry type.
func (t TankGeometry) Engine() cpo.TankGeometry {
	return cpo.TankGeometry{
		TankNo:    t.TankNo,
		HeightM:   t.HeightM,
		VolumeM3:  t.VolumeM3,
		DiameterM: t.DiameterM,
	}
}

// EngineGeometry converts active rows only.
func EngineGeometry(rows []TankGeometry) []cpo.TankGeometry {
	out := make([]cpo.TankGeometry, 0, len(rows))
	for _, r := range rows {
		if !r.IsActive {
			continue
		}
		out = append(out, r.Engine())
	}
	return out
}
