package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/qac/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "02092026_create_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users")
			},
		},
		{
			ID: "02092026_create_qac_reference_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.TankGeometry{}, &models.DensityPoint{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("tank_geometries", "density_points")
			},
		},
		{
			ID: "09092026_create_cpo_readings",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.CpoReading{}, &models.CpoTankReading{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("cpo_tank_readings", "cpo_readings")
			},
		},
	})
	return m.Migrate()
}
