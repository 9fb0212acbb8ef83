// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles that may change reference data.
const (
	RoleSuperAdmin = "Super Admin"
	RoleQAManager  = "QA Manager"
	RoleQAAnalyst  = "QA Analyst"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"`
	Phone        string    `gorm:"size:15;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:50;not null;default:'QA Analyst'"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// CanEditReference reports whether the user may change tank geometry or density data
func (u *User) CanEditReference() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleQAManager
}
