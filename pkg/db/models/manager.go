package models

import (
	"time"

	"github.com/google/uuid"
)

// Manager is a delegate granted tag-scoped rights over one inventory's
// items. Tags is tri-state: NULL grants unrestricted access, an empty
// string grants access to nothing, and a non-empty list restricts the
// manager to items whose tags are a subset of it. NULL and empty string
// must never be conflated.
type Manager struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InventoryID uuid.UUID `gorm:"column:inventory_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	Email       *string   `gorm:"column:email"`
	Tags        *string   `gorm:"column:tags"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Manager) TableName() string {
	return "managers"
}
