package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inventory is the tenant root: a user-owned catalog of items with shared
// currency, discount, and tax defaults. Items, managers, and stock update
// logs cascade when an inventory is deleted.
type Inventory struct {
	ID                       uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                   uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Name                     string           `gorm:"column:name;not null"`
	Currency                 string           `gorm:"column:currency;not null"`
	GlobalDiscountPercentage decimal.Decimal  `gorm:"column:global_discount_percentage;type:numeric(5,2);not null;default:0"`
	DefaultTaxRate           decimal.Decimal  `gorm:"column:default_tax_rate;type:numeric(5,2);not null;default:0"`
	IsTaxInclusive           bool             `gorm:"column:is_tax_inclusive;not null;default:true"`
	Tags                     *string          `gorm:"column:tags"`
	OmitTags                 *string          `gorm:"column:omit_tags"`
	Items                    []Item           `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE"`
	Managers                 []Manager        `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE"`
	UpdateLogs               []StockUpdateLog `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE"`
	CreatedAt                time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string {
	return "inventories"
}
