package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry belonging to exactly one inventory. Tags and
// omit_tags are comma-delimited text; images use the triple-pipe form
// (see pkg/tags). QuantityInStock is nullable: nil means untracked stock.
type Item struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InventoryID        uuid.UUID        `gorm:"column:inventory_id;type:uuid;not null"`
	Name               string           `gorm:"column:name;not null"`
	Description        *string          `gorm:"column:description"`
	Images             *string          `gorm:"column:images"`
	SKU                *string          `gorm:"column:sku"`
	QuantityInStock    *int             `gorm:"column:quantity_in_stock;check:quantity_in_stock IS NULL OR quantity_in_stock >= 0"`
	Price              decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercentage *decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2)"`
	TaxRate            *decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2)"`
	ReorderThreshold   *int             `gorm:"column:reorder_threshold"`
	UnitCost           *decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2)"`
	ExternalID         *string          `gorm:"column:external_id"`
	Tags               *string          `gorm:"column:tags"`
	OmitTags           *string          `gorm:"column:omit_tags"`
	IsActive           bool             `gorm:"column:is_active;not null;default:true"`
	InternalNote       *string          `gorm:"column:internal_note"`
	ManagerID          *uuid.UUID       `gorm:"column:manager_id;type:uuid"`
	IsApproved         bool             `gorm:"column:is_approved;not null;default:false"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}
