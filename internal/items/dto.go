package items

import (
	"time"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is the full item payload served to the inventory owner and to
// the item's manager.
type ItemDTO struct {
	ID                 uuid.UUID        `json:"id"`
	InventoryID        uuid.UUID        `json:"inventory_id"`
	Name               string           `json:"name"`
	Description        *string          `json:"description,omitempty"`
	Images             []string         `json:"images"`
	SKU                *string          `json:"sku,omitempty"`
	QuantityInStock    *int             `json:"quantity_in_stock"`
	Price              decimal.Decimal  `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	TaxRate            *decimal.Decimal `json:"tax_rate,omitempty"`
	ReorderThreshold   *int             `json:"reorder_threshold,omitempty"`
	UnitCost           *decimal.Decimal `json:"unit_cost,omitempty"`
	ExternalID         *string          `json:"external_id,omitempty"`
	Tags               []string         `json:"tags"`
	OmitTags           []string         `json:"omit_tags"`
	IsActive           bool             `json:"is_active"`
	InternalNote       *string          `json:"internal_note,omitempty"`
	ManagerID          *uuid.UUID       `json:"manager_id,omitempty"`
	IsApproved         bool             `json:"is_approved"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PublicItemDTO is the reduced shape served to everyone else: no internal
// note, manager binding, costs, thresholds, or approval state.
type PublicItemDTO struct {
	ID                 uuid.UUID        `json:"id"`
	InventoryID        uuid.UUID        `json:"inventory_id"`
	Name               string           `json:"name"`
	Description        *string          `json:"description,omitempty"`
	Images             []string         `json:"images"`
	SKU                *string          `json:"sku,omitempty"`
	QuantityInStock    *int             `json:"quantity_in_stock"`
	Price              decimal.Decimal  `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	TaxRate            *decimal.Decimal `json:"tax_rate,omitempty"`
	Tags               []string         `json:"tags"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
}

// QuantityResult reports the applied mutation for one item in a bulk
// decrement. Skipped items never appear.
type QuantityResult struct {
	ItemID         uuid.UUID `json:"item_id"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Replayed       bool      `json:"replayed,omitempty"`
}

// ItemListResult is one cursor page of owner or public item DTOs.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// PublicItemListResult is one cursor page of public item DTOs.
type PublicItemListResult struct {
	Items      []PublicItemDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewItemDTO builds the full DTO from the persisted model.
func NewItemDTO(item *models.Item) *ItemDTO {
	return &ItemDTO{
		ID:                 item.ID,
		InventoryID:        item.InventoryID,
		Name:               item.Name,
		Description:        item.Description,
		Images:             tags.NormalizeImages(item.Images),
		SKU:                item.SKU,
		QuantityInStock:    item.QuantityInStock,
		Price:              item.Price,
		DiscountPercentage: item.DiscountPercentage,
		TaxRate:            item.TaxRate,
		ReorderThreshold:   item.ReorderThreshold,
		UnitCost:           item.UnitCost,
		ExternalID:         item.ExternalID,
		Tags:               tags.Split(item.Tags),
		OmitTags:           tags.Split(item.OmitTags),
		IsActive:           item.IsActive,
		InternalNote:       item.InternalNote,
		ManagerID:          item.ManagerID,
		IsApproved:         item.IsApproved,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

// NewPublicItemDTO builds the reduced DTO from the persisted model.
func NewPublicItemDTO(item *models.Item) *PublicItemDTO {
	return &PublicItemDTO{
		ID:                 item.ID,
		InventoryID:        item.InventoryID,
		Name:               item.Name,
		Description:        item.Description,
		Images:             tags.NormalizeImages(item.Images),
		SKU:                item.SKU,
		QuantityInStock:    item.QuantityInStock,
		Price:              item.Price,
		DiscountPercentage: item.DiscountPercentage,
		TaxRate:            item.TaxRate,
		Tags:               tags.Split(item.Tags),
		IsActive:           item.IsActive,
		CreatedAt:          item.CreatedAt,
	}
}
