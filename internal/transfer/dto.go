package transfer

import (
	"time"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExportedItem is the storage-agnostic bulk shape: no inventory binding,
// no manager binding, and every delimited column decoded to a list.
type ExportedItem struct {
	ID                 uuid.UUID        `json:"id"`
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
	InternalNote       *string          `json:"internal_note,omitempty"`
	IsActive           bool             `json:"is_active"`
	IsApproved         bool             `json:"is_approved"`
	CreatedAt          time.Time        `json:"created_at"`
}

// ExportResult wraps one inventory's full item dump.
type ExportResult struct {
	Items []ExportedItem `json:"items"`
}

// ImportItem is one inbound record. The list-ish fields accept either a
// native JSON list or a single delimited string, and manager_id is
// accepted but never applied.
type ImportItem struct {
	Name               string            `json:"name"`
	Description        *string           `json:"description"`
	Images             tags.StringOrList `json:"images"`
	SKU                *string           `json:"sku"`
	QuantityInStock    *int              `json:"quantity_in_stock"`
	Price              decimal.Decimal   `json:"price"`
	DiscountPercentage *decimal.Decimal  `json:"discount_percentage"`
	TaxRate            *decimal.Decimal  `json:"tax_rate"`
	ReorderThreshold   *int              `json:"reorder_threshold"`
	UnitCost           *decimal.Decimal  `json:"unit_cost"`
	ExternalID         *string           `json:"external_id"`
	Tags               tags.StringOrList `json:"tags"`
	OmitTags           tags.StringOrList `json:"omit_tags"`
	InternalNote       *string           `json:"internal_note"`
	IsActive           *bool             `json:"is_active"`
	IsApproved         *bool             `json:"is_approved"`
	ManagerID          *uuid.UUID        `json:"manager_id"`
}

// ImportFailure reports one record that could not be imported. The rest
// of the batch is unaffected.
type ImportFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed,omitempty"`
}

// NewExportedItem decodes one persisted item into the bulk shape.
func NewExportedItem(item *models.Item) ExportedItem {
	return ExportedItem{
		ID:                 item.ID,
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
		InternalNote:       item.InternalNote,
		IsActive:           item.IsActive,
		IsApproved:         item.IsApproved,
		CreatedAt:          item.CreatedAt,
	}
}
