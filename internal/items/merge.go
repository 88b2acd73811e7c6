package items

import (
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	InventoryID        uuid.UUID
	Name               string
	Description        *string
	Images             []string
	SKU                *string
	QuantityInStock    *int
	Price              decimal.Decimal
	DiscountPercentage *decimal.Decimal
	TaxRate            *decimal.Decimal
	ReorderThreshold   *int
	UnitCost           *decimal.Decimal
	ExternalID         *string
	Tags               []string
	OmitTags           []string
	InternalNote       *string
	IsActive           *bool
	IsApproved         *bool
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name               *string
	Description        *string
	Images             *[]string
	SKU                *string
	QuantityInStock    *int
	Price              *decimal.Decimal
	DiscountPercentage *decimal.Decimal
	TaxRate            *decimal.Decimal
	ReorderThreshold   *int
	UnitCost           *decimal.Decimal
	ExternalID         *string
	Tags               *[]string
	OmitTags           *[]string
	InternalNote       *string
	IsActive           *bool
}

// newItemFromInput maps the create payload onto a fresh model. IsActive
// defaults to true; approval and manager binding are decided by the caller
// path, not the payload.
func newItemFromInput(input CreateItemInput) *models.Item {
	item := &models.Item{
		InventoryID:        input.InventoryID,
		Name:               input.Name,
		Description:        input.Description,
		Images:             tags.JoinImages(input.Images),
		SKU:                input.SKU,
		QuantityInStock:    input.QuantityInStock,
		Price:              input.Price,
		DiscountPercentage: input.DiscountPercentage,
		TaxRate:            input.TaxRate,
		ReorderThreshold:   input.ReorderThreshold,
		UnitCost:           input.UnitCost,
		ExternalID:         input.ExternalID,
		Tags:               tags.Join(input.Tags),
		OmitTags:           tags.Join(input.OmitTags),
		InternalNote:       input.InternalNote,
		IsActive:           true,
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	return item
}

// applyItemInput merges exactly the externally settable fields onto the
// loaded item. Inventory binding, approval, and manager binding are never
// merged here; the forced steps below own those.
func applyItemInput(item *models.Item, input UpdateItemInput) {
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Images != nil {
		item.Images = tags.JoinImages(*input.Images)
	}
	if input.SKU != nil {
		item.SKU = input.SKU
	}
	if input.QuantityInStock != nil {
		item.QuantityInStock = input.QuantityInStock
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.DiscountPercentage != nil {
		item.DiscountPercentage = input.DiscountPercentage
	}
	if input.TaxRate != nil {
		item.TaxRate = input.TaxRate
	}
	if input.ReorderThreshold != nil {
		item.ReorderThreshold = input.ReorderThreshold
	}
	if input.UnitCost != nil {
		item.UnitCost = input.UnitCost
	}
	if input.ExternalID != nil {
		item.ExternalID = input.ExternalID
	}
	if input.Tags != nil {
		item.Tags = tags.Join(*input.Tags)
	}
	if input.OmitTags != nil {
		item.OmitTags = tags.Join(*input.OmitTags)
	}
	if input.InternalNote != nil {
		item.InternalNote = input.InternalNote
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
}

// forceOwnerApproval marks the item owner-reviewed. Every owner write runs
// this after the merge, approving whatever state the item is in.
func forceOwnerApproval(item *models.Item) {
	item.IsApproved = true
}

// forceManagerOwnership pins the item to the acting manager regardless of
// submitted values.
func forceManagerOwnership(item *models.Item, managerID uuid.UUID) {
	id := managerID
	item.ManagerID = &id
}

// retireFromListing deactivates the item pending owner re-activation.
// Distinct from the approval flag.
func retireFromListing(item *models.Item) {
	item.IsActive = false
}
