package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmonroy/stocktrail-backend/api/middleware"
	"github.com/calebmonroy/stocktrail-backend/api/responses"
	"github.com/calebmonroy/stocktrail-backend/api/validators"
	itemsvc "github.com/calebmonroy/stocktrail-backend/internal/items"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
)

// CreateItem handles item creation for the inventory owner.
func CreateItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateItem merges submitted fields onto an owned item.
func UpdateItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), userID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// DeleteItem removes an item from the caller's inventory.
func DeleteItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListInventoryItems serves one cursor page of an inventory's items. The
// owner sees the full shape; everyone else gets the public one.
func ListInventoryItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		inventoryID, err := pathUUID(r, "inventoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := itemsvc.ListItemsInput{
			Pagination: params,
			ActiveOnly: r.URL.Query().Get("active") == "true",
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), 120),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("tags")); raw != "" {
			for _, tag := range strings.Split(raw, ",") {
				if trimmed := strings.TrimSpace(tag); trimmed != "" {
					input.Tags = append(input.Tags, trimmed)
				}
			}
		}

		if middleware.UserIDFromContext(r.Context()) != "" {
			userID, err := requestUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if page, ownerErr := svc.ListOwner(r.Context(), userID, inventoryID, input); ownerErr == nil {
				responses.WriteSuccess(w, page)
				return
			} else if typed := pkgerrors.As(ownerErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				responses.WriteError(r.Context(), logg, w, ownerErr)
				return
			}
		}

		page, err := svc.ListPublic(r.Context(), inventoryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// DecrementItemQuantities applies the bulk stock consumption request.
func DecrementItemQuantities(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inventoryID, err := pathUUID(r, "inventoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload decrementQuantitiesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.DecrementQuantities(r.Context(), userID, inventoryID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

type createItemRequest struct {
	InventoryID        string           `json:"inventory_id" validate:"required,uuid4"`
	Name               string           `json:"name" validate:"required"`
	Description        *string          `json:"description,omitempty"`
	Images             []string         `json:"images,omitempty"`
	SKU                *string          `json:"sku,omitempty"`
	QuantityInStock    *int             `json:"quantity_in_stock,omitempty" validate:"omitempty,min=0"`
	Price              decimal.Decimal  `json:"price" validate:"required"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	TaxRate            *decimal.Decimal `json:"tax_rate,omitempty"`
	ReorderThreshold   *int             `json:"reorder_threshold,omitempty" validate:"omitempty,min=0"`
	UnitCost           *decimal.Decimal `json:"unit_cost,omitempty"`
	ExternalID         *string          `json:"external_id,omitempty"`
	Tags               []string         `json:"tags,omitempty"`
	OmitTags           []string         `json:"omit_tags,omitempty"`
	InternalNote       *string          `json:"internal_note,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	IsApproved         *bool            `json:"is_approved,omitempty"`
}

func (r createItemRequest) toInput() (itemsvc.CreateItemInput, error) {
	inventoryID, err := uuid.Parse(strings.TrimSpace(r.InventoryID))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory_id")
	}
	return itemsvc.CreateItemInput{
		InventoryID:        inventoryID,
		Name:               strings.TrimSpace(r.Name),
		Description:        r.Description,
		Images:             r.Images,
		SKU:                r.SKU,
		QuantityInStock:    r.QuantityInStock,
		Price:              r.Price,
		DiscountPercentage: r.DiscountPercentage,
		TaxRate:            r.TaxRate,
		ReorderThreshold:   r.ReorderThreshold,
		UnitCost:           r.UnitCost,
		ExternalID:         r.ExternalID,
		Tags:               r.Tags,
		OmitTags:           r.OmitTags,
		InternalNote:       r.InternalNote,
		IsActive:           r.IsActive,
		IsApproved:         r.IsApproved,
	}, nil
}

type updateItemRequest struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Images             *[]string        `json:"images,omitempty"`
	SKU                *string          `json:"sku,omitempty"`
	QuantityInStock    *int             `json:"quantity_in_stock,omitempty" validate:"omitempty,min=0"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	TaxRate            *decimal.Decimal `json:"tax_rate,omitempty"`
	ReorderThreshold   *int             `json:"reorder_threshold,omitempty" validate:"omitempty,min=0"`
	UnitCost           *decimal.Decimal `json:"unit_cost,omitempty"`
	ExternalID         *string          `json:"external_id,omitempty"`
	Tags               *[]string        `json:"tags,omitempty"`
	OmitTags           *[]string        `json:"omit_tags,omitempty"`
	InternalNote       *string          `json:"internal_note,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

func (r updateItemRequest) toInput() itemsvc.UpdateItemInput {
	return itemsvc.UpdateItemInput{
		Name:               r.Name,
		Description:        r.Description,
		Images:             r.Images,
		SKU:                r.SKU,
		QuantityInStock:    r.QuantityInStock,
		Price:              r.Price,
		DiscountPercentage: r.DiscountPercentage,
		TaxRate:            r.TaxRate,
		ReorderThreshold:   r.ReorderThreshold,
		UnitCost:           r.UnitCost,
		ExternalID:         r.ExternalID,
		Tags:               r.Tags,
		OmitTags:           r.OmitTags,
		InternalNote:       r.InternalNote,
		IsActive:           r.IsActive,
	}
}

type decrementQuantitiesRequest struct {
	IDs            []string        `json:"ids" validate:"required,min=1,dive,uuid4"`
	Deltas         []int           `json:"deltas" validate:"required,min=1"`
	IdempotencyKey string          `json:"idempotency_key" validate:"required"`
	Source         string          `json:"source,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

func (r decrementQuantitiesRequest) toInput() (itemsvc.DecrementInput, error) {
	ids := make([]uuid.UUID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return itemsvc.DecrementInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
		}
		ids = append(ids, parsed)
	}

	source := enums.StockUpdateSource(strings.TrimSpace(r.Source))
	if r.Source != "" && !source.IsValid() {
		return itemsvc.DecrementInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid source")
	}

	return itemsvc.DecrementInput{
		ItemIDs:        ids,
		Deltas:         r.Deltas,
		IdempotencyKey: strings.TrimSpace(r.IdempotencyKey),
		Source:         source,
		Metadata:       r.Metadata,
	}, nil
}
