package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/calebmonroy/stocktrail-backend/api/middleware"
	"github.com/calebmonroy/stocktrail-backend/api/responses"
	"github.com/calebmonroy/stocktrail-backend/api/validators"
	inventorysvc "github.com/calebmonroy/stocktrail-backend/internal/inventories"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
)

// CreateInventory handles inventory creation for the authenticated owner.
func CreateInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inventory, err := svc.Create(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, inventory)
	}
}

// ListInventories returns every inventory the caller owns.
func ListInventories(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inventories, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventories)
	}
}

// GetInventory serves the full inventory to its owner and the reduced
// public shape to everyone else.
func GetInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		inventoryID, err := pathUUID(r, "inventoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.UserIDFromContext(r.Context()) != "" {
			userID, err := requestUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if inventory, ownerErr := svc.Get(r.Context(), userID, inventoryID); ownerErr == nil {
				responses.WriteSuccess(w, inventory)
				return
			} else if typed := pkgerrors.As(ownerErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				responses.WriteError(r.Context(), logg, w, ownerErr)
				return
			}
		}

		inventory, err := svc.GetPublic(r.Context(), inventoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inventory)
	}
}

// UpdateInventory merges submitted fields onto the owner's inventory.
func UpdateInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
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

		var payload updateInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inventory, err := svc.Update(r.Context(), userID, inventoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventory)
	}
}

// DeleteInventory removes the owner's inventory and everything under it.
func DeleteInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
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

		if err := svc.Delete(r.Context(), userID, inventoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createInventoryRequest struct {
	Name                     string           `json:"name" validate:"required"`
	Currency                 string           `json:"currency" validate:"omitempty,len=3"`
	GlobalDiscountPercentage *decimal.Decimal `json:"global_discount_percentage,omitempty"`
	DefaultTaxRate           *decimal.Decimal `json:"default_tax_rate,omitempty"`
	IsTaxInclusive           *bool            `json:"is_tax_inclusive,omitempty"`
	Tags                     []string         `json:"tags,omitempty"`
	OmitTags                 []string         `json:"omit_tags,omitempty"`
}

func (r createInventoryRequest) toInput() inventorysvc.CreateInventoryInput {
	input := inventorysvc.CreateInventoryInput{
		Name:           strings.TrimSpace(r.Name),
		Currency:       strings.ToUpper(strings.TrimSpace(r.Currency)),
		IsTaxInclusive: true,
		Tags:           r.Tags,
		OmitTags:       r.OmitTags,
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if r.GlobalDiscountPercentage != nil {
		input.GlobalDiscountPercentage = *r.GlobalDiscountPercentage
	}
	if r.DefaultTaxRate != nil {
		input.DefaultTaxRate = *r.DefaultTaxRate
	}
	if r.IsTaxInclusive != nil {
		input.IsTaxInclusive = *r.IsTaxInclusive
	}
	return input
}

type updateInventoryRequest struct {
	Name                     *string          `json:"name,omitempty"`
	Currency                 *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	GlobalDiscountPercentage *decimal.Decimal `json:"global_discount_percentage,omitempty"`
	DefaultTaxRate           *decimal.Decimal `json:"default_tax_rate,omitempty"`
	IsTaxInclusive           *bool            `json:"is_tax_inclusive,omitempty"`
	Tags                     *[]string        `json:"tags,omitempty"`
	OmitTags                 *[]string        `json:"omit_tags,omitempty"`
}

func (r updateInventoryRequest) toInput() inventorysvc.UpdateInventoryInput {
	return inventorysvc.UpdateInventoryInput{
		Name:                     r.Name,
		Currency:                 r.Currency,
		GlobalDiscountPercentage: r.GlobalDiscountPercentage,
		DefaultTaxRate:           r.DefaultTaxRate,
		IsTaxInclusive:           r.IsTaxInclusive,
		Tags:                     r.Tags,
		OmitTags:                 r.OmitTags,
	}
}
