package controllers

import (
	"net/http"
	"strings"

	"github.com/calebmonroy/stocktrail-backend/api/responses"
	"github.com/calebmonroy/stocktrail-backend/api/validators"
	managersvc "github.com/calebmonroy/stocktrail-backend/internal/managers"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
)

// CreateManager registers a manager under one of the caller's inventories.
func CreateManager(svc managersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manager service unavailable"))
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

		var payload managerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		manager, err := svc.Create(r.Context(), userID, inventoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, manager)
	}
}

// ListManagers returns every manager of one owned inventory.
func ListManagers(svc managersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manager service unavailable"))
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

		managers, err := svc.List(r.Context(), userID, inventoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, managers)
	}
}

// GetManager returns one manager in an owned inventory.
func GetManager(svc managersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manager service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		managerID, err := pathUUID(r, "managerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		manager, err := svc.Get(r.Context(), userID, managerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, manager)
	}
}

// UpdateManager replaces a manager's representation, tag scope included.
func UpdateManager(svc managersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manager service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		managerID, err := pathUUID(r, "managerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload managerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		manager, err := svc.Update(r.Context(), userID, managerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, manager)
	}
}

// DeleteManager removes a manager and releases their item bindings.
func DeleteManager(svc managersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manager service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		managerID, err := pathUUID(r, "managerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, managerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// managerRequest carries the full manager representation. Omitting tags
// leaves the scope unrestricted; an empty list is the explicit deny-all
// scope.
type managerRequest struct {
	Name  string    `json:"name" validate:"required"`
	Email *string   `json:"email,omitempty" validate:"omitempty,email"`
	Tags  *[]string `json:"tags,omitempty"`
}

func (r managerRequest) toInput() managersvc.ManagerInput {
	return managersvc.ManagerInput{
		Name:  strings.TrimSpace(r.Name),
		Email: r.Email,
		Tags:  r.Tags,
	}
}
