package controllers

import (
	"net/http"

	"github.com/calebmonroy/stocktrail-backend/api/responses"
	stocklogsvc "github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
)

// ListStockLogs serves one cursor page of the inventory's audit ledger,
// newest first.
func ListStockLogs(svc stocklogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock log service unavailable"))
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

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, inventoryID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
