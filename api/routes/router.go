package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebmonroy/stocktrail-backend/api/controllers"
	"github.com/calebmonroy/stocktrail-backend/api/middleware"
	"github.com/calebmonroy/stocktrail-backend/internal/inventories"
	"github.com/calebmonroy/stocktrail-backend/internal/items"
	"github.com/calebmonroy/stocktrail-backend/internal/managers"
	"github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	"github.com/calebmonroy/stocktrail-backend/internal/transfer"
	"github.com/calebmonroy/stocktrail-backend/pkg/config"
	"github.com/calebmonroy/stocktrail-backend/pkg/db"
	"github.com/calebmonroy/stocktrail-backend/pkg/logger"
	"github.com/calebmonroy/stocktrail-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Inventories inventories.Service
	Managers    managers.Service
	Items       items.Service
	StockLogs   stocklog.Service
	Transfer    transfer.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Owner surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			if redisClient != nil {
				r.Use(middleware.Idempotency(redisClient, logg))
			}

			r.Post("/inventories", controllers.CreateInventory(svcs.Inventories, logg))
			r.Get("/inventories", controllers.ListInventories(svcs.Inventories, logg))
			r.Put("/inventories/{inventoryID}", controllers.UpdateInventory(svcs.Inventories, logg))
			r.Delete("/inventories/{inventoryID}", controllers.DeleteInventory(svcs.Inventories, logg))

			r.Patch("/inventories/{inventoryID}/items/quantities", controllers.DecrementItemQuantities(svcs.Items, logg))
			r.Get("/inventories/{inventoryID}/items/export", controllers.ExportItems(svcs.Transfer, logg))
			r.Post("/inventories/{inventoryID}/items/import", controllers.ImportItems(svcs.Transfer, logg))

			r.Get("/inventories/{inventoryID}/managers", controllers.ListManagers(svcs.Managers, logg))
			r.Post("/inventories/{inventoryID}/managers", controllers.CreateManager(svcs.Managers, logg))

			r.Get("/inventories/{inventoryID}/logs", controllers.ListStockLogs(svcs.StockLogs, logg))

			r.Post("/items", controllers.CreateItem(svcs.Items, logg))
			r.Put("/items/{itemID}", controllers.UpdateItem(svcs.Items, logg))
			r.Delete("/items/{itemID}", controllers.DeleteItem(svcs.Items, logg))

			r.Get("/managers/{managerID}", controllers.GetManager(svcs.Managers, logg))
			r.Put("/managers/{managerID}", controllers.UpdateManager(svcs.Managers, logg))
			r.Delete("/managers/{managerID}", controllers.DeleteManager(svcs.Managers, logg))
		})

		// Mixed surface: the owner sees the full shape, everyone else the
		// public one.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/inventories/{inventoryID}", controllers.GetInventory(svcs.Inventories, logg))
			r.Get("/inventories/{inventoryID}/items", controllers.ListInventoryItems(svcs.Items, logg))
		})

		// Manager capability surface: the manager id in the path is the
		// credential.
		r.Group(func(r chi.Router) {
			r.Get("/managers/{managerID}/items", controllers.ManagerListItems(svcs.Items, logg))
			r.Post("/managers/{managerID}/items", controllers.ManagerCreateItem(svcs.Items, logg))
			r.Put("/managers/{managerID}/items/{itemID}", controllers.ManagerUpdateItem(svcs.Items, logg))
			r.Delete("/managers/{managerID}/items/{itemID}", controllers.ManagerDeleteItem(svcs.Items, logg))
			r.Put("/managers/{managerID}/items/{itemID}/quantity", controllers.ManagerSetItemQuantity(svcs.Items, logg))
		})
	})

	return r
}
