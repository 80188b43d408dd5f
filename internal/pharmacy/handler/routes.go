package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/permissions"
)

// Handlers groups every pharmacy handler
type Handlers struct {
	Products      *ProductHandler
	Catalog       *CatalogHandler
	People        *PeopleHandler
	Inventory     *InventoryHandler
	Restocks      *RestockHandler
	Prescriptions *PrescriptionHandler
	Interactions  *InteractionHandler
	Alerts        *AlertHandler
	Notifications *NotificationHandler
	Orders        *OrderHandler
}

// New creates the handlers for svc
func New(svc *service.Services, log *logger.Logger) *Handlers {
	return &Handlers{
		Products:      NewProductHandler(svc.Products, svc.Alternatives, svc.Interactions, log),
		Catalog:       NewCatalogHandler(svc.Catalog, log),
		People:        NewPeopleHandler(svc.People, log),
		Inventory:     NewInventoryHandler(svc.Inventory, log),
		Restocks:      NewRestockHandler(svc.Restocks, log),
		Prescriptions: NewPrescriptionHandler(svc.Prescriptions, log),
		Interactions:  NewInteractionHandler(svc.Interactions, log),
		Alerts:        NewAlertHandler(svc.Alerts, log),
		Notifications: NewNotificationHandler(svc.Notifications, log),
		Orders:        NewOrderHandler(svc.Orders, log),
	}
}

// Routes mounts the pharmacy API on r. Callers authenticate requests
// before they reach r; each route checks its own permission.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.ProductsRead), httputil.UUIDParams)
			r.Get("/", h.Products.List)
			r.Get("/{id}", h.Products.Get)
			r.Get("/{id}/alternatives", h.Products.ListAlternatives)
			r.Get("/{id}/alternatives/recommended", h.Products.RecommendedAlternatives)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.ProductsWrite), httputil.UUIDParams)
			r.Post("/", h.Products.Create)
			r.Put("/{id}", h.Products.Update)
			r.Delete("/{id}", h.Products.Delete)
			r.Post("/{id}/image", h.Products.UploadImage)
			r.Post("/{id}/alternatives", h.Products.AddAlternative)
			r.Delete("/{id}/alternatives/{altId}", h.Products.RemoveAlternative)
		})
		r.With(httputil.RequirePermission(permissions.InteractionsRead), httputil.UUIDParams).Get("/{id}/interactions", h.Products.ListInteractions)
	})

	r.Route("/categories", func(r chi.Router) {
		crud(r, permissions.CatalogRead, permissions.CatalogWrite, resource{
			list: h.Catalog.ListCategories, get: h.Catalog.GetCategory, create: h.Catalog.CreateCategory,
			update: h.Catalog.UpdateCategory, remove: h.Catalog.DeleteCategory,
		})
	})
	r.Route("/suppliers", func(r chi.Router) {
		crud(r, permissions.CatalogRead, permissions.CatalogWrite, resource{
			list: h.Catalog.ListSuppliers, get: h.Catalog.GetSupplier, create: h.Catalog.CreateSupplier,
			update: h.Catalog.UpdateSupplier, remove: h.Catalog.DeleteSupplier,
		})
	})
	r.Route("/branches", func(r chi.Router) {
		crud(r, permissions.CatalogRead, permissions.CatalogWrite, resource{
			list: h.Catalog.ListBranches, get: h.Catalog.GetBranch, create: h.Catalog.CreateBranch,
			update: h.Catalog.UpdateBranch, remove: h.Catalog.DeleteBranch,
		})
	})
	r.Route("/employees", func(r chi.Router) {
		crud(r, permissions.PeopleRead, permissions.PeopleWrite, resource{
			list: h.People.ListEmployees, get: h.People.GetEmployee, create: h.People.CreateEmployee,
			update: h.People.UpdateEmployee, remove: h.People.DeleteEmployee,
		})
	})
	r.Route("/customers", func(r chi.Router) {
		crud(r, permissions.PeopleRead, permissions.PeopleWrite, resource{
			list: h.People.ListCustomers, get: h.People.GetCustomer, create: h.People.CreateCustomer,
			update: h.People.UpdateCustomer, remove: h.People.DeleteCustomer,
		})
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.InventoryRead), httputil.UUIDParams)
			r.Get("/", h.Inventory.List)
			r.Get("/low-stock", h.Inventory.ListLowStock)
			r.Get("/{id}", h.Inventory.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.InventoryWrite), httputil.UUIDParams)
			r.Post("/", h.Inventory.Create)
			r.Put("/{id}", h.Inventory.Update)
		})
		r.With(httputil.RequirePermission(permissions.InventoryAdjust), httputil.UUIDParams).Post("/{id}/adjust", h.Inventory.Adjust)
	})

	r.Route("/stocks", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.InventoryRead), httputil.UUIDParams)
			r.Get("/", h.Inventory.ListStocks)
			r.Get("/expiring", h.Inventory.ListExpiring)
			r.Get("/{id}", h.Inventory.GetStock)
		})
		r.With(httputil.RequirePermission(permissions.InventoryWrite), httputil.UUIDParams).Post("/", h.Inventory.ReceiveStock)
	})

	r.Route("/restock-requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.RestockRead), httputil.UUIDParams)
			r.Get("/", h.Restocks.List)
			r.Get("/{id}", h.Restocks.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.RestockWrite), httputil.UUIDParams)
			r.Post("/", h.Restocks.Create)
			r.Post("/{id}/cancel", h.Restocks.Cancel)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.RestockApprove), httputil.UUIDParams)
			r.Post("/approve", h.Restocks.BulkApprove)
			r.Post("/{id}/approve", h.Restocks.Approve)
			r.Post("/{id}/reject", h.Restocks.Reject)
		})
		r.With(httputil.RequirePermission(permissions.InventoryWrite), httputil.UUIDParams).Post("/{id}/fulfill", h.Restocks.Fulfill)
	})

	r.Route("/prescriptions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.PrescriptionsRead), httputil.UUIDParams)
			r.Get("/", h.Prescriptions.List)
			r.Get("/{id}", h.Prescriptions.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.PrescriptionsWrite), httputil.UUIDParams)
			r.Post("/", h.Prescriptions.Create)
			r.Put("/{id}", h.Prescriptions.Update)
			r.Post("/{id}/document", h.Prescriptions.UploadDocument)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.PrescriptionsApprove), httputil.UUIDParams)
			r.Post("/{id}/approve", h.Prescriptions.Approve)
			r.Post("/{id}/reject", h.Prescriptions.Reject)
		})
	})

	r.Route("/drug-interactions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.InteractionsRead), httputil.UUIDParams)
			r.Get("/", h.Interactions.List)
			r.Get("/between", h.Interactions.Between)
			r.Post("/check", h.Interactions.Check)
			r.Get("/{id}", h.Interactions.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.InteractionsWrite), httputil.UUIDParams)
			r.Post("/", h.Interactions.Create)
			r.Delete("/{id}", h.Interactions.Delete)
		})
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.AlertsRead), httputil.UUIDParams)
			r.Get("/", h.Alerts.List)
			r.Get("/{id}", h.Alerts.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.AlertsManage), httputil.UUIDParams)
			r.Post("/", h.Alerts.Create)
			r.Post("/resolve", h.Alerts.BulkResolve)
			r.Delete("/resolved", h.Alerts.CleanupResolved)
			r.Post("/{id}/resolve", h.Alerts.Resolve)
			r.Post("/{id}/reopen", h.Alerts.Reopen)
			r.Post("/{id}/ignore", h.Alerts.Ignore)
		})
	})

	// Any authenticated user reads their own notifications.
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.Notifications.List)
		r.Post("/read-all", h.Notifications.MarkAllRead)
		r.With(httputil.UUIDParams).Post("/{id}/read", h.Notifications.MarkRead)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.OrdersRead), httputil.UUIDParams)
			r.Get("/", h.Orders.List)
			r.Get("/{id}", h.Orders.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(httputil.RequirePermission(permissions.OrdersWrite), httputil.UUIDParams)
			r.Post("/", h.Orders.Create)
			r.Post("/{id}/confirm", h.Orders.Confirm)
			r.Post("/{id}/complete", h.Orders.Complete)
			r.Post("/{id}/cancel", h.Orders.Cancel)
		})
	})
}

// resource is a plain CRUD endpoint set
type resource struct {
	list, get, create, update, remove http.HandlerFunc
}

func crud(r chi.Router, readPerm, writePerm string, res resource) {
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequirePermission(readPerm), httputil.UUIDParams)
		r.Get("/", res.list)
		r.Get("/{id}", res.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequirePermission(writePerm), httputil.UUIDParams)
		r.Post("/", res.create)
		r.Put("/{id}", res.update)
		r.Delete("/{id}", res.remove)
	})
}
