package service

import (
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/cache"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// Deps are the optional collaborators shared by every service. Nil values
// disable the matching side effect.
type Deps struct {
	Files     FileStore
	Cache     *cache.Cache
	Publisher *events.Publisher
}

// Services is the full set of pharmacy use cases over one database.
type Services struct {
	Products      *ProductService
	Catalog       *CatalogService
	People        *PeopleService
	Inventory     *InventoryService
	Alerts        *AlertService
	Notifications *NotificationService
	Restocks      *RestockService
	Prescriptions *PrescriptionService
	Interactions  *InteractionService
	Alternatives  *AlternativeService
	Orders        *OrderService

	tx            Transactor
	inventoryRepo *repository.InventoryRepository
	stockRepo     *repository.StockRepository
}

// NewServices builds every repository on db and wires the services together.
func NewServices(db *database.DB, deps Deps, log *logger.Logger) *Services {
	products := repository.NewProductRepository(db)
	categories := repository.NewCategoryRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	branches := repository.NewBranchRepository(db)
	inventory := repository.NewInventoryRepository(db)
	stocks := repository.NewStockRepository(db)
	customers := repository.NewCustomerRepository(db)
	alternatives := repository.NewAlternativeRepository(db)
	views := NewProductViews(deps.Cache, alternatives, log)

	s := &Services{
		tx:            db,
		inventoryRepo: inventory,
		stockRepo:     stocks,
	}
	s.Products = NewProductService(products, categories, suppliers, deps.Files, views, log)
	s.Catalog = NewCatalogService(categories, suppliers, branches, log)
	s.People = NewPeopleService(repository.NewEmployeeRepository(db), customers, branches, log)
	s.Alerts = NewAlertService(db, repository.NewAlertRepository(db), deps.Publisher, log)
	s.Notifications = NewNotificationService(repository.NewNotificationRepository(db), log)
	s.Inventory = NewInventoryService(db, inventory, stocks, products, branches, suppliers, s.Alerts, views, deps.Publisher, log)
	s.Restocks = NewRestockService(db, repository.NewRestockRepository(db), products, branches, suppliers,
		s.Inventory, s.Notifications, deps.Publisher, log)
	s.Prescriptions = NewPrescriptionService(repository.NewPrescriptionRepository(db), deps.Files, s.Notifications, deps.Publisher, log)
	s.Interactions = NewInteractionService(repository.NewInteractionRepository(db), products, log)
	s.Alternatives = NewAlternativeService(alternatives, products, deps.Cache, log)
	s.Orders = NewOrderService(db, repository.NewOrderRepository(db), products, branches, customers,
		s.Prescriptions, s.Inventory, s.Interactions, deps.Publisher, log)
	return s
}

// NewAlertScanner builds a scanner over the same stores as the services.
func (s *Services) NewAlertScanner(warningDays, criticalDays int, log *logger.Logger) *AlertScanner {
	return NewAlertScanner(s.tx, s.inventoryRepo, s.stockRepo, s.Alerts, warningDays, criticalDays, log)
}
