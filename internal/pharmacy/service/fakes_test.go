package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

// In-memory stores for service tests. They keep copies so a service only
// sees its own writes after calling the store.

type passthroughTx struct{ calls int }

func (tx *passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

func fixedClock() time.Time { return testutil.FixedNow }

func pageOf[T any](all []T, page repository.Page) ([]T, int64) {
	p := repository.NewPage(page.Page, page.PerPage)
	start := (p.Page - 1) * p.PerPage
	if start > len(all) {
		start = len(all)
	}
	end := start + p.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all))
}

// ============================================================================
// Catalogue
// ============================================================================

type fakeProducts struct {
	byID   map[string]domain.Product
	deltas map[string]int
}

func newFakeProducts(ps ...domain.Product) *fakeProducts {
	f := &fakeProducts{byID: map[string]domain.Product{}, deltas: map[string]int{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New().String()
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("product")
	}
	return &p, nil
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]domain.Product, int64, error) {
	var all []domain.Product
	for _, p := range f.byID {
		if filter.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeProducts) Update(ctx context.Context, p *domain.Product) error {
	if _, ok := f.byID[p.ID]; !ok {
		return errors.NotFound("product")
	}
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProducts) AdjustStockQuantity(ctx context.Context, id string, delta int) error {
	p, ok := f.byID[id]
	if !ok {
		return errors.NotFound("product")
	}
	p.StockQuantity += delta
	f.byID[id] = p
	f.deltas[id] += delta
	return nil
}

func (f *fakeProducts) SetImageURL(ctx context.Context, id, url string) error {
	p, ok := f.byID[id]
	if !ok {
		return errors.NotFound("product")
	}
	p.ImageURL = url
	f.byID[id] = p
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errors.NotFound("product")
	}
	delete(f.byID, id)
	return nil
}

type fakeBranches struct{ byID map[string]domain.Branch }

func newFakeBranches(bs ...domain.Branch) *fakeBranches {
	f := &fakeBranches{byID: map[string]domain.Branch{}}
	for _, b := range bs {
		f.byID[b.ID] = b
	}
	return f
}

func (f *fakeBranches) Create(ctx context.Context, b *domain.Branch) error {
	b.ID = uuid.New().String()
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBranches) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("branch")
	}
	return &b, nil
}

func (f *fakeBranches) List(ctx context.Context, search string, activeOnly bool, page repository.Page) ([]domain.Branch, int64, error) {
	var all []domain.Branch
	for _, b := range f.byID {
		if activeOnly && !b.IsActive {
			continue
		}
		all = append(all, b)
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeBranches) Update(ctx context.Context, b *domain.Branch) error {
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeBranches) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeSuppliers struct{ byID map[string]domain.Supplier }

func newFakeSuppliers() *fakeSuppliers {
	return &fakeSuppliers{byID: map[string]domain.Supplier{}}
}

func (f *fakeSuppliers) Create(ctx context.Context, s *domain.Supplier) error {
	s.ID = uuid.New().String()
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSuppliers) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("supplier")
	}
	return &s, nil
}

func (f *fakeSuppliers) List(ctx context.Context, search string, page repository.Page) ([]domain.Supplier, int64, error) {
	return nil, 0, nil
}

func (f *fakeSuppliers) Update(ctx context.Context, s *domain.Supplier) error {
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSuppliers) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeCustomers struct{ byID map[string]domain.Customer }

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: map[string]domain.Customer{}}
}

func (f *fakeCustomers) Create(ctx context.Context, c *domain.Customer) error {
	c.ID = uuid.New().String()
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCustomers) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("customer")
	}
	return &c, nil
}

func (f *fakeCustomers) List(ctx context.Context, search string, page repository.Page) ([]domain.Customer, int64, error) {
	return nil, 0, nil
}

func (f *fakeCustomers) Update(ctx context.Context, c *domain.Customer) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCustomers) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

// ============================================================================
// Inventory
// ============================================================================

type fakeInventory struct {
	byID         map[string]domain.Inventory
	expiryFlags  map[[2]string]bool
	clearedFlags int
}

func newFakeInventory(rows ...domain.Inventory) *fakeInventory {
	f := &fakeInventory{byID: map[string]domain.Inventory{}, expiryFlags: map[[2]string]bool{}}
	for _, r := range rows {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeInventory) find(productID, branchID string) (domain.Inventory, bool) {
	for _, r := range f.byID {
		if r.ProductID == productID && r.BranchID == branchID {
			return r, true
		}
	}
	return domain.Inventory{}, false
}

func (f *fakeInventory) Create(ctx context.Context, inv *domain.Inventory) error {
	if _, ok := f.find(inv.ProductID, inv.BranchID); ok {
		return errors.DuplicateRelationship("inventory for this product and branch")
	}
	inv.ID = uuid.New().String()
	f.byID[inv.ID] = *inv
	return nil
}

func (f *fakeInventory) GetByID(ctx context.Context, id string) (*domain.Inventory, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("inventory")
	}
	return &r, nil
}

func (f *fakeInventory) LockByProductAndBranch(ctx context.Context, productID, branchID string) (*domain.Inventory, error) {
	r, ok := f.find(productID, branchID)
	if !ok {
		return nil, errors.NotFound("inventory")
	}
	return &r, nil
}

func (f *fakeInventory) List(ctx context.Context, filter repository.InventoryFilter, page repository.Page) ([]domain.Inventory, int64, error) {
	var all []domain.Inventory
	for _, r := range f.byID {
		if filter.LowStockOnly && !r.NeedsRestocking() {
			continue
		}
		all = append(all, r)
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeInventory) ListNeedingRestock(ctx context.Context) ([]domain.Inventory, error) {
	var out []domain.Inventory
	for _, r := range f.byID {
		if r.NeedsRestocking() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockLevel < out[j].StockLevel })
	return out, nil
}

func (f *fakeInventory) SaveStock(ctx context.Context, inv *domain.Inventory) error {
	f.byID[inv.ID] = *inv
	return nil
}

func (f *fakeInventory) UpdateLevels(ctx context.Context, inv *domain.Inventory) error {
	f.byID[inv.ID] = *inv
	return nil
}

func (f *fakeInventory) SetExpiryAlert(ctx context.Context, productID, branchID string, on bool) error {
	f.expiryFlags[[2]string{productID, branchID}] = on
	return nil
}

func (f *fakeInventory) ClearExpiryAlerts(ctx context.Context) error {
	f.clearedFlags++
	f.expiryFlags = map[[2]string]bool{}
	return nil
}

type fakeStocks struct {
	byID map[string]domain.Stock
	// held reports whether a branch still stocks a product; nil means always.
	held func(productID, branchID string) bool
}

func newFakeStocks(ss ...domain.Stock) *fakeStocks {
	f := &fakeStocks{byID: map[string]domain.Stock{}}
	for _, s := range ss {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeStocks) Create(ctx context.Context, s *domain.Stock) error {
	s.ID = uuid.New().String()
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeStocks) GetByID(ctx context.Context, id string) (*domain.Stock, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("stock")
	}
	return &s, nil
}

func (f *fakeStocks) List(ctx context.Context, filter repository.StockFilter, page repository.Page) ([]domain.Stock, int64, error) {
	return nil, 0, nil
}

func (f *fakeStocks) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Stock, error) {
	var out []domain.Stock
	for _, s := range f.byID {
		if s.ExpiryDate != nil && !s.ExpiryDate.Before(from) && !s.ExpiryDate.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStocks) ListExpiringInStock(ctx context.Context, cutoff time.Time) ([]domain.Stock, error) {
	var out []domain.Stock
	for _, s := range f.byID {
		if f.held != nil && !f.held(s.ProductID, s.BranchID) {
			continue
		}
		if s.ExpiryDate != nil && !s.ExpiryDate.After(cutoff) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	return out, nil
}

// ============================================================================
// Alerts and notifications
// ============================================================================

type fakeAlerts struct {
	byID map[string]domain.Alert
	// interleave runs inside UpdateState before the guard, standing in for
	// a request that wrote the row first.
	interleave func(stored *domain.Alert)
}

func newFakeAlerts(as ...domain.Alert) *fakeAlerts {
	f := &fakeAlerts{byID: map[string]domain.Alert{}}
	for _, a := range as {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAlerts) Create(ctx context.Context, a *domain.Alert) error {
	a.ID = uuid.New().String()
	a.CreatedAt = testutil.FixedNow
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAlerts) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("alert")
	}
	return &a, nil
}

func (f *fakeAlerts) List(ctx context.Context, filter repository.AlertFilter, page repository.Page) ([]domain.Alert, int64, error) {
	var all []domain.Alert
	for _, a := range f.byID {
		if filter.Type != "" && a.AlertType != filter.Type {
			continue
		}
		all = append(all, a)
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeAlerts) ofType(t domain.AlertType) []domain.Alert {
	var out []domain.Alert
	for _, a := range f.byID {
		if a.AlertType == t {
			out = append(out, a)
		}
	}
	return out
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeAlerts) ExistsActive(ctx context.Context, alertType domain.AlertType, productID, branchID *string) (bool, error) {
	for _, a := range f.byID {
		if a.AlertType == alertType && !a.Resolved && sameRef(a.ProductID, productID) && sameRef(a.BranchID, branchID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlerts) ResolvedSince(ctx context.Context, alertType domain.AlertType, productID, branchID *string, since time.Time) (bool, error) {
	for _, a := range f.byID {
		if a.AlertType == alertType && a.Resolved && a.ResolvedAt != nil && !a.ResolvedAt.Before(since) &&
			sameRef(a.ProductID, productID) && sameRef(a.BranchID, branchID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlerts) UpdateState(ctx context.Context, a *domain.Alert, from domain.AlertStatus) (bool, error) {
	stored, ok := f.byID[a.ID]
	if !ok {
		return false, nil
	}
	if f.interleave != nil {
		f.interleave(&stored)
		f.byID[a.ID] = stored
	}
	if stored.Status != from {
		return false, nil
	}
	f.byID[a.ID] = *a
	return true, nil
}

func (f *fakeAlerts) LockForUpdate(ctx context.Context, ids []string) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlerts) BulkResolve(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		a, ok := f.byID[id]
		if !ok || a.Resolved {
			continue
		}
		if err := a.Resolve(actorID, at); err != nil {
			return 0, err
		}
		f.byID[id] = a
		n++
	}
	return n, nil
}

func (f *fakeAlerts) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, a := range f.byID {
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeNotifications struct {
	items []domain.Notification
	err   error
}

func (f *fakeNotifications) Create(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	n.ID = uuid.New().String()
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error) {
	var all []domain.Notification
	for _, n := range f.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			all = append(all, n)
		}
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].MarkRead(at)
			return nil
		}
	}
	return errors.NotFound("notification")
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	var n int64
	for i := range f.items {
		if f.items[i].UserID == userID && !f.items[i].IsRead {
			f.items[i].MarkRead(at)
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := f.items[:0]
	var n int64
	for _, item := range f.items {
		if item.IsRead && item.ReadAt != nil && item.ReadAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return n, nil
}

// ============================================================================
// Workflows
// ============================================================================

type fakeRestocks struct {
	byID map[string]domain.RestockRequest
	// bulkShortfall makes BulkApprove report fewer rows than asked for.
	bulkShortfall bool
}

func newFakeRestocks(rs ...domain.RestockRequest) *fakeRestocks {
	f := &fakeRestocks{byID: map[string]domain.RestockRequest{}}
	for _, r := range rs {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeRestocks) Create(ctx context.Context, req *domain.RestockRequest) error {
	req.ID = uuid.New().String()
	f.byID[req.ID] = *req
	return nil
}

func (f *fakeRestocks) GetByID(ctx context.Context, id string) (*domain.RestockRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("restock request")
	}
	return &r, nil
}

func (f *fakeRestocks) List(ctx context.Context, filter repository.RestockFilter, page repository.Page) ([]domain.RestockRequest, int64, error) {
	var all []domain.RestockRequest
	for _, r := range f.byID {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		all = append(all, r)
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeRestocks) UpdateTransition(ctx context.Context, req *domain.RestockRequest, from domain.RestockStatus) (bool, error) {
	stored, ok := f.byID[req.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	f.byID[req.ID] = *req
	return true, nil
}

func (f *fakeRestocks) LockForUpdate(ctx context.Context, ids []string) ([]domain.RestockRequest, error) {
	var out []domain.RestockRequest
	for _, id := range ids {
		if r, ok := f.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRestocks) BulkApprove(ctx context.Context, ids []string, actorID string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		r := f.byID[id]
		if r.Status != domain.RestockPending {
			continue
		}
		if err := r.Approve(actorID, at); err != nil {
			return 0, err
		}
		f.byID[id] = r
		n++
	}
	if f.bulkShortfall && n > 0 {
		n--
	}
	return n, nil
}

type fakePrescriptions struct{ byID map[string]domain.Prescription }

func newFakePrescriptions(ps ...domain.Prescription) *fakePrescriptions {
	f := &fakePrescriptions{byID: map[string]domain.Prescription{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePrescriptions) Create(ctx context.Context, p *domain.Prescription) error {
	p.ID = uuid.New().String()
	f.byID[p.ID] = *p
	return nil
}

func (f *fakePrescriptions) GetByID(ctx context.Context, id string) (*domain.Prescription, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("prescription")
	}
	return &p, nil
}

func (f *fakePrescriptions) List(ctx context.Context, filter repository.PrescriptionFilter, page repository.Page) ([]domain.Prescription, int64, error) {
	return nil, 0, nil
}

func (f *fakePrescriptions) UpdateDetails(ctx context.Context, p *domain.Prescription) (bool, error) {
	stored, ok := f.byID[p.ID]
	if !ok || stored.Status != domain.PrescriptionPending {
		return false, nil
	}
	f.byID[p.ID] = *p
	return true, nil
}

func (f *fakePrescriptions) UpdateTransition(ctx context.Context, p *domain.Prescription, from domain.PrescriptionStatus) (bool, error) {
	stored, ok := f.byID[p.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	f.byID[p.ID] = *p
	return true, nil
}

func (f *fakePrescriptions) SetDocumentURL(ctx context.Context, id, url string) error {
	p, ok := f.byID[id]
	if !ok {
		return errors.NotFound("prescription")
	}
	p.DocumentURL = url
	f.byID[id] = p
	return nil
}

type fakeInteractions struct{ byID map[string]domain.DrugInteraction }

func newFakeInteractions(ds ...domain.DrugInteraction) *fakeInteractions {
	f := &fakeInteractions{byID: map[string]domain.DrugInteraction{}}
	for _, d := range ds {
		f.byID[d.ID] = d
	}
	return f
}

func (f *fakeInteractions) Create(ctx context.Context, d *domain.DrugInteraction) error {
	d.ID = uuid.New().String()
	f.byID[d.ID] = *d
	return nil
}

func (f *fakeInteractions) GetByID(ctx context.Context, id string) (*domain.DrugInteraction, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("drug interaction")
	}
	return &d, nil
}

func (f *fakeInteractions) List(ctx context.Context, page repository.Page) ([]domain.DrugInteraction, int64, error) {
	var all []domain.DrugInteraction
	for _, d := range f.byID {
		all = append(all, d)
	}
	items, total := pageOf(all, page)
	return items, total, nil
}

func (f *fakeInteractions) FindBetween(ctx context.Context, x, y string) (*domain.DrugInteraction, error) {
	key := domain.PairKey(x, y)
	for _, d := range f.byID {
		if d.Key() == key {
			return &d, nil
		}
	}
	return nil, errors.NotFound("drug interaction")
}

func (f *fakeInteractions) ExistsBetween(ctx context.Context, x, y string) (bool, error) {
	_, err := f.FindBetween(ctx, x, y)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeInteractions) ListForProduct(ctx context.Context, productID string) ([]domain.DrugInteraction, error) {
	var out []domain.DrugInteraction
	for _, d := range f.byID {
		if d.Involves(productID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeInteractions) ListAmong(ctx context.Context, ids []string) ([]domain.DrugInteraction, error) {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []domain.DrugInteraction
	for _, d := range f.byID {
		if in[d.ProductAID] && in[d.ProductBID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeInteractions) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errors.NotFound("drug interaction")
	}
	delete(f.byID, id)
	return nil
}

type fakeAlternatives struct {
	items     []domain.AlternativeDetail
	listCalls int
}

func (f *fakeAlternatives) Create(ctx context.Context, a *domain.ProductAlternative) error {
	a.ID = uuid.New().String()
	f.items = append(f.items, domain.AlternativeDetail{ProductAlternative: *a})
	return nil
}

func (f *fakeAlternatives) Exists(ctx context.Context, productID, altID string) (bool, error) {
	for _, d := range f.items {
		if d.ProductID == productID && d.AlternativeProductID == altID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlternatives) ListDetailedByProduct(ctx context.Context, productID string) ([]domain.AlternativeDetail, error) {
	f.listCalls++
	out := []domain.AlternativeDetail{}
	for _, d := range f.items {
		if d.ProductID == productID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeAlternatives) ListProductIDsByAlternative(ctx context.Context, altID string) ([]string, error) {
	var ids []string
	for _, d := range f.items {
		if d.AlternativeProductID == altID {
			ids = append(ids, d.ProductID)
		}
	}
	return ids, nil
}

func (f *fakeAlternatives) Delete(ctx context.Context, productID, id string) error {
	for i, d := range f.items {
		if d.ProductID == productID && d.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("product alternative")
}

type fakeOrders struct {
	byID      map[string]domain.Order
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[string]domain.Order{}}
}

func (f *fakeOrders) Create(ctx context.Context, o *domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = uuid.New().String()
	for i := range o.Items {
		o.Items[i].ID = uuid.New().String()
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	f.byID[o.ID] = stored
	return nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("order")
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (f *fakeOrders) List(ctx context.Context, filter repository.OrderFilter, page repository.Page) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrders) HasOpenForPrescription(ctx context.Context, prescriptionID string) (bool, error) {
	for _, o := range f.byID {
		if o.PrescriptionID != nil && *o.PrescriptionID == prescriptionID && o.Status != domain.OrderCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	o, ok := f.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	f.byID[id] = o
	return true, nil
}

// ============================================================================
// Wiring
// ============================================================================

// harness wires every service against the in-memory stores.
type harness struct {
	tx            *passthroughTx
	pub           *testutil.MockPublisher
	products      *fakeProducts
	branches      *fakeBranches
	suppliers     *fakeSuppliers
	customers     *fakeCustomers
	inventory     *fakeInventory
	stocks        *fakeStocks
	alerts        *fakeAlerts
	notifications *fakeNotifications
	restocks      *fakeRestocks
	prescriptions *fakePrescriptions
	interactions  *fakeInteractions
	orders        *fakeOrders

	alertSvc        *AlertService
	notificationSvc *NotificationService
	inventorySvc    *InventoryService
	restockSvc      *RestockService
	prescriptionSvc *PrescriptionService
	interactionSvc  *InteractionService
	orderSvc        *OrderService
}

func newHarness() *harness {
	log := logger.Nop()
	h := &harness{
		tx:            &passthroughTx{},
		pub:           testutil.NewMockPublisher(),
		products:      newFakeProducts(),
		branches:      newFakeBranches(),
		suppliers:     newFakeSuppliers(),
		customers:     newFakeCustomers(),
		inventory:     newFakeInventory(),
		stocks:        newFakeStocks(),
		alerts:        newFakeAlerts(),
		notifications: &fakeNotifications{},
		restocks:      newFakeRestocks(),
		prescriptions: newFakePrescriptions(),
		interactions:  newFakeInteractions(),
		orders:        newFakeOrders(),
	}
	publisher := events.NewPublisher(h.pub, log)

	h.alertSvc = NewAlertService(h.tx, h.alerts, publisher, log)
	h.alertSvc.now = fixedClock
	h.notificationSvc = NewNotificationService(h.notifications, log)
	h.notificationSvc.now = fixedClock
	h.inventorySvc = NewInventoryService(h.tx, h.inventory, h.stocks, h.products, h.branches, h.suppliers, h.alertSvc, nil, publisher, log)
	h.inventorySvc.now = fixedClock
	h.restockSvc = NewRestockService(h.tx, h.restocks, h.products, h.branches, h.suppliers, h.inventorySvc, h.notificationSvc, publisher, log)
	h.restockSvc.now = fixedClock
	h.prescriptionSvc = NewPrescriptionService(h.prescriptions, nil, h.notificationSvc, publisher, log)
	h.prescriptionSvc.now = fixedClock
	h.interactionSvc = NewInteractionService(h.interactions, h.products, log)
	h.orderSvc = NewOrderService(h.tx, h.orders, h.products, h.branches, h.customers, h.prescriptionSvc, h.inventorySvc, h.interactionSvc, publisher, log)
	h.orderSvc.now = fixedClock
	return h
}

func (h *harness) addProduct(p domain.Product) domain.Product {
	h.products.byID[p.ID] = p
	return p
}

func (h *harness) addBranch(b domain.Branch) domain.Branch {
	h.branches.byID[b.ID] = b
	return b
}

func (h *harness) addInventory(inv domain.Inventory) domain.Inventory {
	h.inventory.byID[inv.ID] = inv
	return inv
}

func requireAppError(t *testing.T, err error, code string) *errors.AppError {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr), "expected *errors.AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func asUser(id string) context.Context {
	return actor.WithActor(context.Background(), &actor.Actor{ID: id, Username: "user-" + id})
}
