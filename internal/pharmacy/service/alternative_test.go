package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/cache"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client, time.Minute, logger.Nop()), mr
}

func detail(productID, altName, price, altPrice string, category, altCategory *string, stock int) domain.AlternativeDetail {
	return domain.AlternativeDetail{
		ProductAlternative: domain.ProductAlternative{
			ID:                   uuid.New().String(),
			ProductID:            productID,
			AlternativeProductID: uuid.New().String(),
		},
		ProductPrice:             decimal.RequireFromString(price),
		ProductCategoryID:        category,
		AlternativeName:          altName,
		AlternativePrice:         decimal.RequireFromString(altPrice),
		AlternativeCategoryID:    altCategory,
		AlternativeStockQuantity: stock,
	}
}

func TestAlternativeService_Recommended(t *testing.T) {
	f := testutil.NewFixtureFactory()
	c, mr := newTestCache(t)
	products := newFakeProducts()
	product := f.Product("10.00")
	products.byID[product.ID] = product

	analgesics, other := "analgesics", "antacids"
	alts := &fakeAlternatives{items: []domain.AlternativeDetail{
		detail(product.ID, "generic", "10.00", "6.00", &analgesics, &analgesics, 40),
		detail(product.ID, "pricier", "10.00", "11.00", &analgesics, &analgesics, 40),
		detail(product.ID, "sold out", "10.00", "5.00", &analgesics, &analgesics, 0),
		detail(product.ID, "other shelf", "10.00", "5.00", &analgesics, &other, 40),
	}}
	svc := NewAlternativeService(alts, products, c, logger.Nop())
	ctx := context.Background()

	got, err := svc.Recommended(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "generic", got[0].AlternativeName)
	assert.True(t, got[0].AlternativePrice.Equal(decimal.RequireFromString("6")))
	assert.True(t, mr.Exists(recommendedCacheKey(product.ID)))

	t.Run("second call is served from cache", func(t *testing.T) {
		_, err := svc.Recommended(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, alts.listCalls)
	})

	t.Run("adding an alternative invalidates the cache", func(t *testing.T) {
		cheaper := f.Product("1.00")
		products.byID[cheaper.ID] = cheaper

		_, err := svc.Add(ctx, product.ID, CreateAlternativeInput{AlternativeProductID: cheaper.ID, Reason: "generic"})
		require.NoError(t, err)
		assert.False(t, mr.Exists(recommendedCacheKey(product.ID)))

		_, err = svc.Add(ctx, product.ID, CreateAlternativeInput{AlternativeProductID: cheaper.ID})
		requireAppError(t, err, "DUPLICATE_RELATIONSHIP")
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		_, err := svc.Recommended(ctx, uuid.New().String())
		requireAppError(t, err, "NOT_FOUND")
	})
}

func TestAlternativeService_Add_Self(t *testing.T) {
	f := testutil.NewFixtureFactory()
	products := newFakeProducts()
	p := f.Product("1.00")
	products.byID[p.ID] = p
	svc := NewAlternativeService(&fakeAlternatives{}, products, nil, logger.Nop())

	_, err := svc.Add(context.Background(), p.ID, CreateAlternativeInput{AlternativeProductID: p.ID})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestAlternativeService_Remove(t *testing.T) {
	c, mr := newTestCache(t)
	productID := uuid.New().String()
	d := detail(productID, "x", "1", "1", nil, nil, 1)
	alts := &fakeAlternatives{items: []domain.AlternativeDetail{d}}
	svc := NewAlternativeService(alts, newFakeProducts(), c, logger.Nop())
	require.NoError(t, mr.Set(recommendedCacheKey(productID), "[]"))

	require.NoError(t, svc.Remove(context.Background(), productID, d.ID))
	assert.Empty(t, alts.items)
	assert.False(t, mr.Exists(recommendedCacheKey(productID)))

	err := svc.Remove(context.Background(), productID, d.ID)
	requireAppError(t, err, "NOT_FOUND")
}

func TestProductViews_AlternativeChangesDropRecommendations(t *testing.T) {
	f := testutil.NewFixtureFactory()
	c, mr := newTestCache(t)
	h := newHarness()
	branch := h.addBranch(f.Branch())
	base := h.addProduct(f.Product("10.00"))
	generic := h.addProduct(f.Product("6.00"))
	genericInv := h.addInventory(f.Inventory(generic.ID, branch.ID, 5, -1))

	link := detail(base.ID, "generic", "10.00", "6.00", nil, nil, 5)
	link.AlternativeProductID = generic.ID
	alts := &fakeAlternatives{items: []domain.AlternativeDetail{link}}

	views := NewProductViews(c, alts, logger.Nop())
	h.inventorySvc.views = views
	altSvc := NewAlternativeService(alts, h.products, c, logger.Nop())
	productSvc := NewProductService(h.products, &fakeCategories{byID: map[string]domain.Category{}}, h.suppliers, nil, views, logger.Nop())
	ctx := context.Background()

	warm := func(t *testing.T) {
		t.Helper()
		_, err := altSvc.Recommended(ctx, base.ID)
		require.NoError(t, err)
		require.True(t, mr.Exists(recommendedCacheKey(base.ID)))
	}

	t.Run("alternative sells out", func(t *testing.T) {
		warm(t)
		_, err := h.inventorySvc.AdjustStock(ctx, genericInv.ID, AdjustStockInput{Delta: -5, Reason: "damaged"})
		require.NoError(t, err)
		assert.False(t, mr.Exists(recommendedCacheKey(base.ID)))
	})

	t.Run("alternative price changes", func(t *testing.T) {
		warm(t)
		_, err := productSvc.Update(ctx, generic.ID, ProductInput{Name: generic.Name, SKU: generic.SKU, Price: decimal.RequireFromString("12.00")})
		require.NoError(t, err)
		assert.False(t, mr.Exists(recommendedCacheKey(base.ID)))
	})

	t.Run("unrelated products keep their entries", func(t *testing.T) {
		warm(t)
		views.Changed(ctx, uuid.New().String())
		assert.True(t, mr.Exists(recommendedCacheKey(base.ID)))
	})
}
