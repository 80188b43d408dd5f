package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

type fakeCategories struct{ byID map[string]domain.Category }

func (f *fakeCategories) Create(ctx context.Context, c *domain.Category) error {
	c.ID = uuid.New().String()
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("category")
	}
	return &c, nil
}

func (f *fakeCategories) List(ctx context.Context, search string, page repository.Page) ([]domain.Category, int64, error) {
	return nil, 0, nil
}

func (f *fakeCategories) Update(ctx context.Context, c *domain.Category) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

// fakeFiles records uploads and answers with a predictable URL.
type fakeFiles struct {
	prefix string
	body   string
	err    error
}

func (f *fakeFiles) Upload(ctx context.Context, prefix, filename, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.prefix, f.body = prefix, string(data)
	return "https://files.test/" + prefix + "/" + filename, nil
}

func newTestProductService(t *testing.T) (*ProductService, *fakeProducts, *fakeFiles) {
	t.Helper()
	products := newFakeProducts()
	files := &fakeFiles{}
	c, _ := newTestCache(t)
	svc := NewProductService(products, &fakeCategories{byID: map[string]domain.Category{}}, newFakeSuppliers(), files, NewProductViews(c, &fakeAlternatives{}, logger.Nop()), logger.Nop())
	return svc, products, files
}

func TestProductService_Create(t *testing.T) {
	svc, _, _ := newTestProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "  Ibuprofen 200mg ", SKU: "IBU-200", Price: decimal.RequireFromString("4.99")})
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen 200mg", p.Name)
	assert.Zero(t, p.StockQuantity)
	assert.Nil(t, p.CategoryID)

	t.Run("negative price", func(t *testing.T) {
		_, err := svc.Create(ctx, ProductInput{Name: "x", SKU: "x", Price: decimal.RequireFromString("-1")})
		requireAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.Create(ctx, ProductInput{Name: "x", SKU: "x", Price: decimal.Zero, CategoryID: uuid.New().String()})
		requireAppError(t, err, "NOT_FOUND")
	})
}

func TestProductService_GetIsCachedUntilUpdate(t *testing.T) {
	svc, products, _ := newTestProductService(t)
	ctx := context.Background()
	p := testutil.NewFixtureFactory().Product("3.00")
	products.byID[p.ID] = p

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	// A write behind the service's back is not seen until invalidation.
	stale := products.byID[p.ID]
	stale.Name = "renamed elsewhere"
	products.byID[p.ID] = stale

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	_, err = svc.Update(ctx, p.ID, ProductInput{Name: "Renamed", SKU: p.SKU, Price: p.Price})
	require.NoError(t, err)

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestProductService_UploadImage(t *testing.T) {
	svc, products, files := newTestProductService(t)
	ctx := context.Background()
	p := testutil.NewFixtureFactory().Product("3.00")
	products.byID[p.ID] = p

	got, err := svc.UploadImage(ctx, p.ID, Upload{Filename: "box.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/products/"+p.ID+"/box.png", got.ImageURL)
	assert.Equal(t, "products/"+p.ID, files.prefix)
	assert.Equal(t, "png", files.body)

	t.Run("non-image content type", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, p.ID, Upload{Filename: "a.pdf", ContentType: "application/pdf", Body: strings.NewReader("")})
		requireAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, uuid.New().String(), Upload{Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("")})
		requireAppError(t, err, "NOT_FOUND")
	})
}
