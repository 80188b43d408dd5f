package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/domain"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

var productCols = []string{
	"id", "name", "sku", "description", "category_id", "supplier_id", "price", "stock_quantity",
	"requires_prescription", "manufacturer", "dosage_form", "strength", "image_url",
	"created_at", "updated_at",
}

func productRows(products ...domain.Product) *sqlmock.Rows {
	rows := testutil.MockRows(productCols...)
	for _, p := range products {
		rows.AddRow(p.ID, p.Name, p.SKU, p.Description, p.CategoryID, p.SupplierID, p.Price.String(),
			p.StockQuantity, p.RequiresPrescription, p.Manufacturer, p.DosageForm, p.Strength, p.ImageURL,
			p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestProductRepository_Create(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewProductRepository(mockDB.Database())

	p := &domain.Product{Name: "Ibuprofen 400mg", SKU: "IBU-400", Price: decimal.RequireFromString("4.99")}

	mockDB.ExpectQuery("INSERT INTO products").
		WithArgs(testutil.AnyUUID{}, "Ibuprofen 400mg", "IBU-400", "", nil, nil, p.Price, 0,
			false, "", "", "", "").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(testutil.FixedNow, testutil.FixedNow))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, testutil.FixedNow, p.CreatedAt)
	mockDB.ExpectationsWereMet(t)
}

func TestProductRepository_CreateDuplicateSKU(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewProductRepository(mockDB.Database())

	mockDB.ExpectQuery("INSERT INTO products").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_sku_key"})

	err := repo.Create(context.Background(), &domain.Product{SKU: "IBU-400"})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.StatusCode)
	mockDB.ExpectationsWereMet(t)
}

func TestProductRepository_GetByID(t *testing.T) {
	fixtures := testutil.NewFixtureFactory()
	want := fixtures.Product("12.50")

	t.Run("found", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		repo := repository.NewProductRepository(mockDB.Database())

		mockDB.ExpectQuery("FROM products WHERE id = $1").
			WithArgs(want.ID).
			WillReturnRows(productRows(want))

		got, err := repo.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.Name, got.Name)
		assert.True(t, want.Price.Equal(got.Price))
		assert.Nil(t, got.CategoryID)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("missing", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		repo := repository.NewProductRepository(mockDB.Database())

		mockDB.ExpectQuery("FROM products WHERE id = $1").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), "nope")
		assert.True(t, errors.IsNotFound(err))
		mockDB.ExpectationsWereMet(t)
	})
}

func TestProductRepository_ListAppliesFiltersAndPaging(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewProductRepository(mockDB.Database())
	fixtures := testutil.NewFixtureFactory()

	filter := repository.ProductFilter{CategoryID: "cat-1", Search: "Ibu"}

	mockDB.ExpectQuery("SELECT COUNT(*) FROM products WHERE category_id = $1 AND LOWER(name) LIKE $2").
		WithArgs("cat-1", "%ibu%").
		WillReturnRows(testutil.CountRows(21))
	mockDB.ExpectQuery("FROM products WHERE category_id = $1 AND LOWER(name) LIKE $2 ORDER BY name ASC LIMIT 10 OFFSET 10").
		WithArgs("cat-1", "%ibu%").
		WillReturnRows(productRows(fixtures.Product("1.00"), fixtures.Product("2.00")))

	products, total, err := repo.List(context.Background(), filter, repository.Page{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	assert.Len(t, products, 2)
	mockDB.ExpectationsWereMet(t)
}

func TestProductRepository_GetByIDsSkipsEmpty(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewProductRepository(mockDB.Database())

	products, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	mockDB.ExpectationsWereMet(t)
}

func TestProductRepository_DeleteMissing(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := repository.NewProductRepository(mockDB.Database())

	mockDB.ExpectExec("DELETE FROM products WHERE id = $1").
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.True(t, errors.IsNotFound(repo.Delete(context.Background(), "p-1")))
	mockDB.ExpectationsWereMet(t)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, repository.Page{Page: 1, PerPage: 20}, repository.NewPage(0, 0))
	assert.Equal(t, repository.Page{Page: 3, PerPage: 100}, repository.NewPage(3, 500))
}
