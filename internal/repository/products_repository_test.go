package repository

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"product-import-service/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache database keeps every pooled connection on the
	// same in-memory store, scoped to this test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ImportJob{}, &models.Webhook{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testProduct(sku, name string) models.Product {
	p := models.Product{Name: name, IsActive: true}
	p.SetSKU(sku)
	return p
}

func TestUpsertBatchInsertsNewRows(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	batch := []models.Product{
		testProduct("A1", "First"),
		testProduct("A2", "Second"),
	}
	require.NoError(t, repo.UpsertBatch(batch))

	count, err := repo.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpsertBatchIdempotent(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	batch := []models.Product{
		testProduct("A1", "First"),
		testProduct("A2", "Second"),
	}
	require.NoError(t, repo.UpsertBatch(batch))
	require.NoError(t, repo.UpsertBatch(batch))

	count, err := repo.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := repo.GetProductBySKU("A1")
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Name)
}

func TestUpsertBatchOverwritesExisting(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	first := testProduct("A1", "Original")
	first.Price = decimal.NullDecimal{Decimal: decimal.RequireFromString("10.00"), Valid: true}
	require.NoError(t, repo.UpsertBatch([]models.Product{first}))

	second := testProduct("a1", "Replaced")
	second.IsActive = false
	require.NoError(t, repo.UpsertBatch([]models.Product{second}))

	count, err := repo.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetProductBySKU("A1")
	require.NoError(t, err)
	assert.Equal(t, "Replaced", stored.Name)
	assert.False(t, stored.IsActive)
	assert.False(t, stored.Price.Valid)
}

func TestUpsertBatchCollapsesDuplicateSKUs(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	// Same normalized SKU appears twice in one batch; the later row wins.
	batch := []models.Product{
		testProduct("ABC1", "Earlier"),
		testProduct("B2", "Other"),
		testProduct("abc1 ", "Later"),
	}
	require.NoError(t, repo.UpsertBatch(batch))

	count, err := repo.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := repo.GetProductBySKU("ABC1")
	require.NoError(t, err)
	assert.Equal(t, "Later", stored.Name)
}

func TestUpsertBatchEmptyIsNoOp(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))
	require.NoError(t, repo.UpsertBatch(nil))
}

func TestGetProductsFilters(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	blue := testProduct("SHIRT-BLU", "Blue Shirt")
	red := testProduct("SHIRT-RED", "Red Shirt")
	red.IsActive = false
	mug := testProduct("MUG-01", "Coffee Mug")
	require.NoError(t, repo.UpsertBatch([]models.Product{blue, red, mug}))

	products, total, err := repo.GetProducts(&models.ListProductsRequest{Name: "shirt", Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	active := true
	products, total, err = repo.GetProducts(&models.ListProductsRequest{Name: "shirt", IsActive: &active, Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "SHIRT-BLU", products[0].SKU)

	products, total, err = repo.GetProducts(&models.ListProductsRequest{SKU: "mug", Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Coffee Mug", products[0].Name)
}

func TestUpdateProductPartial(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	product := testProduct("A1", "Original")
	require.NoError(t, repo.CreateProduct(&product))

	name := "Renamed"
	updated, err := repo.UpdateProduct(product.ID, &models.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "a1", updated.SKUNormalized)

	sku := " NEW-SKU "
	updated, err = repo.UpdateProduct(product.ID, &models.UpdateProductRequest{SKU: &sku})
	require.NoError(t, err)
	assert.Equal(t, "NEW-SKU", updated.SKU)
	assert.Equal(t, "new-sku", updated.SKUNormalized)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteAllProducts(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))

	require.NoError(t, repo.UpsertBatch([]models.Product{
		testProduct("A1", "One"),
		testProduct("A2", "Two"),
	}))

	deleted, err := repo.DeleteAllProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := repo.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteProductNotFound(t *testing.T) {
	repo := NewProductsRepository(setupTestDB(t))
	err := repo.DeleteProduct(12345)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
