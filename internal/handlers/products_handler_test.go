package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-import-service/internal/models"
	"product-import-service/internal/repository"
)

func setupProductRouter(t *testing.T) (*gin.Engine, *repository.ProductsRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewProductsRepository(setupTestDB(t))
	h := NewProductsHandler(repo)

	router := gin.New()
	router.GET("/api/v1/products/:id", h.GetProduct)
	return router, repo
}

func TestGetProductByID(t *testing.T) {
	router, repo := setupProductRouter(t)

	product := models.Product{Name: "Blue Shirt", IsActive: true}
	product.SetSKU("ABC-001")
	require.NoError(t, repo.CreateProduct(&product))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var loaded models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, "ABC-001", loaded.SKU)
	assert.Equal(t, "Blue Shirt", loaded.Name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
