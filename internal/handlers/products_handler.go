package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"product-import-service/internal/models"
	"product-import-service/internal/repository"
)

const maxPerPage = 100

type ProductsHandler struct {
	repo *repository.ProductsRepository
}

func NewProductsHandler(repo *repository.ProductsRepository) *ProductsHandler {
	return &ProductsHandler{repo: repo}
}

// ListProducts returns products with filters and pagination
// GET /api/v1/products
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	var req models.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}
	if req.PerPage > maxPerPage {
		req.PerPage = maxPerPage
	}

	products, total, err := h.repo.GetProducts(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Items: products,
		Total: total,
		Page:  req.Page,
		Pages: pageCount(total, req.PerPage),
	})
}

// GetProduct returns a single product by ID
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	product, err := h.repo.GetProductByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a single product
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "SKU is required"})
		return
	}
	if strings.TrimSpace(req.SKU) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "SKU is required"})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	product.SetSKU(req.SKU)
	if req.Price != nil {
		product.Price = decimalPrice(*req.Price)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.repo.CreateProduct(&product); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial update
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.SKU != nil && strings.TrimSpace(*req.SKU) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "SKU cannot be empty"})
		return
	}

	product, err := h.repo.UpdateProduct(uint(id), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a single product
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	if err := h.repo.DeleteProduct(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete product"})
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteProducts removes every product
// POST /api/v1/products/bulk-delete
func (h *ProductsHandler) BulkDeleteProducts(c *gin.Context) {
	deleted, err := h.repo.DeleteAllProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func decimalPrice(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d.Round(2), Valid: true}
}

func pageCount(total int64, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
