package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. SKUNormalized is the conflict key
// for import upserts: two rows whose SKUs differ only in case or
// surrounding whitespace address the same product.
type Product struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	SKU           string              `json:"sku" gorm:"size:128;not null"`
	SKUNormalized string              `json:"-" gorm:"column:sku_normalized;size:128;not null;uniqueIndex"`
	Name          string              `json:"name" gorm:"size:255;not null"`
	Description   *string             `json:"description,omitempty"`
	Price         decimal.NullDecimal `json:"price" gorm:"type:decimal(12,2)"`
	// No schema-level default: a default tag would make gorm silently
	// replace an explicit false on insert.
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// NormalizeSKU returns the trimmed, case-folded form of a SKU. The same
// function backs the unique index value and query-time lookups, so the two
// can never disagree.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// SetSKU stores both the display and normalized forms of a SKU.
func (p *Product) SetSKU(sku string) {
	p.SKU = strings.TrimSpace(sku)
	p.SKUNormalized = NormalizeSKU(sku)
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU         string           `json:"sku" binding:"required"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// UpdateProductRequest represents a partial update; nil fields are left
// untouched.
type UpdateProductRequest struct {
	SKU         *string          `json:"sku,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// ListProductsRequest carries list filters and pagination
type ListProductsRequest struct {
	SKU         string `form:"sku"`
	Name        string `form:"name"`
	Description string `form:"description"`
	IsActive    *bool  `form:"is_active"`
	Page        int    `form:"page,default=1"`
	PerPage     int    `form:"per_page,default=20"`
}

// ProductListResponse is the paginated list envelope
type ProductListResponse struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
}

// ErrorResponse is the common error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
