package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"product-import-service/internal/models"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// CreateProduct creates a new product
func (r *ProductsRepository) CreateProduct(product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	return r.db.Create(product).Error
}

// GetProductByID retrieves a product by its numeric ID
func (r *ProductsRepository) GetProductByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductBySKU retrieves a product by normalized SKU
func (r *ProductsRepository) GetProductBySKU(sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("sku_normalized = ?", models.NormalizeSKU(sku)).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies a partial update to a product
func (r *ProductsRepository) UpdateProduct(id uint, req *models.UpdateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.SKU != nil {
		updates["sku"] = strings.TrimSpace(*req.SKU)
		updates["sku_normalized"] = models.NormalizeSKU(*req.SKU)
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := r.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product by ID. Returns gorm.ErrRecordNotFound when
// no row matched.
func (r *ProductsRepository) DeleteProduct(id uint) error {
	result := r.db.Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetProducts retrieves products with filters and pagination
func (r *ProductsRepository) GetProducts(req *models.ListProductsRequest) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})
	query = applyProductFilters(query, req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.PerPage
	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(req.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// DeleteAllProducts removes every product row and returns the deleted count
func (r *ProductsRepository) DeleteAllProducts() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.Product{})
	return result.RowsAffected, result.Error
}

// CountProducts returns the total number of products
func (r *ProductsRepository) CountProducts() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// UpsertBatch inserts or updates a batch of products in a single statement,
// matching on sku_normalized. When the same SKU appears more than once within
// the batch the later occurrence wins; duplicates are collapsed before the
// insert because a single statement cannot touch the same row twice.
func (r *ProductsRepository) UpsertBatch(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	deduped := collapseBySKU(products)

	now := time.Now()
	for i := range deduped {
		if deduped[i].CreatedAt.IsZero() {
			deduped[i].CreatedAt = now
		}
		deduped[i].UpdatedAt = now
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku_normalized"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sku", "name", "description", "price", "is_active", "updated_at",
		}),
	}).Create(&deduped).Error
}

// collapseBySKU keeps the last occurrence of each normalized SKU while
// preserving first-seen order.
func collapseBySKU(products []models.Product) []models.Product {
	index := make(map[string]int, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if i, seen := index[p.SKUNormalized]; seen {
			out[i] = p
			continue
		}
		index[p.SKUNormalized] = len(out)
		out = append(out, p)
	}
	return out
}

func applyProductFilters(query *gorm.DB, req *models.ListProductsRequest) *gorm.DB {
	if req.SKU != "" {
		query = query.Where("sku_normalized LIKE ?", "%"+strings.ToLower(req.SKU)+"%")
	}
	if req.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(req.Name)+"%")
	}
	if req.Description != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(req.Description)+"%")
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	return query
}
