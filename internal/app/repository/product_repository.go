package repository

import (
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindActive(productType string) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":         product.Name,
			"product_type": product.ProductType,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

// FindActive lists products on sale, optionally narrowed to one product type.
func (r *productRepository) FindActive(productType string) ([]model.Product, error) {
	query := r.db.Where("is_active = ?", true)
	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}

	var products []model.Product
	if err := query.Order("product_type ASC").Order("price ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find active products", err, map[string]interface{}{
			"product_type": productType,
		})
		return nil, err
	}
	return products, nil
}
