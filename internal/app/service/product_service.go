package service

import (
	"errors"
	"strings"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidProductPrice = errors.New("product price must be positive")
	ErrInvalidProductType  = errors.New("unknown product type")
)

var knownProductTypes = map[string]bool{
	model.ProductTypeBasket:  true,
	model.ProductTypeWreath:  true,
	model.ProductTypeOrchid:  true,
	model.ProductTypeBouquet: true,
	model.ProductTypePlant:   true,
}

type ProductService interface {
	ListProducts(productType string) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{
		productRepo: productRepo,
	}
}

func (s *productService) ListProducts(productType string) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"product_type": productType,
	})

	products, err := s.productRepo.FindActive(strings.TrimSpace(productType))
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Info("Products listed", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

// CreateProduct registers a product; used by the seed command.
func (s *productService) CreateProduct(product *model.Product) error {
	if !knownProductTypes[product.ProductType] {
		return ErrInvalidProductType
	}
	if product.Price <= 0 {
		return ErrInvalidProductPrice
	}

	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":   product.ID,
		"product_type": product.ProductType,
		"price":        product.Price,
	})
	return nil
}
