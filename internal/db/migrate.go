package db

import (
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models 마이그레이션 대상 모델 목록
func Models() []interface{} {
	return []interface{}{
		&model.Member{},
		&model.Product{},
		&model.Store{},
		&model.StoreDeliveryArea{},
		&model.StoreAreaPricing{},
		&model.Order{},
		&model.LedgerEntry{},
		&model.Withdrawal{},
		&model.StoreSettlement{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData(DB)
}

func seedInitialData(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	// 상품 카탈로그 (주문 검증에 필요)
	if err := seedProducts(db); err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedProducts 기본 상품 데이터 생성
func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := []model.Product{
		{ProductType: model.ProductTypeBasket, Name: "계절 꽃바구니", Price: 60000, IsActive: true},
		{ProductType: model.ProductTypeBasket, Name: "프리미엄 장미 꽃바구니", Price: 90000, IsActive: true},
		{ProductType: model.ProductTypeWreath, Name: "근조화환 3단", Price: 100000, IsActive: true},
		{ProductType: model.ProductTypeWreath, Name: "축하화환 3단", Price: 100000, IsActive: true},
		{ProductType: model.ProductTypeOrchid, Name: "동양란", Price: 70000, IsActive: true},
		{ProductType: model.ProductTypeOrchid, Name: "호접란", Price: 120000, IsActive: true},
		{ProductType: model.ProductTypeBouquet, Name: "꽃다발", Price: 50000, IsActive: true},
		{ProductType: model.ProductTypePlant, Name: "개업 관엽식물", Price: 80000, IsActive: true},
	}

	for _, product := range products {
		if err := db.Create(&product).Error; err != nil {
			logger.Error("Failed to create product", err, map[string]interface{}{
				"product": product.Name,
			})
			return err
		}
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_products": len(products),
	})
	return nil
}
