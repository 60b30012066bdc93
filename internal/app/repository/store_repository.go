package repository

import (
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreArea 배송 가능 지역별 화원 수
type StoreArea struct {
	Sido       string
	Sigungu    string
	StoreCount int64
}

type StoreRepository interface {
	Create(store *model.Store) error
	Update(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindOpenBySido(sido string) ([]model.Store, error)
	ListAreas() ([]StoreArea, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"business_name": store.BusinessName,
		"sido":          store.Sido,
		"areas":         len(store.DeliveryAreas),
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"business_name": store.BusinessName,
			"sido":          store.Sido,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id":      store.ID,
		"business_name": store.BusinessName,
	})
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id": store.ID,
		"is_open":  store.IsOpen,
	})

	if err := r.db.Omit(clause.Associations).Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	logger.Debug("Finding store by ID", map[string]interface{}{
		"store_id": id,
	})

	var store model.Store
	if err := r.db.Preload("DeliveryAreas").Preload("AreaPricing").
		First(&store, id).Error; err != nil {
		logger.Error("Failed to find store by ID", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return &store, nil
}

// FindOpenBySido returns open stores that declare at least one delivery area in the sido.
// Sigungu filtering is left to the caller since area names need normalization.
func (r *storeRepository) FindOpenBySido(sido string) ([]model.Store, error) {
	logger.Debug("Finding open stores by sido", map[string]interface{}{
		"sido": sido,
	})

	var stores []model.Store
	if err := r.db.Preload("DeliveryAreas").Preload("AreaPricing").
		Where("is_open = ?", true).
		Where("id IN (?)", r.db.Model(&model.StoreDeliveryArea{}).Select("store_id").Where("sido = ?", sido)).
		Order("business_name ASC").
		Find(&stores).Error; err != nil {
		logger.Error("Failed to find open stores by sido", err, map[string]interface{}{
			"sido": sido,
		})
		return nil, err
	}

	logger.Debug("Open stores found by sido", map[string]interface{}{
		"sido":  sido,
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) ListAreas() ([]StoreArea, error) {
	var areas []StoreArea
	if err := r.db.Model(&model.StoreDeliveryArea{}).
		Select("store_delivery_areas.sido AS sido, store_delivery_areas.sigungu AS sigungu, COUNT(DISTINCT store_delivery_areas.store_id) AS store_count").
		Joins("JOIN stores ON stores.id = store_delivery_areas.store_id AND stores.deleted_at IS NULL").
		Where("stores.is_open = ?", true).
		Group("store_delivery_areas.sido, store_delivery_areas.sigungu").
		Order("store_delivery_areas.sido ASC, store_delivery_areas.sigungu ASC").
		Scan(&areas).Error; err != nil {
		logger.Error("Failed to list store delivery areas", err)
		return nil, err
	}
	return areas, nil
}
