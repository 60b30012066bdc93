package repository

import (
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

type SettlementRepository interface {
	WithTx(tx *gorm.DB) SettlementRepository
	Create(settlement *model.StoreSettlement) error
	FindByOrderID(orderID uint) (*model.StoreSettlement, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) WithTx(tx *gorm.DB) SettlementRepository {
	return &settlementRepository{db: tx}
}

func (r *settlementRepository) Create(settlement *model.StoreSettlement) error {
	if err := r.db.Create(settlement).Error; err != nil {
		logger.Error("Failed to create store settlement in database", err, map[string]interface{}{
			"store_id": settlement.StoreID,
			"order_id": settlement.OrderID,
		})
		return err
	}

	logger.Debug("Store settlement created in database", map[string]interface{}{
		"settlement_id": settlement.ID,
		"net_amount":    settlement.NetAmount,
	})
	return nil
}

func (r *settlementRepository) FindByOrderID(orderID uint) (*model.StoreSettlement, error) {
	var settlement model.StoreSettlement
	if err := r.db.Where("order_id = ?", orderID).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}
