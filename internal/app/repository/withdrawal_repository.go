package repository

import (
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

type WithdrawalRepository interface {
	WithTx(tx *gorm.DB) WithdrawalRepository
	Create(withdrawal *model.Withdrawal) error
	FindByStatus(status model.WithdrawalStatus) ([]model.Withdrawal, error)
	FindByCustomer(phone string) ([]model.Withdrawal, error)
}

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: tx}
}

func (r *withdrawalRepository) Create(withdrawal *model.Withdrawal) error {
	logger.Debug("Creating withdrawal in database", map[string]interface{}{
		"withdrawal_number": withdrawal.WithdrawalNumber,
		"amount":            withdrawal.Amount,
	})

	if err := r.db.Create(withdrawal).Error; err != nil {
		logger.Error("Failed to create withdrawal in database", err, map[string]interface{}{
			"withdrawal_number": withdrawal.WithdrawalNumber,
			"customer_phone":    withdrawal.CustomerPhone,
		})
		return err
	}

	logger.Debug("Withdrawal created in database", map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
	})
	return nil
}

// FindByStatus lists withdrawals oldest first; an empty status returns all.
func (r *withdrawalRepository) FindByStatus(status model.WithdrawalStatus) ([]model.Withdrawal, error) {
	query := r.db.Model(&model.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var withdrawals []model.Withdrawal
	if err := query.Order("created_at ASC").Order("id ASC").Find(&withdrawals).Error; err != nil {
		logger.Error("Failed to find withdrawals by status", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return withdrawals, nil
}

func (r *withdrawalRepository) FindByCustomer(phone string) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	if err := r.db.Where("customer_phone = ?", phone).
		Order("created_at DESC").
		Find(&withdrawals).Error; err != nil {
		logger.Error("Failed to find withdrawals by customer", err, map[string]interface{}{
			"customer_phone": phone,
		})
		return nil, err
	}
	return withdrawals, nil
}
