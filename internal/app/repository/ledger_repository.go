package repository

import (
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Create(entry *model.LedgerEntry) error
	FindByID(id uint) (*model.LedgerEntry, error)
	FindByCode(code string) (*model.LedgerEntry, error)
	ListByCustomer(phone string) ([]model.LedgerEntry, error)
	ListAvailable(phone string, now time.Time) ([]model.LedgerEntry, error)
	ListConsumedBy(ref string) ([]model.LedgerEntry, error)
	ListExpiredBetween(from, to time.Time) ([]model.LedgerEntry, error)
	MarkConsumed(id uint, ref string, now time.Time) (bool, error)
}

// 시각은 모두 UTC 로 저장/비교한다 (sqlite 는 문자열 비교).
type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: tx}
}

func (r *ledgerRepository) Create(entry *model.LedgerEntry) error {
	logger.Debug("Creating ledger entry in database", map[string]interface{}{
		"customer_phone": entry.CustomerPhone,
		"amount":         entry.Amount,
		"origin_type":    entry.OriginType,
	})

	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.ExpiresAt = entry.ExpiresAt.UTC()

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create ledger entry in database", err, map[string]interface{}{
			"customer_phone": entry.CustomerPhone,
			"code":           entry.Code,
		})
		return err
	}

	logger.Debug("Ledger entry created in database", map[string]interface{}{
		"entry_id": entry.ID,
		"code":     entry.Code,
	})
	return nil
}

func (r *ledgerRepository) FindByID(id uint) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		logger.Error("Failed to find ledger entry by ID in database", err, map[string]interface{}{
			"entry_id": id,
		})
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) FindByCode(code string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	if err := r.db.Where("code = ?", code).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByCustomer returns every entry of the customer, newest first.
func (r *ledgerRepository) ListByCustomer(phone string) ([]model.LedgerEntry, error) {
	logger.Debug("Listing ledger entries by customer", map[string]interface{}{
		"customer_phone": phone,
	})

	var entries []model.LedgerEntry
	if err := r.db.Where("customer_phone = ?", phone).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error; err != nil {
		logger.Error("Failed to list ledger entries by customer", err, map[string]interface{}{
			"customer_phone": phone,
		})
		return nil, err
	}

	logger.Debug("Ledger entries listed", map[string]interface{}{
		"customer_phone": phone,
		"count":          len(entries),
	})
	return entries, nil
}

// ListAvailable returns unused, unexpired entries ordered oldest-expiring first.
func (r *ledgerRepository) ListAvailable(phone string, now time.Time) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := r.db.Where("customer_phone = ? AND used_at IS NULL AND expires_at > ?", phone, now.UTC()).
		Order("expires_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		logger.Error("Failed to list available ledger entries", err, map[string]interface{}{
			"customer_phone": phone,
		})
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) ListConsumedBy(ref string) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := r.db.Where("consumed_by_order_id = ?", ref).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		logger.Error("Failed to list consumed ledger entries", err, map[string]interface{}{
			"consumed_by": ref,
		})
		return nil, err
	}
	return entries, nil
}

// ListExpiredBetween returns unused entries whose expiry falls in (from, to].
func (r *ledgerRepository) ListExpiredBetween(from, to time.Time) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := r.db.Where("used_at IS NULL AND expires_at > ? AND expires_at <= ?", from.UTC(), to.UTC()).
		Order("expires_at ASC").
		Find(&entries).Error; err != nil {
		logger.Error("Failed to list expired ledger entries", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return nil, err
	}
	return entries, nil
}

// MarkConsumed sets used_at only if the entry is still unused and unexpired.
// It reports whether this call performed the transition.
func (r *ledgerRepository) MarkConsumed(id uint, ref string, now time.Time) (bool, error) {
	logger.Debug("Consuming ledger entry in database", map[string]interface{}{
		"entry_id":    id,
		"consumed_by": ref,
	})

	result := r.db.Model(&model.LedgerEntry{}).
		Where("id = ? AND used_at IS NULL AND expires_at > ?", id, now.UTC()).
		Updates(map[string]interface{}{
			"used_at":              now.UTC(),
			"consumed_by_order_id": ref,
		})
	if result.Error != nil {
		logger.Error("Failed to consume ledger entry in database", result.Error, map[string]interface{}{
			"entry_id":    id,
			"consumed_by": ref,
		})
		return false, result.Error
	}

	logger.Debug("Ledger entry consume attempted", map[string]interface{}{
		"entry_id":      id,
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected == 1, nil
}
