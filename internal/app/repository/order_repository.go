package repository

import (
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindByOrderNumberForUpdate(orderNumber string) (*model.Order, error)
	FindByPaymentTID(tid string) (*model.Order, error)
	Update(order *model.Order) error
	AttachPayment(orderID uint, tid, provider string) (bool, error)
	CountConfirmedReferrals(referrerPhone string, from, to *time.Time) (int64, error)
	FindByReferrer(referrerPhone string) ([]model.Order, error)
	FindOverdueCentralDispatch(now time.Time) ([]model.Order, error)
	MarkDispatchOverdue(ids []uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number":   order.OrderNumber,
		"customer_phone": order.CustomerPhone,
		"total_amount":   order.TotalAmount,
	})

	normalizeOrderTimes(order)
	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number":   order.OrderNumber,
			"customer_phone": order.CustomerPhone,
			"total_amount":   order.TotalAmount,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	logger.Debug("Finding order by number in database", map[string]interface{}{
		"order_number": orderNumber,
	})

	var order model.Order
	if err := r.db.Preload("ReceiverStore").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		logger.Error("Failed to find order by number in database", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		return nil, err
	}

	logger.Debug("Order found by number in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

// FindByOrderNumberForUpdate locks the order row for the rest of the transaction.
func (r *orderRepository) FindByOrderNumberForUpdate(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		logger.Error("Failed to lock order by number in database", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByPaymentTID(tid string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Where("payment_tid = ?", tid).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	normalizeOrderTimes(order)
	if err := r.db.Omit(clause.Associations).Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return nil
}

// AttachPayment records the provider transaction on an order still awaiting payment.
// false means the order left pending_payment in the meantime and nothing was written.
func (r *orderRepository) AttachPayment(orderID uint, tid, provider string) (bool, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPendingPayment).
		Updates(map[string]interface{}{
			"payment_tid":      tid,
			"payment_provider": provider,
		})
	if result.Error != nil {
		logger.Error("Failed to attach payment to order", result.Error, map[string]interface{}{
			"order_id": orderID,
			"tid":      tid,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountConfirmedReferrals counts confirmed orders naming the referrer.
// from/to bound confirmed_at as [from, to) when given.
func (r *orderRepository) CountConfirmedReferrals(referrerPhone string, from, to *time.Time) (int64, error) {
	query := r.db.Model(&model.Order{}).
		Where("referrer_phone = ? AND status = ?", referrerPhone, model.OrderStatusConfirmed)
	if from != nil {
		query = query.Where("confirmed_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("confirmed_at < ?", to.UTC())
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to count confirmed referrals", err, map[string]interface{}{
			"referrer_phone": referrerPhone,
		})
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) FindByReferrer(referrerPhone string) ([]model.Order, error) {
	logger.Debug("Finding orders by referrer in database", map[string]interface{}{
		"referrer_phone": referrerPhone,
	})

	var orders []model.Order
	if err := r.db.Where("referrer_phone = ? AND status <> ?", referrerPhone, model.OrderStatusCancelled).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by referrer in database", err, map[string]interface{}{
			"referrer_phone": referrerPhone,
		})
		return nil, err
	}

	logger.Debug("Orders found by referrer in database", map[string]interface{}{
		"referrer_phone": referrerPhone,
		"count":          len(orders),
	})
	return orders, nil
}

// FindOverdueCentralDispatch returns confirmed central-dispatch orders past their deadline
// that have not been flagged yet.
func (r *orderRepository) FindOverdueCentralDispatch(now time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Where("status = ? AND receiver_store_id IS NULL AND dispatch_overdue = ? AND dispatch_deadline < ?",
		model.OrderStatusConfirmed, false, now.UTC()).
		Order("dispatch_deadline ASC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find overdue central dispatch orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) MarkDispatchOverdue(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.Model(&model.Order{}).
		Where("id IN ?", ids).
		Update("dispatch_overdue", true).Error; err != nil {
		logger.Error("Failed to flag overdue dispatch orders", err, map[string]interface{}{
			"count": len(ids),
		})
		return err
	}
	return nil
}

// normalizeOrderTimes stores the nullable instants in UTC so range queries compare consistently.
func normalizeOrderTimes(order *model.Order) {
	for _, t := range []**time.Time{&order.ConfirmedAt, &order.DispatchDeadline} {
		if *t != nil {
			utc := (*t).UTC()
			*t = &utc
		}
	}
}
