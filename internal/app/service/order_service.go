package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/redis"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderNotPending         = errors.New("order is not awaiting payment")
	ErrIncompleteAddress       = errors.New("delivery address is incomplete")
	ErrMissingContact          = errors.New("customer and recipient names are required")
	ErrProductUnavailable      = errors.New("product is not available")
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")
	ErrTransactionMismatch     = errors.New("transaction does not belong to order")
	ErrMissingTransactionID    = errors.New("transaction id is required")
)

const (
	orderNumberPrefix  = "HW"
	paymentGuardPrefix = "payment:tid:"
	paymentGuardPoll   = 50 * time.Millisecond
)

// CreateOrderInput 주문 생성 요청
type CreateOrderInput struct {
	CustomerName        string
	CustomerPhone       string
	RecipientName       string
	RecipientPhone      string
	Address             model.DeliveryAddress
	ProductID           uint
	Quantity            int
	AdditionalFee       int64
	AdditionalFeeReason string
	ReceiverStoreID     *uint
	ReferrerPhone       string
	PointsRequested     int64
}

// ValidateOrderInput 결제 전 금액 확인 요청
type ValidateOrderInput struct {
	ProductID       uint
	Quantity        int
	CustomerPhone   string
	PointsToUse     int64
	ReferrerPhone   string
	AdditionalFee   int64
	ReceiverStoreID *uint
}

// OrderValidation 결제 전 금액 확인 결과
type OrderValidation struct {
	Valid          bool              `json:"valid"`
	FinalAmount    int64             `json:"finalAmount"`
	PointsVerified int64             `json:"pointsVerified"`
	Subtotal       int64             `json:"subtotal"`
	PriceSource    model.PriceSource `json:"priceSource"`
	Warning        string            `json:"warning,omitempty"`
}

// ConfirmInput 결제 완료 통지
type ConfirmInput struct {
	OrderNumber   string
	TransactionID string
	Provider      string
	// Verified 결제사 서명이 확인된 통지. 결제 준비(Ready) 없이 들어온 거래 ID 는 이 경우에만 받는다.
	Verified bool
}

// OrderConfirmation 주문 확정 결과. 같은 거래 ID 로 다시 요청하면 동일한 값을 돌려준다.
type OrderConfirmation struct {
	OrderNumber      string     `json:"orderNumber"`
	TransactionID    string     `json:"transactionId"`
	Subtotal         int64      `json:"subtotal"`
	AdditionalFee    int64      `json:"additionalFee"`
	DiscountAmount   int64      `json:"discountAmount"`
	TotalAmount      int64      `json:"totalAmount"`
	BuyerReward      int64      `json:"buyerReward"`
	ReferrerReward   int64      `json:"referrerReward"`
	ReceiverStoreID  *uint      `json:"receiverStoreId"`
	DispatchDeadline *time.Time `json:"dispatchDeadline,omitempty"`
	ConfirmedAt      time.Time  `json:"confirmedAt"`
}

type OrderService interface {
	Validate(input ValidateOrderInput) (*OrderValidation, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error)
	GetOrder(orderNumber string) (*model.Order, error)
	Confirm(ctx context.Context, input ConfirmInput) (*OrderConfirmation, error)
	FlagOverdueDispatch(now time.Time) ([]model.Order, error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	ledgerRepo     repository.LedgerRepository
	memberRepo     repository.MemberRepository
	settlementRepo repository.SettlementRepository
	matcher        StoreMatcher
	idempotency    redis.IdempotencyStore
	publisher      events.Publisher
	policy         config.LoyaltyConfig
	db             *gorm.DB
	now            func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	memberRepo repository.MemberRepository,
	settlementRepo repository.SettlementRepository,
	matcher StoreMatcher,
	idempotency redis.IdempotencyStore,
	publisher events.Publisher,
	policy config.LoyaltyConfig,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		ledgerRepo:     ledgerRepo,
		memberRepo:     memberRepo,
		settlementRepo: settlementRepo,
		matcher:        matcher,
		idempotency:    idempotency,
		publisher:      publisher,
		policy:         policy,
		db:             db,
		now:            time.Now,
	}
}

func (s *orderService) Validate(input ValidateOrderInput) (*OrderValidation, error) {
	phone, err := util.NormalizePhone(input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if err := ValidateReferral(phone, input.ReferrerPhone); err != nil {
		return nil, err
	}

	product, err := s.activeProduct(input.ProductID)
	if err != nil {
		return nil, err
	}

	quote := basePriceQuote(product.Price)
	if input.ReceiverStoreID != nil {
		store, err := s.matcher.OpenStore(*input.ReceiverStoreID)
		if err != nil {
			return nil, err
		}
		quote = s.matcher.ResolvePrice(store, product.ProductType, product.Price)
	}

	available, err := s.availableBalance(phone)
	if err != nil {
		return nil, err
	}

	priced, err := PriceOrder(PricingInput{
		UnitPrice:       quote.Price,
		Quantity:        input.Quantity,
		AdditionalFee:   input.AdditionalFee,
		PointsRequested: input.PointsToUse,
	}, available)
	if err != nil {
		return nil, err
	}

	return &OrderValidation{
		Valid:          true,
		FinalAmount:    priced.Total,
		PointsVerified: priced.Discount,
		Subtotal:       priced.Subtotal,
		PriceSource:    quote.Source,
		Warning:        quote.Warning,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error) {
	customerPhone, err := util.NormalizePhone(input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	recipientPhone, err := util.NormalizePhone(input.RecipientPhone)
	if err != nil {
		return nil, err
	}
	if err := validateAddress(input.Address); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.RecipientName) == "" {
		return nil, ErrMissingContact
	}

	var referrerPhone *string
	if input.ReferrerPhone != "" {
		if err := ValidateReferral(customerPhone, input.ReferrerPhone); err != nil {
			logger.Warn("Order rejected: self referral", map[string]interface{}{
				"customer_phone": util.MaskPhone(customerPhone),
			})
			return nil, err
		}
		normalized, _ := util.NormalizePhone(input.ReferrerPhone)
		referrerPhone = &normalized
	}

	logger.Info("Creating order", map[string]interface{}{
		"customer_phone":    util.MaskPhone(customerPhone),
		"product_id":        input.ProductID,
		"quantity":          input.Quantity,
		"receiver_store_id": input.ReceiverStoreID,
	})

	product, err := s.activeProduct(input.ProductID)
	if err != nil {
		return nil, err
	}

	quote := basePriceQuote(product.Price)
	var minOrderAmount int64
	if input.ReceiverStoreID != nil {
		store, area, err := s.matcher.CheckEligible(*input.ReceiverStoreID, AreaQuery{
			Sido:    input.Address.Sido,
			Sigungu: input.Address.Sigungu,
		})
		if err != nil {
			return nil, err
		}
		quote = s.matcher.ResolvePrice(store, product.ProductType, product.Price)
		minOrderAmount = area.MinOrderAmount
	}

	available, err := s.availableBalance(customerPhone)
	if err != nil {
		return nil, err
	}

	priced, err := PriceOrder(PricingInput{
		UnitPrice:       quote.Price,
		Quantity:        input.Quantity,
		AdditionalFee:   input.AdditionalFee,
		PointsRequested: input.PointsRequested,
	}, available)
	if err != nil {
		return nil, err
	}

	if priced.Subtotal < minOrderAmount {
		logger.Warn("Order below store minimum amount", map[string]interface{}{
			"receiver_store_id": *input.ReceiverStoreID,
			"subtotal":          priced.Subtotal,
			"min_order_amount":  minOrderAmount,
		})
		return nil, ErrMinOrderAmountNotMet
	}

	order := &model.Order{
		OrderNumber:         util.GenerateReference(orderNumberPrefix, s.now().In(s.policy.Location())),
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerPhone:       customerPhone,
		RecipientName:       strings.TrimSpace(input.RecipientName),
		RecipientPhone:      recipientPhone,
		Address:             normalizeAddress(input.Address),
		ProductID:           product.ID,
		ProductType:         product.ProductType,
		ProductName:         product.Name,
		UnitPrice:           quote.Price,
		Quantity:            input.Quantity,
		PriceSource:         quote.Source,
		AdditionalFee:       priced.AdditionalFee,
		AdditionalFeeReason: input.AdditionalFeeReason,
		ReceiverStoreID:     input.ReceiverStoreID,
		ReferrerPhone:       referrerPhone,
		PointsRequested:     input.PointsRequested,
		Subtotal:            priced.Subtotal,
		DiscountAmount:      priced.Discount,
		TotalAmount:         priced.Total,
		Status:              model.OrderStatusPendingPayment,
	}

	if err := s.orderRepo.Create(order); err != nil {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"customer_phone": util.MaskPhone(customerPhone),
		})
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"discount":     order.DiscountAmount,
	})
	return order, nil
}

func (s *orderService) GetOrder(orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// Confirm finalises a paid order in one transaction: the discount is taken from
// the ledger, buyer and referrer accruals are granted and the store settlement
// is recorded. Replaying the same transaction id returns the stored result.
func (s *orderService) Confirm(ctx context.Context, input ConfirmInput) (*OrderConfirmation, error) {
	if input.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}

	logger.Info("Confirming order payment", map[string]interface{}{
		"order_number": input.OrderNumber,
		"tid":          input.TransactionID,
		"provider":     input.Provider,
	})

	if s.idempotency != nil {
		key := paymentGuardPrefix + input.TransactionID
		reserved, err := s.reservePaymentGuard(ctx, key)
		switch {
		case err != nil:
			// DB 트랜잭션이 최종 판단하므로 계속 진행
			logger.Warn("Payment guard unavailable", map[string]interface{}{
				"tid":   input.TransactionID,
				"error": err.Error(),
			})
		case !reserved:
			// 앞선 처리가 끝나지 않았다. 행 잠금 뒤에서 확정 결과를 받는다.
			logger.Warn("Payment guard still held, falling back to row lock", map[string]interface{}{
				"tid": input.TransactionID,
			})
		default:
			defer func() {
				if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
					logger.Warn("Failed to release payment guard", map[string]interface{}{
						"tid":   input.TransactionID,
						"error": err.Error(),
					})
				}
			}()
		}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order confirmation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_number": input.OrderNumber,
			})
			panic(r)
		}
	}()

	orders := s.orderRepo.WithTx(tx)
	order, err := orders.FindByOrderNumberForUpdate(input.OrderNumber)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status == model.OrderStatusConfirmed {
		tx.Rollback()
		if order.PaymentTID != nil && *order.PaymentTID == input.TransactionID {
			logger.Info("Duplicate payment notification ignored", map[string]interface{}{
				"order_number": order.OrderNumber,
				"tid":          input.TransactionID,
			})
			return confirmationOf(order), nil
		}
		logger.Warn("Order already confirmed with another transaction", map[string]interface{}{
			"order_number": order.OrderNumber,
			"tid":          input.TransactionID,
		})
		return nil, ErrPaymentAlreadyProcessed
	}
	if order.Status != model.OrderStatusPendingPayment {
		tx.Rollback()
		return nil, ErrOrderNotPending
	}
	if order.PaymentTID != nil && *order.PaymentTID != input.TransactionID {
		tx.Rollback()
		return nil, ErrTransactionMismatch
	}
	if order.PaymentTID == nil && !input.Verified {
		tx.Rollback()
		logger.Warn("Unverified transaction id for unprepared order", map[string]interface{}{
			"order_number": order.OrderNumber,
			"tid":          input.TransactionID,
		})
		return nil, ErrPaymentNotReady
	}

	now := s.now()
	lt := newLedgerTx(tx, s.ledgerRepo, s.policy.EntryValidity)

	if err := lt.spend(order.CustomerPhone, order.DiscountAmount, order.OrderNumber, now); err != nil {
		tx.Rollback()
		if errors.Is(err, errLedgerShortfall) {
			return nil, ErrDiscountExceedsBalance
		}
		return nil, err
	}

	split, err := s.rewardSplitFor(tx, order, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID := order.ID
	if split.BuyerReward > 0 {
		if _, err := lt.grant(GrantInput{
			CustomerPhone: order.CustomerPhone,
			Amount:        split.BuyerReward,
			OriginType:    model.OriginPurchase,
			SourceOrderID: &orderID,
		}, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if order.ReferrerPhone != nil && split.ReferrerReward > 0 {
		if _, err := lt.grant(GrantInput{
			CustomerPhone: *order.ReferrerPhone,
			Amount:        split.ReferrerReward,
			OriginType:    model.OriginReferral,
			SourceOrderID: &orderID,
		}, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if order.ReceiverStoreID != nil {
		settlement := buildSettlement(order, s.policy.StoreCommissionRateBP)
		if err := s.settlementRepo.WithTx(tx).Create(settlement); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		deadline := now.Add(s.policy.CentralDispatchSLA)
		order.DispatchDeadline = &deadline
	}

	tid := input.TransactionID
	order.Status = model.OrderStatusConfirmed
	order.PaymentTID = &tid
	if input.Provider != "" {
		order.PaymentProvider = input.Provider
	}
	order.ConfirmedAt = &now
	order.BuyerReward = split.BuyerReward
	order.ReferrerReward = split.ReferrerReward

	if err := orders.Update(order); err != nil {
		tx.Rollback()
		if repository.IsDuplicateKey(err) {
			return nil, ErrPaymentAlreadyProcessed
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order confirmation", err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil, err
	}

	logger.Info("Order confirmed", map[string]interface{}{
		"order_number":    order.OrderNumber,
		"total_amount":    order.TotalAmount,
		"discount":        order.DiscountAmount,
		"buyer_reward":    order.BuyerReward,
		"referrer_reward": order.ReferrerReward,
		"central":         order.IsCentralDispatch(),
	})

	events.PublishAfterCommit(ctx, s.publisher, lt.events...)
	return confirmationOf(order), nil
}

// reservePaymentGuard waits up to PaymentGuardWait for a concurrent callback
// with the same transaction id to finish. false means the guard is still held.
func (s *orderService) reservePaymentGuard(ctx context.Context, key string) (bool, error) {
	deadline := time.Now().Add(s.policy.PaymentGuardWait)
	for {
		reserved, err := s.idempotency.Reserve(ctx, key, s.policy.PaymentIdempotencyTTL)
		if err != nil || reserved {
			return reserved, err
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(paymentGuardPoll):
		}
	}
}

// FlagOverdueDispatch marks central-dispatch orders whose assignment deadline
// has passed. Assignment itself is handled by the operations team.
func (s *orderService) FlagOverdueDispatch(now time.Time) ([]model.Order, error) {
	orders, err := s.orderRepo.FindOverdueCentralDispatch(now)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		logger.Warn("Central dispatch SLA exceeded", map[string]interface{}{
			"order_number":      o.OrderNumber,
			"dispatch_deadline": o.DispatchDeadline,
			"sido":              o.Address.Sido,
			"sigungu":           o.Address.Sigungu,
		})
	}

	if err := s.orderRepo.MarkDispatchOverdue(ids); err != nil {
		return nil, err
	}
	return orders, nil
}

// rewardSplitFor reads membership and the referrer's tier inside tx.
func (s *orderService) rewardSplitFor(tx *gorm.DB, order *model.Order, now time.Time) (RewardSplit, error) {
	isMember, err := s.memberRepo.WithTx(tx).ExistsByPhone(order.CustomerPhone)
	if err != nil {
		return RewardSplit{}, err
	}

	tier := TierBronze
	hasReferrer := order.ReferrerPhone != nil
	if hasReferrer {
		from := monthStart(now, s.policy.Location())
		to := from.AddDate(0, 1, 0)
		count, err := s.orderRepo.WithTx(tx).CountConfirmedReferrals(*order.ReferrerPhone, &from, &to)
		if err != nil {
			return RewardSplit{}, err
		}
		tier = ComputeTier(int(count)).Tier
	}

	return ComputeRewardSplit(s.policy, order.TotalAmount, tier, isMember, hasReferrer), nil
}

func (s *orderService) activeProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}
	return product, nil
}

// availableBalance reads the ledger directly, never from the display cache.
func (s *orderService) availableBalance(phone string) (int64, error) {
	entries, err := s.ledgerRepo.ListAvailable(phone, s.now())
	if err != nil {
		return 0, err
	}
	return AvailableAmount(entries), nil
}

func buildSettlement(order *model.Order, commissionBP int64) *model.StoreSettlement {
	// 화원 몫은 포인트 할인 전 금액 기준
	gross := order.Subtotal + order.AdditionalFee
	commission := applyRate(gross, commissionBP)
	return &model.StoreSettlement{
		StoreID:          *order.ReceiverStoreID,
		OrderID:          order.ID,
		GrossAmount:      gross,
		CommissionRateBP: commissionBP,
		CommissionAmount: commission,
		NetAmount:        gross - commission,
	}
}

func confirmationOf(order *model.Order) *OrderConfirmation {
	c := &OrderConfirmation{
		OrderNumber:      order.OrderNumber,
		Subtotal:         order.Subtotal,
		AdditionalFee:    order.AdditionalFee,
		DiscountAmount:   order.DiscountAmount,
		TotalAmount:      order.TotalAmount,
		BuyerReward:      order.BuyerReward,
		ReferrerReward:   order.ReferrerReward,
		ReceiverStoreID:  order.ReceiverStoreID,
		DispatchDeadline: order.DispatchDeadline,
	}
	if order.PaymentTID != nil {
		c.TransactionID = *order.PaymentTID
	}
	if order.ConfirmedAt != nil {
		c.ConfirmedAt = *order.ConfirmedAt
	}
	return c
}

func validateAddress(addr model.DeliveryAddress) error {
	for _, v := range []string{addr.Sido, addr.Sigungu, addr.Dong, addr.Detail, addr.PostalCode} {
		if strings.TrimSpace(v) == "" {
			return ErrIncompleteAddress
		}
	}
	return nil
}

func normalizeAddress(addr model.DeliveryAddress) model.DeliveryAddress {
	return model.DeliveryAddress{
		Sido:       util.NormalizeSido(addr.Sido),
		Sigungu:    strings.TrimSpace(addr.Sigungu),
		Dong:       strings.TrimSpace(addr.Dong),
		Detail:     strings.TrimSpace(addr.Detail),
		PostalCode: strings.TrimSpace(addr.PostalCode),
	}
}
