package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/payment/kakaopay"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotConfigured  = errors.New("payment provider is not configured")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrPaymentNotReady       = errors.New("payment has not been prepared")
	ErrPaymentProviderFailed = errors.New("payment provider request failed")
)

// PaymentReady 결제 준비 결과
type PaymentReady struct {
	TID         string    `json:"tid"`
	RedirectURL string    `json:"redirectUrl"`
	MobileURL   string    `json:"mobileUrl,omitempty"`
	AppURL      string    `json:"appUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentApproval 결제 승인 결과
type PaymentApproval struct {
	TID        string    `json:"tid"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// PaymentProvider 외부 결제 대행사. 승인 시 거래 ID 를 돌려준다.
type PaymentProvider interface {
	Name() string
	Ready(ctx context.Context, order *model.Order) (*PaymentReady, error)
	Approve(ctx context.Context, order *model.Order, tid, pgToken string) (*PaymentApproval, error)
}

type kakaoPayProvider struct {
	client *kakaopay.Client
}

func NewKakaoPayProvider(client *kakaopay.Client) PaymentProvider {
	return &kakaoPayProvider{client: client}
}

func (p *kakaoPayProvider) Name() string {
	return "kakaopay"
}

func (p *kakaoPayProvider) Ready(ctx context.Context, order *model.Order) (*PaymentReady, error) {
	cfg := p.client.GetConfig()

	resp, err := p.client.Ready(ctx, kakaopay.ReadyRequest{
		PartnerOrderID: order.OrderNumber,
		PartnerUserID:  order.CustomerPhone,
		ItemName:       order.ProductName,
		Quantity:       order.Quantity,
		TotalAmount:    order.TotalAmount,
		TaxFreeAmount:  0,
		ApprovalURL:    withOrderNumber(cfg.ApprovalURL, order.OrderNumber),
		FailURL:        withOrderNumber(cfg.FailURL, order.OrderNumber),
		CancelURL:      withOrderNumber(cfg.CancelURL, order.OrderNumber),
	})
	if err != nil {
		return nil, err
	}

	return &PaymentReady{
		TID:         resp.TID,
		RedirectURL: resp.NextRedirectPCURL,
		MobileURL:   resp.NextRedirectMobileURL,
		AppURL:      resp.NextRedirectAppURL,
		CreatedAt:   resp.CreatedAt.Time,
	}, nil
}

func (p *kakaoPayProvider) Approve(ctx context.Context, order *model.Order, tid, pgToken string) (*PaymentApproval, error) {
	resp, err := p.client.Approve(ctx, kakaopay.ApproveRequest{
		TID:            tid,
		PartnerOrderID: order.OrderNumber,
		PartnerUserID:  order.CustomerPhone,
		PgToken:        pgToken,
	})
	if err != nil {
		return nil, err
	}

	return &PaymentApproval{
		TID:        resp.TID,
		Amount:     resp.Amount.Total,
		Method:     resp.PaymentMethodType,
		ApprovedAt: resp.ApprovedAt.Time,
	}, nil
}

func withOrderNumber(rawURL, orderNumber string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("order_number", orderNumber)
	u.RawQuery = q.Encode()
	return u.String()
}

type PaymentService interface {
	Ready(ctx context.Context, orderNumber string) (*PaymentReady, error)
	Approve(ctx context.Context, orderNumber, pgToken string) (*OrderConfirmation, error)
}

type paymentService struct {
	provider     PaymentProvider
	orderRepo    repository.OrderRepository
	orderService OrderService
}

// NewPaymentService wires a provider to order confirmation. provider may be nil
// when no gateway is configured.
func NewPaymentService(provider PaymentProvider, orderRepo repository.OrderRepository, orderService OrderService) PaymentService {
	return &paymentService{
		provider:     provider,
		orderRepo:    orderRepo,
		orderService: orderService,
	}
}

func (s *paymentService) Ready(ctx context.Context, orderNumber string) (*PaymentReady, error) {
	if s.provider == nil {
		return nil, ErrPaymentNotConfigured
	}

	order, err := s.findOrder(orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPendingPayment {
		return nil, ErrOrderNotPending
	}
	if order.TotalAmount <= 0 {
		// 전액 포인트 결제는 결제사를 거치지 않는다
		return nil, ErrInvalidPaymentAmount
	}

	logger.Info("Preparing payment", map[string]interface{}{
		"order_number": order.OrderNumber,
		"provider":     s.provider.Name(),
		"amount":       order.TotalAmount,
	})

	ready, err := s.provider.Ready(ctx, order)
	if err != nil {
		logger.Error("Payment ready failed", err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailed, err)
	}

	// 결제사 호출 중에 주문이 확정됐을 수 있으므로 결제 대기 상태일 때만 기록한다
	attached, err := s.orderRepo.AttachPayment(order.ID, ready.TID, s.provider.Name())
	if err != nil {
		return nil, err
	}
	if !attached {
		logger.Warn("Order left pending payment during ready", map[string]interface{}{
			"order_number": order.OrderNumber,
			"tid":          ready.TID,
		})
		return nil, ErrOrderNotPending
	}

	return ready, nil
}

// Approve completes the provider handshake and confirms the order.
func (s *paymentService) Approve(ctx context.Context, orderNumber, pgToken string) (*OrderConfirmation, error) {
	if s.provider == nil {
		return nil, ErrPaymentNotConfigured
	}

	order, err := s.findOrder(orderNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentTID == nil {
		return nil, ErrPaymentNotReady
	}
	tid := *order.PaymentTID

	// 이미 확정된 주문이면 결제사 재호출 없이 기존 결과를 돌려준다
	if order.Status == model.OrderStatusConfirmed {
		return s.orderService.Confirm(ctx, ConfirmInput{
			OrderNumber:   order.OrderNumber,
			TransactionID: tid,
			Provider:      s.provider.Name(),
		})
	}

	approval, err := s.provider.Approve(ctx, order, tid, pgToken)
	if err != nil {
		logger.Error("Payment approval failed", err, map[string]interface{}{
			"order_number": order.OrderNumber,
			"tid":          tid,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailed, err)
	}

	if approval.Amount != order.TotalAmount {
		logger.Error("Approved amount does not match order", ErrInvalidPaymentAmount, map[string]interface{}{
			"order_number": order.OrderNumber,
			"approved":     approval.Amount,
			"expected":     order.TotalAmount,
		})
		return nil, ErrInvalidPaymentAmount
	}

	return s.orderService.Confirm(ctx, ConfirmInput{
		OrderNumber:   order.OrderNumber,
		TransactionID: tid,
		Provider:      s.provider.Name(),
	})
}

func (s *paymentService) findOrder(orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
