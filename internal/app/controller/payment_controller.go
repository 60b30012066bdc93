package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
	orderService   service.OrderService
}

func NewPaymentController(paymentService service.PaymentService, orderService service.OrderService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		orderService:   orderService,
	}
}

// ConfirmPaymentRequest 결제사 완료 통지
type ConfirmPaymentRequest struct {
	OrderNumber   string `json:"orderNumber" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
	Provider      string `json:"provider"`
}

type ReadyPaymentRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
}

// ConfirmPayment 결제사 완료 통지. 서명 검증을 통과한 요청만 들어온다.
// 같은 거래 ID 로 여러 번 호출해도 결과는 같다.
// POST /api/v1/payments/confirm
func (ctrl *PaymentController) ConfirmPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid confirm payment request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "결제 정보가 올바르지 않습니다")
		return
	}

	confirmation, err := ctrl.orderService.Confirm(c.Request.Context(), service.ConfirmInput{
		OrderNumber:   req.OrderNumber,
		TransactionID: req.TransactionID,
		Provider:      req.Provider,
		Verified:      true,
	})
	if err != nil {
		log.Warn("Payment confirmation failed", map[string]interface{}{
			"order_number": req.OrderNumber,
			"tid":          req.TransactionID,
			"error":        err.Error(),
		})
		respondServiceError(c, err, "confirm payment")
		return
	}

	log.Info("Payment confirmed", map[string]interface{}{
		"order_number": confirmation.OrderNumber,
		"total_amount": confirmation.TotalAmount,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"confirmation": confirmation,
	})
}

// KakaoReady 카카오페이 결제 준비
// POST /api/v1/payments/kakao/ready
func (ctrl *PaymentController) KakaoReady(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ReadyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "주문번호를 입력해주세요")
		return
	}

	ready, err := ctrl.paymentService.Ready(c.Request.Context(), req.OrderNumber)
	if err != nil {
		log.Error("Failed to prepare payment", err, map[string]interface{}{
			"order_number": req.OrderNumber,
		})
		respondServiceError(c, err, "prepare payment")
		return
	}

	c.JSON(http.StatusOK, ready)
}

// KakaoSuccess 카카오페이 승인 콜백
// GET /api/v1/payments/kakao/success?order_number=&pg_token=
func (ctrl *PaymentController) KakaoSuccess(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNumber := c.Query("order_number")
	pgToken := c.Query("pg_token")
	if orderNumber == "" || pgToken == "" {
		log.Warn("Missing required parameters", nil)
		apperrors.BadRequest(c, apperrors.ValidationRequired, "필수 파라미터가 누락되었습니다")
		return
	}

	confirmation, err := ctrl.paymentService.Approve(c.Request.Context(), orderNumber, pgToken)
	if err != nil {
		log.Error("Failed to approve payment", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		respondServiceError(c, err, "approve payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"confirmation": confirmation,
	})
}

// KakaoFail 결제 실패/취소 콜백. 주문은 결제 대기 상태로 남는다.
// GET /api/v1/payments/kakao/fail
func (ctrl *PaymentController) KakaoFail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	log.Info("Payment not completed", map[string]interface{}{
		"order_number": c.Query("order_number"),
		"path":         c.FullPath(),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": "결제가 완료되지 않았습니다",
	})
}
