package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// AddressInput 주소 검색 위젯 결과
type AddressInput struct {
	Sido         string `json:"sido" binding:"required"`
	Sigungu      string `json:"sigungu" binding:"required"`
	Dong         string `json:"dong"`
	RoadAddress  string `json:"road_address"`
	JibunAddress string `json:"jibun_address"`
	Detail       string `json:"detail"`
	Zonecode     string `json:"zonecode"`
}

// toDeliveryAddress 도로명 주소를 우선하고 상세 주소를 덧붙인다
func (a AddressInput) toDeliveryAddress() model.DeliveryAddress {
	base := a.RoadAddress
	if base == "" {
		base = a.JibunAddress
	}
	detail := base
	if a.Detail != "" {
		if detail != "" {
			detail += " "
		}
		detail += a.Detail
	}
	return model.DeliveryAddress{
		Sido:       a.Sido,
		Sigungu:    a.Sigungu,
		Dong:       a.Dong,
		Detail:     detail,
		PostalCode: a.Zonecode,
	}
}

type CreateOrderRequest struct {
	CustomerName        string       `json:"customer_name" binding:"required"`
	CustomerPhone       string       `json:"customer_phone" binding:"required"`
	RecipientName       string       `json:"recipient_name" binding:"required"`
	RecipientPhone      string       `json:"recipient_phone" binding:"required"`
	Address             AddressInput `json:"address" binding:"required"`
	ProductID           uint         `json:"product_id" binding:"required"`
	Quantity            int          `json:"quantity" binding:"required,min=1"`
	AdditionalFee       int64        `json:"additional_fee" binding:"min=0"`
	AdditionalFeeReason string       `json:"additional_fee_reason"`
	ReceiverStoreID     *uint        `json:"receiver_store_id"`
	ReferrerPhone       string       `json:"referrer_phone"`
	DiscountAmount      int64        `json:"discount_amount" binding:"min=0"` // 사용 요청 포인트
}

type ValidateOrderRequest struct {
	ProductID       uint   `json:"productId" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	CustomerPhone   string `json:"customerPhone" binding:"required"`
	PointsToUse     int64  `json:"pointsToUse" binding:"min=0"`
	ReferrerPhone   string `json:"referrerPhone"`
	AdditionalFee   int64  `json:"additionalFee" binding:"min=0"`
	ReceiverStoreID *uint  `json:"receiverStoreId"`
}

// CreateOrder 주문 생성 (결제 대기)
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create order request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   apperrors.ValidationInvalidInput,
			"message": "주문 정보가 올바르지 않습니다",
		})
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		RecipientName:       req.RecipientName,
		RecipientPhone:      req.RecipientPhone,
		Address:             req.Address.toDeliveryAddress(),
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		AdditionalFee:       req.AdditionalFee,
		AdditionalFeeReason: req.AdditionalFeeReason,
		ReceiverStoreID:     req.ReceiverStoreID,
		ReferrerPhone:       req.ReferrerPhone,
		PointsRequested:     req.DiscountAmount,
	})
	if err != nil {
		m, ok := lookupServiceError(err)
		if !ok {
			log.Error("Failed to create order", err, map[string]interface{}{
				"customer_phone": util.MaskPhone(req.CustomerPhone),
			})
			info := apperrors.ParseError(err, "create order")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   info.Code,
				"message": info.Message,
			})
			return
		}
		log.Warn("Order rejected", map[string]interface{}{
			"code":  m.code,
			"error": err.Error(),
		})
		c.JSON(m.status, gin.H{
			"success": false,
			"error":   m.code,
			"message": m.message,
		})
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"orderNumber":    order.OrderNumber,
		"totalAmount":    order.TotalAmount,
		"discountAmount": order.DiscountAmount,
		"priceSource":    order.PriceSource,
	})
}

// ValidateOrder 결제 전 금액 확인
// POST /api/v1/orders/validate
func (ctrl *OrderController) ValidateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ValidateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": "입력 정보가 올바르지 않습니다",
		})
		return
	}

	result, err := ctrl.orderService.Validate(service.ValidateOrderInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		CustomerPhone:   req.CustomerPhone,
		PointsToUse:     req.PointsToUse,
		ReferrerPhone:   req.ReferrerPhone,
		AdditionalFee:   req.AdditionalFee,
		ReceiverStoreID: req.ReceiverStoreID,
	})
	if err != nil {
		m, ok := lookupServiceError(err)
		if !ok {
			log.Error("Failed to validate order", err)
			apperrors.InternalError(c, "")
			return
		}
		c.JSON(m.status, gin.H{
			"valid": false,
			"error": m.message,
			"code":  m.code,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder 주문 조회
// GET /api/v1/orders/:number
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderNumber := c.Param("number")
	order, err := ctrl.orderService.GetOrder(orderNumber)
	if err != nil {
		log.Warn("Order lookup failed", map[string]interface{}{
			"order_number": orderNumber,
			"error":        err.Error(),
		})
		respondServiceError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": publicOrder(order),
	})
}

// publicOrder 주문번호만으로 조회되므로 연락처와 상세 주소를 가린다
func publicOrder(order *model.Order) model.Order {
	masked := *order
	masked.CustomerPhone = util.MaskPhone(order.CustomerPhone)
	masked.RecipientPhone = util.MaskPhone(order.RecipientPhone)
	if order.ReferrerPhone != nil {
		referrer := util.MaskPhone(*order.ReferrerPhone)
		masked.ReferrerPhone = &referrer
	}
	masked.Address.Detail = ""
	return masked
}
