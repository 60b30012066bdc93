package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

// CouponController 포인트/쿠폰 조회 컨트롤러
type CouponController struct {
	couponService service.CouponService
	now           func() time.Time
}

func NewCouponController(couponService service.CouponService) *CouponController {
	return &CouponController{
		couponService: couponService,
		now:           time.Now,
	}
}

// GetAvailable 사용 가능한 포인트 목록과 합계
// GET /api/v1/coupons/available?phone=
func (ctrl *CouponController) GetAvailable(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	phone := c.Query("phone")
	if phone == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "휴대폰 번호를 입력해주세요")
		return
	}

	now := ctrl.now()
	balance, err := ctrl.couponService.GetBalance(c.Request.Context(), phone, now)
	if err != nil {
		log.Warn("Failed to get balance", map[string]interface{}{
			"phone": util.MaskPhone(phone),
			"error": err.Error(),
		})
		respondServiceError(c, err, "get balance")
		return
	}

	coupons, err := ctrl.couponService.ListAvailable(phone, now)
	if err != nil {
		log.Error("Failed to list available coupons", err)
		respondServiceError(c, err, "list coupons")
		return
	}
	if coupons == nil {
		coupons = []model.LedgerEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons":     coupons,
		"totalPoints": balance.Available,
		"count":       balance.Count,
		"breakdown":   balance.Breakdown,
	})
}
