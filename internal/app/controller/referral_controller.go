package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

type ReferralController struct {
	referralService service.ReferralService
	now             func() time.Time
}

func NewReferralController(referralService service.ReferralService) *ReferralController {
	return &ReferralController{
		referralService: referralService,
		now:             time.Now,
	}
}

// GetStats 추천 실적과 등급
// GET /api/v1/referrals/stats?phone=
func (ctrl *ReferralController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	phone, ok := normalizedPhoneQuery(c)
	if !ok {
		return
	}

	stats, err := ctrl.referralService.GetStats(phone, ctrl.now())
	if err != nil {
		log.Error("Failed to get referral stats", err, map[string]interface{}{
			"phone": util.MaskPhone(phone),
		})
		respondServiceError(c, err, "get referral stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// GetHistory 추천 주문 내역
// GET /api/v1/referrals/history?phone=
func (ctrl *ReferralController) GetHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	phone, ok := normalizedPhoneQuery(c)
	if !ok {
		return
	}

	history, err := ctrl.referralService.GetHistory(phone)
	if err != nil {
		log.Error("Failed to get referral history", err, map[string]interface{}{
			"phone": util.MaskPhone(phone),
		})
		respondServiceError(c, err, "get referral history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals": history,
	})
}

// normalizedPhoneQuery reads ?phone= and writes the 400 response itself on failure.
func normalizedPhoneQuery(c *gin.Context) (string, bool) {
	raw := c.Query("phone")
	if raw == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "휴대폰 번호를 입력해주세요")
		return "", false
	}
	phone, err := util.NormalizePhone(raw)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidPhone, "휴대폰 번호 형식이 올바르지 않습니다")
		return "", false
	}
	return phone, true
}
