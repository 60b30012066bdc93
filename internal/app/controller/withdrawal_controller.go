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

type WithdrawalController struct {
	withdrawalService service.WithdrawalService
	now               func() time.Time
}

func NewWithdrawalController(withdrawalService service.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{
		withdrawalService: withdrawalService,
		now:               time.Now,
	}
}

type BankInfoInput struct {
	BankName      string `json:"bankName" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	AccountHolder string `json:"accountHolder" binding:"required"`
}

type WithdrawRequest struct {
	Phone    string        `json:"phone" binding:"required"`
	Amount   int64         `json:"amount" binding:"required"`
	BankInfo BankInfoInput `json:"bankInfo" binding:"required"`
}

// GetSummary 출금 가능 금액 조회
// GET /api/v1/withdraw?phone=
func (ctrl *WithdrawalController) GetSummary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	phone, ok := normalizedPhoneQuery(c)
	if !ok {
		return
	}

	summary, err := ctrl.withdrawalService.Summary(phone, ctrl.now())
	if err != nil {
		log.Error("Failed to get withdrawal summary", err, map[string]interface{}{
			"phone": util.MaskPhone(phone),
		})
		respondServiceError(c, err, "get withdrawal summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RequestWithdrawal 출금 신청
// POST /api/v1/withdraw
func (ctrl *WithdrawalController) RequestWithdrawal(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid withdrawal request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "출금 정보가 올바르지 않습니다")
		return
	}

	withdrawal, err := ctrl.withdrawalService.RequestWithdrawal(c.Request.Context(), service.WithdrawalInput{
		Phone:  req.Phone,
		Amount: req.Amount,
		Bank: model.BankInfo{
			BankName:      req.BankInfo.BankName,
			AccountNumber: req.BankInfo.AccountNumber,
			AccountHolder: req.BankInfo.AccountHolder,
		},
	}, ctrl.now())
	if err != nil {
		log.Warn("Withdrawal rejected", map[string]interface{}{
			"phone":  util.MaskPhone(req.Phone),
			"amount": req.Amount,
			"error":  err.Error(),
		})
		respondServiceError(c, err, "request withdrawal")
		return
	}

	log.Info("Withdrawal requested", map[string]interface{}{
		"withdrawal_number": withdrawal.WithdrawalNumber,
		"amount":            withdrawal.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"withdrawalNumber": withdrawal.WithdrawalNumber,
		"amount":           withdrawal.Amount,
		"status":           withdrawal.Status,
	})
}
