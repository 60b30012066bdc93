package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/internal/report"
)

// AdminController 운영팀 도구 (출금 처리 목록)
type AdminController struct {
	withdrawalService service.WithdrawalService
	loc               *time.Location
	now               func() time.Time
}

func NewAdminController(withdrawalService service.WithdrawalService, loc *time.Location) *AdminController {
	return &AdminController{
		withdrawalService: withdrawalService,
		loc:               loc,
		now:               time.Now,
	}
}

// ListWithdrawals 출금 요청 목록
// GET /api/v1/admin/withdrawals?status=pending
func (ctrl *AdminController) ListWithdrawals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.WithdrawalStatus(c.DefaultQuery("status", string(model.WithdrawalStatusPending)))
	withdrawals, err := ctrl.withdrawalService.List(status)
	if err != nil {
		log.Error("Failed to list withdrawals", err)
		respondServiceError(c, err, "list withdrawals")
		return
	}

	var total int64
	for _, w := range withdrawals {
		total += w.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawals": withdrawals,
		"count":       len(withdrawals),
		"totalAmount": total,
	})
}

// ExportWithdrawals 출금 요청 엑셀 다운로드
// GET /api/v1/admin/withdrawals/export
func (ctrl *AdminController) ExportWithdrawals(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	withdrawals, err := ctrl.withdrawalService.List(model.WithdrawalStatusPending)
	if err != nil {
		log.Error("Failed to list withdrawals for export", err)
		respondServiceError(c, err, "export withdrawals")
		return
	}

	rep, err := report.BuildWithdrawalReport(withdrawals, ctrl.now(), ctrl.loc)
	if err != nil {
		log.Error("Failed to build withdrawal report", err)
		apperrors.InternalError(c, "보고서 생성에 실패했습니다")
		return
	}

	log.Info("Withdrawal report exported", map[string]interface{}{
		"count": rep.Count,
		"total": rep.Total,
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename()))
	c.Data(http.StatusOK, report.ContentTypeXLSX, rep.Body)
}
