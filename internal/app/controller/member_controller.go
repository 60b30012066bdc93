package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

type MemberController struct {
	memberService service.MemberService
}

func NewMemberController(memberService service.MemberService) *MemberController {
	return &MemberController{
		memberService: memberService,
	}
}

type RegisterMemberRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// Register 회원 가입 (가입 축하 포인트 지급)
// POST /api/v1/members
func (ctrl *MemberController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid register request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	member, err := ctrl.memberService.Register(c.Request.Context(), req.Phone, req.Name)
	if err != nil {
		log.Warn("Member registration failed", map[string]interface{}{
			"phone": util.MaskPhone(req.Phone),
			"error": err.Error(),
		})
		respondServiceError(c, err, "register member")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"member": member,
	})
}

// GetMember 회원 조회
// GET /api/v1/members/:phone
func (ctrl *MemberController) GetMember(c *gin.Context) {
	member, err := ctrl.memberService.GetByPhone(c.Param("phone"))
	if err != nil {
		respondServiceError(c, err, "get member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member": member,
	})
}
