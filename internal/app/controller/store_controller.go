package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/internal/middleware"
)

type StoreController struct {
	matcher        service.StoreMatcher
	productService service.ProductService
	now            func() time.Time
}

func NewStoreController(matcher service.StoreMatcher, productService service.ProductService) *StoreController {
	return &StoreController{
		matcher:        matcher,
		productService: productService,
		now:            time.Now,
	}
}

// MatchStores 배송지 기준 수주 화원 후보 + 본사 배정
// GET /api/v1/stores/match?sido=&sigungu=&product_id=&quantity=
// product_id 대신 product_type 과 base_price 를 직접 줄 수도 있다.
func (ctrl *StoreController) MatchStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sido := c.Query("sido")
	sigungu := c.Query("sigungu")
	if sido == "" || sigungu == "" {
		apperrors.BadRequest(c, apperrors.ValidationAddress, "시·도와 시·군·구를 입력해주세요")
		return
	}

	quantity := 1
	if q := c.Query("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			apperrors.BadRequest(c, apperrors.PricingInvalidQuantity, "수량은 1개 이상이어야 합니다")
			return
		}
		quantity = n
	}

	productType := c.Query("product_type")
	var basePrice int64
	if idStr := c.Query("product_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID 입니다")
			return
		}
		product, err := ctrl.productService.GetProductByID(uint(id))
		if err != nil {
			respondServiceError(c, err, "match stores")
			return
		}
		productType = product.ProductType
		basePrice = product.Price
	} else if p := c.Query("base_price"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "기준 가격이 올바르지 않습니다")
			return
		}
		basePrice = v
	}

	result, err := ctrl.matcher.Match(service.MatchQuery{
		Area:        service.AreaQuery{Sido: sido, Sigungu: sigungu},
		ProductType: productType,
		BasePrice:   basePrice,
		Quantity:    quantity,
	}, ctrl.now())
	if err != nil {
		log.Error("Failed to match stores", err, map[string]interface{}{
			"sido":    sido,
			"sigungu": sigungu,
		})
		respondServiceError(c, err, "match stores")
		return
	}

	log.Info("Stores matched", map[string]interface{}{
		"sido":       result.Sido,
		"sigungu":    result.Sigungu,
		"candidates": len(result.Candidates),
	})

	c.JSON(http.StatusOK, result)
}

// GetAreas 화원이 배송하는 지역 목록
// GET /api/v1/stores/areas
func (ctrl *StoreController) GetAreas(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	areas, err := ctrl.matcher.ListAreas()
	if err != nil {
		log.Error("Failed to list store areas", err)
		apperrors.InternalError(c, "지역 목록을 불러오지 못했습니다")
		return
	}

	type areaResponse struct {
		Sido       string `json:"sido"`
		Sigungu    string `json:"sigungu"`
		StoreCount int64  `json:"storeCount"`
	}
	resp := make([]areaResponse, 0, len(areas))
	for _, a := range areas {
		resp = append(resp, areaResponse{Sido: a.Sido, Sigungu: a.Sigungu, StoreCount: a.StoreCount})
	}

	c.JSON(http.StatusOK, gin.H{
		"areas": resp,
		"count": len(resp),
	})
}
