package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

type serviceErrorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// 서비스 에러 -> HTTP 응답 매핑
// 정책 위반은 4xx 로 돌려주고 재시도하지 않는다.
var serviceErrorMappings = []serviceErrorMapping{
	{util.ErrInvalidPhone, http.StatusBadRequest, apperrors.ValidationInvalidPhone, "휴대폰 번호 형식이 올바르지 않습니다"},

	{service.ErrLedgerEntryNotFound, http.StatusNotFound, apperrors.LedgerEntryNotFound, "적립 내역을 찾을 수 없습니다"},
	{service.ErrLedgerAlreadyUsed, http.StatusConflict, apperrors.LedgerAlreadyUsed, "이미 사용된 포인트입니다"},
	{service.ErrLedgerExpired, http.StatusBadRequest, apperrors.LedgerExpired, "만료된 포인트입니다"},

	{service.ErrNegativeTotal, http.StatusBadRequest, apperrors.PricingNegativeTotal, "결제 금액이 올바르지 않습니다"},
	{service.ErrDiscountExceedsBalance, http.StatusConflict, apperrors.PricingDiscountExceedsBalance, "보유 포인트가 부족합니다. 다시 주문해주세요"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.PricingInvalidQuantity, "수량은 1개 이상이어야 합니다"},
	{service.ErrInvalidAdditionalFee, http.StatusBadRequest, apperrors.PricingInvalidFee, "추가 요금이 올바르지 않습니다"},
	{service.ErrInvalidPointsRequest, http.StatusBadRequest, apperrors.ValidationInvalidRange, "사용 포인트가 올바르지 않습니다"},
	{service.ErrMinOrderAmountNotMet, http.StatusBadRequest, apperrors.PricingMinOrderAmountNotMet, "화원 최소 주문 금액에 미달합니다"},

	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "주문을 찾을 수 없습니다"},
	{service.ErrOrderNotPending, http.StatusConflict, apperrors.OrderNotPending, "결제 대기 중인 주문이 아닙니다"},
	{service.ErrIncompleteAddress, http.StatusBadRequest, apperrors.ValidationAddress, "배송지 정보를 모두 입력해주세요"},
	{service.ErrMissingContact, http.StatusBadRequest, apperrors.ValidationRequired, "주문자와 받는 분 이름을 입력해주세요"},
	{service.ErrProductUnavailable, http.StatusBadRequest, apperrors.OrderProductInvalid, "판매 중인 상품이 아닙니다"},
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "상품을 찾을 수 없습니다"},
	{service.ErrInvalidProductType, http.StatusBadRequest, apperrors.ValidationInvalidInput, "알 수 없는 상품 유형입니다"},
	{service.ErrInvalidProductPrice, http.StatusBadRequest, apperrors.ValidationInvalidRange, "상품 가격이 올바르지 않습니다"},

	{service.ErrPaymentAlreadyProcessed, http.StatusConflict, apperrors.PaymentAlreadyProcessed, "이미 처리된 결제입니다"},
	{service.ErrTransactionMismatch, http.StatusConflict, apperrors.PaymentAlreadyProcessed, "주문과 결제 정보가 일치하지 않습니다"},
	{service.ErrMissingTransactionID, http.StatusBadRequest, apperrors.ValidationRequired, "거래 ID 가 필요합니다"},
	{service.ErrPaymentNotConfigured, http.StatusServiceUnavailable, apperrors.PaymentNotConfigured, "결제 서비스를 사용할 수 없습니다"},
	{service.ErrPaymentNotReady, http.StatusBadRequest, apperrors.OrderNotPending, "결제 준비가 되지 않은 주문입니다"},
	{service.ErrInvalidPaymentAmount, http.StatusBadRequest, apperrors.ValidationInvalidRange, "결제 금액이 올바르지 않습니다"},
	{service.ErrPaymentProviderFailed, http.StatusBadGateway, apperrors.PaymentProviderFailed, "결제사 요청에 실패했습니다. 잠시 후 다시 시도해주세요"},

	{service.ErrBelowMinimum, http.StatusBadRequest, apperrors.WithdrawalBelowMinimum, "최소 출금 금액은 5,000원입니다"},
	{service.ErrNotAStepMultiple, http.StatusBadRequest, apperrors.WithdrawalNotStepMultiple, "출금은 5,000원 단위로 가능합니다"},
	{service.ErrInsufficientBalance, http.StatusBadRequest, apperrors.WithdrawalInsufficientFunds, "출금 가능 금액을 초과했습니다"},
	{service.ErrInvalidBankInfo, http.StatusBadRequest, apperrors.WithdrawalInvalidBankInfo, "계좌 정보를 모두 입력해주세요"},

	{service.ErrSelfReferral, http.StatusBadRequest, apperrors.ReferralSelf, "본인을 추천인으로 등록할 수 없습니다"},

	{service.ErrNoEligibleStore, http.StatusNotFound, apperrors.StoreNoEligible, "배송 가능한 화원이 없습니다"},
	{service.ErrStoreNotFound, http.StatusNotFound, apperrors.StoreNotFound, "화원을 찾을 수 없습니다"},
	{service.ErrStoreClosed, http.StatusBadRequest, apperrors.StoreClosed, "영업 중인 화원이 아닙니다"},
	{service.ErrStoreNotEligible, http.StatusBadRequest, apperrors.StoreNotEligible, "선택한 화원은 해당 지역에 배송하지 않습니다"},

	{service.ErrMemberAlreadyExists, http.StatusConflict, apperrors.MemberAlreadyExists, "이미 가입된 번호입니다"},
	{service.ErrMemberNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "회원을 찾을 수 없습니다"},
	{service.ErrInvalidMemberName, http.StatusBadRequest, apperrors.ValidationRequired, "이름을 입력해주세요"},
}

// lookupServiceError finds the response mapping for a known service error.
func lookupServiceError(err error) (serviceErrorMapping, bool) {
	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return serviceErrorMapping{}, false
}

// respondServiceError writes the mapped response, falling back to the DB error parser.
func respondServiceError(c *gin.Context, err error, context string) {
	if m, ok := lookupServiceError(err); ok {
		apperrors.RespondWithError(c, m.status, m.code, m.message)
		return
	}
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}
