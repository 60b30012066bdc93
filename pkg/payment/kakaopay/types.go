package kakaopay

import (
	"fmt"
	"strings"
	"time"
)

// KakaoPay 는 타임존 없는 KST 시각 문자열을 돌려준다.
const timeLayout = "2006-01-02T15:04:05"

var kst = time.FixedZone("KST", 9*60*60)

// Time KakaoPay 응답 시각
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	parsed, err := time.ParseInLocation(timeLayout, raw, kst)
	if err != nil {
		return fmt.Errorf("failed to parse kakaopay time %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// ReadyRequest 결제 준비 요청
type ReadyRequest struct {
	CID            string `json:"cid"`
	PartnerOrderID string `json:"partner_order_id"` // 주문번호
	PartnerUserID  string `json:"partner_user_id"`  // 주문자 휴대폰
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	TotalAmount    int64  `json:"total_amount"`
	TaxFreeAmount  int64  `json:"tax_free_amount"`
	ApprovalURL    string `json:"approval_url"`
	FailURL        string `json:"fail_url"`
	CancelURL      string `json:"cancel_url"`
}

// ReadyResponse 결제 준비 응답
type ReadyResponse struct {
	TID                   string `json:"tid"`
	NextRedirectAppURL    string `json:"next_redirect_app_url"`
	NextRedirectMobileURL string `json:"next_redirect_mobile_url"`
	NextRedirectPCURL     string `json:"next_redirect_pc_url"`
	CreatedAt             Time   `json:"created_at"`
}

// ApproveRequest 결제 승인 요청
type ApproveRequest struct {
	CID            string `json:"cid"`
	TID            string `json:"tid"`
	PartnerOrderID string `json:"partner_order_id"`
	PartnerUserID  string `json:"partner_user_id"`
	PgToken        string `json:"pg_token"`
}

// Amount 결제 금액 정보
type Amount struct {
	Total    int64 `json:"total"`
	TaxFree  int64 `json:"tax_free"`
	VAT      int64 `json:"vat"`
	Point    int64 `json:"point"`
	Discount int64 `json:"discount"`
}

// ApproveResponse 결제 승인 응답
type ApproveResponse struct {
	AID               string `json:"aid"`
	TID               string `json:"tid"`
	PartnerOrderID    string `json:"partner_order_id"`
	PartnerUserID     string `json:"partner_user_id"`
	PaymentMethodType string `json:"payment_method_type"`
	Amount            Amount `json:"amount"`
	ItemName          string `json:"item_name"`
	Quantity          int    `json:"quantity"`
	CreatedAt         Time   `json:"created_at"`
	ApprovedAt        Time   `json:"approved_at"`
}

// ErrorResponse KakaoPay 오류 응답
type ErrorResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("kakao pay error: code=%d, msg=%s", e.Code, e.Message)
}
