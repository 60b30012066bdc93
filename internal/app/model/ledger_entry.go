package model

import "time"

type OriginType string // 적립 사유

const (
	OriginPurchase OriginType = "purchase" // 구매 적립
	OriginReferral OriginType = "referral" // 추천 적립
	OriginWelcome  OriginType = "welcome"  // 가입 축하
)

// Valid reports whether the origin is one of the known grant reasons.
func (o OriginType) Valid() bool {
	switch o {
	case OriginPurchase, OriginReferral, OriginWelcome:
		return true
	}
	return false
}

// LedgerEntry 포인트/쿠폰 적립 내역
// amount, origin_type, expires_at 은 생성 이후 변경되지 않는다.
// used_at 과 consumed_by_order_id 는 조건부 UPDATE 로 한 번만 설정된다.
type LedgerEntry struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                         // 내역 ID
	CustomerPhone     string     `gorm:"type:varchar(20);not null;index" json:"customer_phone"`        // 고객 휴대폰 (숫자만)
	Code              string     `gorm:"type:varchar(40);not null;uniqueIndex" json:"code"`            // 쿠폰 코드
	Amount            int64      `gorm:"not null" json:"amount"`                                       // 금액 (원)
	OriginType        OriginType `gorm:"type:varchar(20);not null;index" json:"origin_type"`           // 적립 사유
	SourceOrderID     *uint      `gorm:"index" json:"source_order_id,omitempty"`                       // 적립을 발생시킨 주문
	SplitFromID       *uint      `gorm:"index" json:"split_from_id,omitempty"`                         // 부분 사용 시 원본 내역
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`                                   // 적립 시각
	ExpiresAt         time.Time  `gorm:"not null;index" json:"expires_at"`                             // 만료 시각
	UsedAt            *time.Time `json:"used_at,omitempty"`                                            // 사용 시각
	ConsumedByOrderID *string    `gorm:"type:varchar(40);index" json:"consumed_by_order_id,omitempty"` // 사용처 (주문번호 또는 출금번호)
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// IsUsed reports whether the entry has been consumed.
func (e *LedgerEntry) IsUsed() bool {
	return e.UsedAt != nil
}

// IsExpired reports whether now is past the expiry instant.
func (e *LedgerEntry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// IsAvailable reports whether the entry can still be spent at now.
func (e *LedgerEntry) IsAvailable(now time.Time) bool {
	return !e.IsUsed() && e.ExpiresAt.After(now)
}
