package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string // 주문 상태 코드
type PriceSource string // 단가 출처

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment" // 결제 대기
	OrderStatusConfirmed      OrderStatus = "confirmed"       // 결제 완료, 주문 확정
	OrderStatusCancelled      OrderStatus = "cancelled"       // 주문 취소

	PriceSourceAreaPricing PriceSource = "area_pricing" // 수주 화원 지역 단가
	PriceSourceBasePrice   PriceSource = "base_price"   // 발주 화원 등록 단가
)

// DeliveryAddress 배송지 (주소 검색 위젯 결과)
type DeliveryAddress struct {
	Sido       string `gorm:"type:varchar(30);not null" json:"sido"`        // 시·도
	Sigungu    string `gorm:"type:varchar(50);not null" json:"sigungu"`     // 시·군·구
	Dong       string `gorm:"type:varchar(50);not null" json:"dong"`        // 읍·면·동
	Detail     string `gorm:"type:text;not null" json:"detail"`             // 상세 주소
	PostalCode string `gorm:"type:varchar(10);not null" json:"postal_code"` // 우편번호
}

type Order struct {
	ID                  uint            `gorm:"primarykey" json:"id"`                                           // 주문 ID
	OrderNumber         string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`      // 주문번호
	CustomerName        string          `gorm:"type:varchar(50);not null" json:"customer_name"`                 // 주문자명
	CustomerPhone       string          `gorm:"type:varchar(20);not null;index" json:"customer_phone"`          // 주문자 연락처
	RecipientName       string          `gorm:"type:varchar(50);not null" json:"recipient_name"`                // 받는 분
	RecipientPhone      string          `gorm:"type:varchar(20);not null" json:"recipient_phone"`               // 받는 분 연락처
	Address             DeliveryAddress `gorm:"embedded;embeddedPrefix:address_" json:"address"`                // 배송지
	ProductID           uint            `gorm:"not null;index" json:"product_id"`                               // 상품 ID
	ProductType         string          `gorm:"type:varchar(30);not null" json:"product_type"`                  // 상품 유형 (꽃바구니, 화환 등)
	ProductName         string          `gorm:"type:varchar(100);not null" json:"product_name"`                 // 상품명
	UnitPrice           int64           `gorm:"not null" json:"unit_price"`                                     // 단가
	Quantity            int             `gorm:"not null" json:"quantity"`                                       // 수량
	PriceSource         PriceSource     `gorm:"type:varchar(20);not null" json:"price_source"`                  // 단가 출처
	AdditionalFee       int64           `gorm:"not null;default:0" json:"additional_fee"`                       // 추가 요금
	AdditionalFeeReason string          `gorm:"type:varchar(200)" json:"additional_fee_reason,omitempty"`       // 추가 요금 사유
	ReceiverStoreID     *uint           `gorm:"index" json:"receiver_store_id"`                                 // 수주 화원 (null = 본사 배정)
	ReferrerPhone       *string         `gorm:"type:varchar(20);index" json:"referrer_phone,omitempty"`         // 추천인 연락처
	PointsRequested     int64           `gorm:"not null;default:0" json:"points_requested"`                     // 사용 요청 포인트
	Subtotal            int64           `gorm:"not null" json:"subtotal"`                                       // 상품 금액
	DiscountAmount      int64           `gorm:"not null;default:0" json:"discount_amount"`                      // 할인 금액
	TotalAmount         int64           `gorm:"not null" json:"total_amount"`                                   // 결제 금액
	Status              OrderStatus     `gorm:"type:varchar(20);default:'pending_payment';index" json:"status"` // 주문 상태
	PaymentProvider     string          `gorm:"type:varchar(30)" json:"payment_provider,omitempty"`             // 결제 제공자
	PaymentTID          *string         `gorm:"type:varchar(64);uniqueIndex" json:"payment_tid,omitempty"`      // 결제 거래 ID
	ConfirmedAt         *time.Time      `json:"confirmed_at,omitempty"`                                         // 확정 시각
	DispatchDeadline    *time.Time      `gorm:"index" json:"dispatch_deadline,omitempty"`                       // 본사 배정 기한
	DispatchOverdue     bool            `gorm:"default:false" json:"dispatch_overdue"`                          // 배정 기한 초과 여부
	BuyerReward         int64           `gorm:"not null;default:0" json:"buyer_reward"`                         // 구매자 적립액
	ReferrerReward      int64           `gorm:"not null;default:0" json:"referrer_reward"`                      // 추천인 적립액
	CreatedAt           time.Time       `json:"created_at"`                                                     // 생성 시각
	UpdatedAt           time.Time       `json:"updated_at"`                                                     // 수정 시각
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`                                                 // 삭제 시각(소프트 삭제)

	ReceiverStore *Store `gorm:"foreignKey:ReceiverStoreID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"receiver_store,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// IsCentralDispatch reports whether fulfilment is deferred to the operations team.
func (o *Order) IsCentralDispatch() bool {
	return o.ReceiverStoreID == nil
}
