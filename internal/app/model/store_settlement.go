package model

import "time"

// StoreSettlement 수주 화원 정산 내역
// 플랫폼 수수료는 수주 화원 정산에서만 차감되며 구매자 결제 금액에는 포함되지 않는다.
type StoreSettlement struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	StoreID          uint      `gorm:"not null;index" json:"store_id"`
	OrderID          uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	GrossAmount      int64     `gorm:"not null" json:"gross_amount"`       // 화원 몫 주문 금액
	CommissionRateBP int64     `gorm:"not null" json:"commission_rate_bp"` // 수수료율 (basis point)
	CommissionAmount int64     `gorm:"not null" json:"commission_amount"`  // 수수료
	NetAmount        int64     `gorm:"not null" json:"net_amount"`         // 지급 예정액
	CreatedAt        time.Time `json:"created_at"`
}

func (StoreSettlement) TableName() string {
	return "store_settlements"
}
