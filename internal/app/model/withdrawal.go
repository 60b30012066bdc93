package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending WithdrawalStatus = "pending" // 접수 (정산은 별도 운영 절차)
)

// BankInfo 출금 계좌 정보
type BankInfo struct {
	BankName      string `gorm:"type:varchar(30);not null" json:"bank_name"`
	AccountNumber string `gorm:"type:varchar(40);not null" json:"account_number"`
	AccountHolder string `gorm:"type:varchar(50);not null" json:"account_holder"`
}

// Withdrawal 포인트 출금 요청
type Withdrawal struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	WithdrawalNumber string           `gorm:"type:varchar(40);not null;uniqueIndex" json:"withdrawal_number"`
	CustomerPhone    string           `gorm:"type:varchar(20);not null;index" json:"customer_phone"`
	Amount           int64            `gorm:"not null" json:"amount"`
	Bank             BankInfo         `gorm:"embedded;embeddedPrefix:bank_" json:"bank_info"`
	Status           WithdrawalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
