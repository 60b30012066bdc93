package model

import "time"

// Member 회원 (가입 축하 포인트 지급 대상, 구매 적립률 판단 기준)
type Member struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Phone     string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}
