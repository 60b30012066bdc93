package model

import (
	"time"

	"gorm.io/gorm"
)

// 대표 상품 유형
const (
	ProductTypeBasket  = "basket"  // 꽃바구니
	ProductTypeWreath  = "wreath"  // 근조/축하 화환
	ProductTypeOrchid  = "orchid"  // 동양란/서양란
	ProductTypeBouquet = "bouquet" // 꽃다발
	ProductTypePlant   = "plant"   // 관엽식물
)

// Product 발주 화원이 등록한 판매 상품
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 상품 ID
	ProductType string         `gorm:"type:varchar(30);not null;index" json:"product_type"` // 상품 유형
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`              // 상품명
	Description string         `gorm:"type:text" json:"description"`                        // 상품 설명
	Price       int64          `gorm:"not null" json:"price"`                               // 발주 단가
	ImageURL    string         `json:"image_url"`                                           // 대표 이미지
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                 // 판매 여부
	CreatedAt   time.Time      `json:"created_at"`                                          // 생성 시각
	UpdatedAt   time.Time      `json:"updated_at"`                                          // 수정 시각
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 삭제 시각(소프트 삭제)
}

func (Product) TableName() string {
	return "products"
}
