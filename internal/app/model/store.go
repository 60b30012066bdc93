package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ikkim/hwawon-backend/pkg/util"
	"gorm.io/gorm"
)

// Store 수주 화원
type Store struct {
	ID           uint   `gorm:"primarykey" json:"id"`                            // 고유 화원 ID
	BusinessName string `gorm:"type:varchar(100);not null" json:"business_name"` // 상호명
	Slug         string `gorm:"uniqueIndex" json:"slug"`                         // URL용 고유 식별자
	OwnerName    string `gorm:"type:varchar(50)" json:"owner_name"`              // 대표자명
	PhoneNumber  string `gorm:"type:varchar(30)" json:"phone_number"`            // 연락처
	Sido         string `gorm:"type:varchar(30);index;not null" json:"sido"`     // 소재지 시·도
	Sigungu      string `gorm:"type:varchar(50);index;not null" json:"sigungu"`  // 소재지 시·군·구
	Address      string `gorm:"type:text" json:"address"`                        // 상세 주소
	IsOpen       bool   `gorm:"default:true;index" json:"is_open"`               // 영업 여부

	DeliveryAreas []StoreDeliveryArea `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"delivery_areas,omitempty"` // 배송 가능 지역
	AreaPricing   []StoreAreaPricing  `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"area_pricing,omitempty"`   // 지역 단가

	CreatedAt time.Time      `json:"created_at"`     // 생성 시각
	UpdatedAt time.Time      `json:"updated_at"`     // 수정 시각
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 삭제 시각(소프트 삭제)
}

func (Store) TableName() string {
	return "stores"
}

// StoreDeliveryArea 화원이 배송하는 지역
// Sigungu 가 비어 있거나 "전체"이면 시·도 전역을 뜻한다.
type StoreDeliveryArea struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	StoreID        uint   `gorm:"not null;index" json:"store_id"`
	Sido           string `gorm:"type:varchar(30);not null;index" json:"sido"`
	Sigungu        string `gorm:"type:varchar(50);index" json:"sigungu"`
	MinOrderAmount int64  `gorm:"not null;default:0" json:"min_order_amount"` // 최소 주문 금액
}

func (StoreDeliveryArea) TableName() string {
	return "store_delivery_areas"
}

// BeforeSave 시·도는 정식 명칭으로 저장한다 (시·도 단위 조회 키)
func (a *StoreDeliveryArea) BeforeSave(tx *gorm.DB) error {
	a.Sido = util.NormalizeSido(a.Sido)
	a.Sigungu = strings.TrimSpace(a.Sigungu)
	return nil
}

// StoreAreaPricing 화원 지정 시 발주 단가를 대체하는 상품 유형별 단가
type StoreAreaPricing struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	StoreID      uint   `gorm:"not null;index:idx_store_product_type,unique" json:"store_id"`
	ProductType  string `gorm:"type:varchar(30);not null;index:idx_store_product_type,unique" json:"product_type"`
	PriceBasic   int64  `gorm:"not null" json:"price_basic"`
	PricePremium *int64 `json:"price_premium,omitempty"`
}

func (StoreAreaPricing) TableName() string {
	return "store_area_pricings"
}

// PricingFor returns the override for the product type, if any.
func (s *Store) PricingFor(productType string) (*StoreAreaPricing, bool) {
	for i := range s.AreaPricing {
		if s.AreaPricing[i].ProductType == productType {
			return &s.AreaPricing[i], true
		}
	}
	return nil, false
}

// generateSlug는 화원 상호와 지역 정보로 URL용 slug를 생성합니다
func generateSlug(sigungu, name string) string {
	slug := fmt.Sprintf("%s-%s", sigungu, name)

	reg := regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	return strings.ToLower(strings.Trim(slug, "-"))
}

// BeforeCreate는 화원 생성 전에 중복되지 않는 slug를 채웁니다
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.Slug != "" {
		return nil
	}

	baseSlug := generateSlug(s.Sigungu, s.BusinessName)
	slug := baseSlug
	for counter := 2; ; counter++ {
		var count int64
		if err := tx.Model(&Store{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			break
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}

	s.Slug = slug
	return nil
}
