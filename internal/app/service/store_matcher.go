package service

import (
	"errors"
	"sort"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrNoEligibleStore 는 실패가 아니라 신호다. 본사 배정은 항상 선택 가능하다.
	ErrNoEligibleStore      = errors.New("no eligible store for address")
	ErrStoreNotFound        = errors.New("store not found")
	ErrStoreClosed          = errors.New("store is closed")
	ErrStoreNotEligible     = errors.New("store does not deliver to address")
	ErrMinOrderAmountNotMet = errors.New("order does not meet store minimum amount")
)

// WarningAreaPriceMissing 화원 지역 단가가 없어 발주 단가를 사용함
const WarningAreaPriceMissing = "AREA_PRICE_MISSING"

// PriceQuote 화원별 단가 조회 결과
type PriceQuote struct {
	Price   int64             `json:"price"`
	Source  model.PriceSource `json:"source"`
	Warning string            `json:"warning,omitempty"`
}

// AreaQuery 주소 검색 결과 중 매칭에 쓰는 부분
type AreaQuery struct {
	Sido    string
	Sigungu string
}

// MatchQuery 화원 매칭 요청
type MatchQuery struct {
	Area        AreaQuery
	ProductType string
	BasePrice   int64
	Quantity    int
}

// StoreCandidate 배송 가능한 화원 후보
type StoreCandidate struct {
	StoreID        uint       `json:"storeId"`
	BusinessName   string     `json:"businessName"`
	PhoneNumber    string     `json:"phoneNumber"`
	Quote          PriceQuote `json:"quote"`
	Subtotal       int64      `json:"subtotal"`
	MinOrderAmount int64      `json:"minOrderAmount"`
	MeetsMinimum   bool       `json:"meetsMinimum"`
}

// CentralDispatchOption 본사 배정 (화원 미지정)
type CentralDispatchOption struct {
	ReceiverStoreID *uint      `json:"receiverStoreId"`
	SLAMinutes      int        `json:"slaMinutes"`
	Deadline        time.Time  `json:"deadline"`
	Quote           PriceQuote `json:"quote"`
	Subtotal        int64      `json:"subtotal"`
}

// MatchResult 매칭 결과
type MatchResult struct {
	Sido            string                `json:"sido"`
	Sigungu         string                `json:"sigungu"`
	Candidates      []StoreCandidate      `json:"candidates"`
	CentralDispatch CentralDispatchOption `json:"centralDispatch"`
	NoEligibleStore bool                  `json:"noEligibleStore"`
}

type StoreMatcher interface {
	FindStores(area AreaQuery) ([]model.Store, error)
	ResolvePrice(store *model.Store, productType string, basePrice int64) PriceQuote
	Match(query MatchQuery, now time.Time) (*MatchResult, error)
	OpenStore(storeID uint) (*model.Store, error)
	CheckEligible(storeID uint, area AreaQuery) (*model.Store, *model.StoreDeliveryArea, error)
	ListAreas() ([]repository.StoreArea, error)
}

type storeMatcher struct {
	storeRepo   repository.StoreRepository
	dispatchSLA time.Duration
}

func NewStoreMatcher(storeRepo repository.StoreRepository, dispatchSLA time.Duration) StoreMatcher {
	return &storeMatcher{
		storeRepo:   storeRepo,
		dispatchSLA: dispatchSLA,
	}
}

// FindStores returns open stores delivering to the area. Stores with any
// area pricing rank first, then by business name. When nothing matches the
// empty list is returned together with ErrNoEligibleStore.
func (m *storeMatcher) FindStores(area AreaQuery) ([]model.Store, error) {
	sido := util.NormalizeSido(area.Sido)

	stores, err := m.storeRepo.FindOpenBySido(sido)
	if err != nil {
		return nil, err
	}

	matched := make([]model.Store, 0, len(stores))
	for i := range stores {
		if _, ok := deliveryAreaFor(&stores[i], sido, area.Sigungu); ok {
			matched = append(matched, stores[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := len(matched[i].AreaPricing) > 0, len(matched[j].AreaPricing) > 0
		if pi != pj {
			return pi
		}
		return matched[i].BusinessName < matched[j].BusinessName
	})

	logger.Debug("Stores matched for area", map[string]interface{}{
		"sido":    sido,
		"sigungu": util.NormalizeSigungu(area.Sigungu),
		"count":   len(matched),
	})

	if len(matched) == 0 {
		return matched, ErrNoEligibleStore
	}
	return matched, nil
}

// ResolvePrice uses the store's override for the product type, falling back
// to the listed base price with a warning.
func (m *storeMatcher) ResolvePrice(store *model.Store, productType string, basePrice int64) PriceQuote {
	if store != nil {
		if pricing, ok := store.PricingFor(productType); ok {
			return PriceQuote{
				Price:  pricing.PriceBasic,
				Source: model.PriceSourceAreaPricing,
			}
		}
	}
	return PriceQuote{
		Price:   basePrice,
		Source:  model.PriceSourceBasePrice,
		Warning: WarningAreaPriceMissing,
	}
}

// basePriceQuote is the price when no store is chosen; the listed price applies as is.
func basePriceQuote(price int64) PriceQuote {
	return PriceQuote{Price: price, Source: model.PriceSourceBasePrice}
}

func (m *storeMatcher) Match(query MatchQuery, now time.Time) (*MatchResult, error) {
	quantity := query.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	stores, err := m.FindStores(query.Area)
	if err != nil && !errors.Is(err, ErrNoEligibleStore) {
		return nil, err
	}

	sido := util.NormalizeSido(query.Area.Sido)
	result := &MatchResult{
		Sido:            sido,
		Sigungu:         util.NormalizeSigungu(query.Area.Sigungu),
		Candidates:      make([]StoreCandidate, 0, len(stores)),
		NoEligibleStore: len(stores) == 0,
		CentralDispatch: CentralDispatchOption{
			SLAMinutes: int(m.dispatchSLA / time.Minute),
			Deadline:   now.Add(m.dispatchSLA),
			Quote:      basePriceQuote(query.BasePrice),
			Subtotal:   query.BasePrice * int64(quantity),
		},
	}

	for i := range stores {
		store := &stores[i]
		area, _ := deliveryAreaFor(store, sido, query.Area.Sigungu)
		quote := m.ResolvePrice(store, query.ProductType, query.BasePrice)
		subtotal := quote.Price * int64(quantity)

		result.Candidates = append(result.Candidates, StoreCandidate{
			StoreID:        store.ID,
			BusinessName:   store.BusinessName,
			PhoneNumber:    store.PhoneNumber,
			Quote:          quote,
			Subtotal:       subtotal,
			MinOrderAmount: area.MinOrderAmount,
			MeetsMinimum:   subtotal >= area.MinOrderAmount,
		})
	}

	return result, nil
}

// OpenStore loads a store that is currently taking orders.
func (m *storeMatcher) OpenStore(storeID uint) (*model.Store, error) {
	store, err := m.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !store.IsOpen {
		return nil, ErrStoreClosed
	}
	return store, nil
}

// CheckEligible loads a store and verifies it is open and delivers to the area.
func (m *storeMatcher) CheckEligible(storeID uint, area AreaQuery) (*model.Store, *model.StoreDeliveryArea, error) {
	store, err := m.OpenStore(storeID)
	if err != nil {
		return nil, nil, err
	}

	deliveryArea, ok := deliveryAreaFor(store, util.NormalizeSido(area.Sido), area.Sigungu)
	if !ok {
		logger.Warn("Store does not deliver to requested area", map[string]interface{}{
			"store_id": storeID,
			"sido":     area.Sido,
			"sigungu":  area.Sigungu,
		})
		return nil, nil, ErrStoreNotEligible
	}
	return store, &deliveryArea, nil
}

func (m *storeMatcher) ListAreas() ([]repository.StoreArea, error) {
	return m.storeRepo.ListAreas()
}

// deliveryAreaFor finds the store's declared area covering sido/sigungu.
// 시·군·구 단위 지역이 "전체"보다 우선한다.
func deliveryAreaFor(store *model.Store, sido, sigungu string) (model.StoreDeliveryArea, bool) {
	var (
		found    model.StoreDeliveryArea
		matched  bool
		specific bool
	)
	for _, area := range store.DeliveryAreas {
		if util.NormalizeSido(area.Sido) != sido {
			continue
		}
		if !util.SigunguMatches(area.Sigungu, sigungu) {
			continue
		}
		isSpecific := util.NormalizeSigungu(area.Sigungu) != util.AllAreas
		if !matched || (isSpecific && !specific) {
			found, matched, specific = area, true, isSpecific
		}
	}
	return found, matched
}
