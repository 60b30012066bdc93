package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	"github.com/ikkim/hwawon-backend/internal/db"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPhone = "01012345678"

type controllerEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	ledgerRepo  repository.LedgerRepository
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	policy      config.LoyaltyConfig

	products    service.ProductService
	matcher     service.StoreMatcher
	orders      service.OrderService
	withdrawals service.WithdrawalService
	members     service.MemberService
	coupons     service.CouponService
	referrals   service.ReferralService
}

func setupControllerTest(t *testing.T) *controllerEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	policy := config.DefaultLoyalty()
	publisher := events.NopPublisher{}

	ledgerRepo := repository.NewLedgerRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	memberRepo := repository.NewMemberRepository(testDB)

	matcher := service.NewStoreMatcher(storeRepo, policy.CentralDispatchSLA)

	env := &controllerEnv{
		db:          testDB,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		policy:      policy,
		products:    service.NewProductService(productRepo),
		matcher:     matcher,
		orders: service.NewOrderService(
			orderRepo,
			productRepo,
			ledgerRepo,
			memberRepo,
			repository.NewSettlementRepository(testDB),
			matcher,
			nil,
			publisher,
			policy,
			testDB,
		),
		withdrawals: service.NewWithdrawalService(repository.NewWithdrawalRepository(testDB), ledgerRepo, publisher, policy, testDB),
		members:     service.NewMemberService(memberRepo, ledgerRepo, publisher, policy, testDB),
		coupons:     service.NewCouponService(ledgerRepo, nil),
		referrals:   service.NewReferralService(orderRepo, policy.Location()),
	}

	gin.SetMode(gin.TestMode)
	env.router = gin.New()
	env.router.Use(middleware.LoggingMiddleware())

	return env
}

func (e *controllerEnv) seedProduct(t *testing.T, price int64) *model.Product {
	product := &model.Product{
		ProductType: model.ProductTypeBasket,
		Name:        "축하 꽃바구니",
		Price:       price,
		IsActive:    true,
	}
	require.NoError(t, e.productRepo.Create(product))
	return product
}

func (e *controllerEnv) seedStore(t *testing.T, name, sido, sigungu string, pricing ...model.StoreAreaPricing) *model.Store {
	store := &model.Store{
		BusinessName: name,
		PhoneNumber:  "02-555-1234",
		Sido:         sido,
		Sigungu:      sigungu,
		IsOpen:       true,
		DeliveryAreas: []model.StoreDeliveryArea{
			{Sido: sido, Sigungu: sigungu},
		},
		AreaPricing: pricing,
	}
	require.NoError(t, e.storeRepo.Create(store))
	return store
}

func (e *controllerEnv) seedPoints(t *testing.T, phone string, amount int64) {
	createdAt := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, e.ledgerRepo.Create(&model.LedgerEntry{
		CustomerPhone: phone,
		Code:          util.GenerateReference("CP", createdAt),
		Amount:        amount,
		OriginType:    model.OriginPurchase,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(e.policy.EntryValidity),
	}))
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func orderRequestBody(productID uint, discount int64) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":   "김구매",
		"customer_phone":  "010-1234-5678",
		"recipient_name":  "이수령",
		"recipient_phone": "010-5555-6666",
		"address": map[string]interface{}{
			"sido":         "서울",
			"sigungu":      "강남구",
			"dong":         "역삼동",
			"road_address": "서울 강남구 테헤란로 123",
			"detail":       "5층",
			"zonecode":     "06236",
		},
		"product_id":      productID,
		"quantity":        1,
		"additional_fee":  10000,
		"discount_amount": discount,
	}
}

