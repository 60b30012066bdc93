package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/db"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	buyerPhone    = "01012345678"
	referrerPhone = "01087654321"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.LedgerEvent
}

func (p *capturePublisher) Publish(_ context.Context, evs ...events.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evs...)
	return nil
}

func (p *capturePublisher) ofType(t events.LedgerEventType) []events.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.LedgerEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	db             *gorm.DB
	ledgerRepo     repository.LedgerRepository
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	storeRepo      repository.StoreRepository
	memberRepo     repository.MemberRepository
	withdrawalRepo repository.WithdrawalRepository
	settlementRepo repository.SettlementRepository
	publisher      *capturePublisher
	policy         config.LoyaltyConfig
	now            time.Time
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return &testEnv{
		db:             testDB,
		ledgerRepo:     repository.NewLedgerRepository(testDB),
		orderRepo:      repository.NewOrderRepository(testDB),
		productRepo:    repository.NewProductRepository(testDB),
		storeRepo:      repository.NewStoreRepository(testDB),
		memberRepo:     repository.NewMemberRepository(testDB),
		withdrawalRepo: repository.NewWithdrawalRepository(testDB),
		settlementRepo: repository.NewSettlementRepository(testDB),
		publisher:      &capturePublisher{},
		policy:         config.DefaultLoyalty(),
		now:            time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) clock() time.Time {
	return e.now
}

// seedEntry writes an entry directly, bypassing the service.
func (e *testEnv) seedEntry(t *testing.T, phone string, amount int64, origin model.OriginType, createdAt time.Time) *model.LedgerEntry {
	entry := &model.LedgerEntry{
		CustomerPhone: phone,
		Code:          util.GenerateReference("CP", createdAt),
		Amount:        amount,
		OriginType:    origin,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(e.policy.EntryValidity),
	}
	require.NoError(t, e.ledgerRepo.Create(entry))
	return entry
}

func (e *testEnv) seedProduct(t *testing.T, productType string, price int64) *model.Product {
	product := &model.Product{
		ProductType: productType,
		Name:        "축하 꽃바구니",
		Price:       price,
		IsActive:    true,
	}
	require.NoError(t, e.productRepo.Create(product))
	return product
}

func (e *testEnv) seedStore(t *testing.T, name, sido, sigungu string, minOrder int64, pricing ...model.StoreAreaPricing) *model.Store {
	store := &model.Store{
		BusinessName: name,
		PhoneNumber:  "02-555-1234",
		Sido:         sido,
		Sigungu:      sigungu,
		IsOpen:       true,
		DeliveryAreas: []model.StoreDeliveryArea{
			{Sido: sido, Sigungu: sigungu, MinOrderAmount: minOrder},
		},
		AreaPricing: pricing,
	}
	require.NoError(t, e.storeRepo.Create(store))
	return store
}

func (e *testEnv) ledgerService() *ledgerService {
	svc := NewLedgerService(e.ledgerRepo, e.db, e.publisher, e.policy.EntryValidity).(*ledgerService)
	svc.now = e.clock
	return svc
}

func (e *testEnv) matcher() StoreMatcher {
	return NewStoreMatcher(e.storeRepo, e.policy.CentralDispatchSLA)
}

func (e *testEnv) orderService() *orderService {
	svc := NewOrderService(
		e.orderRepo,
		e.productRepo,
		e.ledgerRepo,
		e.memberRepo,
		e.settlementRepo,
		e.matcher(),
		nil,
		e.publisher,
		e.policy,
		e.db,
	).(*orderService)
	svc.now = e.clock
	return svc
}

func (e *testEnv) withdrawalService() WithdrawalService {
	return NewWithdrawalService(e.withdrawalRepo, e.ledgerRepo, e.publisher, e.policy, e.db)
}

func seoulAddress() model.DeliveryAddress {
	return model.DeliveryAddress{
		Sido:       "서울",
		Sigungu:    "강남구",
		Dong:       "역삼동",
		Detail:     "테헤란로 123, 5층",
		PostalCode: "06236",
	}
}
