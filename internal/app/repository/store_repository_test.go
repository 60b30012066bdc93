package repository

import (
	"testing"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository_CreateWithAreas(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewStoreRepository(testDB)
	premium := int64(95000)
	store := &model.Store{
		BusinessName: "강남꽃집",
		Sido:         "서울특별시",
		Sigungu:      "강남구",
		IsOpen:       true,
		DeliveryAreas: []model.StoreDeliveryArea{
			{Sido: "서울특별시", Sigungu: "강남구", MinOrderAmount: 30000},
			{Sido: "서울특별시", Sigungu: "서초구"},
		},
		AreaPricing: []model.StoreAreaPricing{
			{ProductType: model.ProductTypeBasket, PriceBasic: 65000, PricePremium: &premium},
		},
	}
	require.NoError(t, repo.Create(store))
	assert.Equal(t, "강남구-강남꽃집", store.Slug)

	found, err := repo.FindByID(store.ID)
	require.NoError(t, err)
	assert.Len(t, found.DeliveryAreas, 2)
	pricing, ok := found.PricingFor(model.ProductTypeBasket)
	require.True(t, ok)
	assert.Equal(t, int64(65000), pricing.PriceBasic)

	_, ok = found.PricingFor(model.ProductTypeWreath)
	assert.False(t, ok)
}

func TestStoreRepository_SlugCollision(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewStoreRepository(testDB)
	first := &model.Store{BusinessName: "꽃집", Sido: "서울특별시", Sigungu: "마포구", IsOpen: true}
	second := &model.Store{BusinessName: "꽃집", Sido: "서울특별시", Sigungu: "마포구", IsOpen: true}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	assert.Equal(t, "마포구-꽃집", first.Slug)
	assert.Equal(t, "마포구-꽃집-2", second.Slug)
}

func TestStoreRepository_FindOpenBySido(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewStoreRepository(testDB)
	stores := []*model.Store{
		{BusinessName: "나꽃집", Sido: "서울특별시", Sigungu: "강남구", IsOpen: true,
			DeliveryAreas: []model.StoreDeliveryArea{{Sido: "서울특별시", Sigungu: "강남구"}}},
		{BusinessName: "가꽃집", Sido: "경기도", Sigungu: "성남시", IsOpen: true,
			DeliveryAreas: []model.StoreDeliveryArea{{Sido: "서울특별시", Sigungu: "전체"}}},
		{BusinessName: "휴업꽃집", Sido: "서울특별시", Sigungu: "강남구", IsOpen: true,
			DeliveryAreas: []model.StoreDeliveryArea{{Sido: "서울특별시", Sigungu: "강남구"}}},
		{BusinessName: "부산꽃집", Sido: "부산광역시", Sigungu: "해운대구", IsOpen: true,
			DeliveryAreas: []model.StoreDeliveryArea{{Sido: "부산광역시", Sigungu: "해운대구"}}},
	}
	for _, s := range stores {
		require.NoError(t, repo.Create(s))
	}
	// default:true 컬럼은 false 로 생성되지 않으므로 별도 갱신
	stores[2].IsOpen = false
	require.NoError(t, repo.Update(stores[2]))

	found, err := repo.FindOpenBySido("서울특별시")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "가꽃집", found[0].BusinessName)
	assert.Equal(t, "나꽃집", found[1].BusinessName)

	areas, err := repo.ListAreas()
	require.NoError(t, err)
	assert.Len(t, areas, 3)
}
