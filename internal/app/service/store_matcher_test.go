package service

import (
	"testing"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMatcher_FindStores_NormalizesNames(t *testing.T) {
	env := setupServiceTest(t)
	env.seedStore(t, "역삼꽃집", "서울특별시", "강남구", 0)
	env.seedStore(t, "분당플라워", "경기도", "성남시 분당구", 0)

	matcher := env.matcher()

	stores, err := matcher.FindStores(AreaQuery{Sido: "서울", Sigungu: "강남구"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "역삼꽃집", stores[0].BusinessName)

	stores, err = matcher.FindStores(AreaQuery{Sido: "경기", Sigungu: "성남시분당구"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "분당플라워", stores[0].BusinessName)
}

func TestStoreMatcher_FindStores_WholeSidoArea(t *testing.T) {
	env := setupServiceTest(t)
	env.seedStore(t, "제주꽃방", "제주특별자치도", "전체", 0)

	stores, err := env.matcher().FindStores(AreaQuery{Sido: "제주도", Sigungu: "서귀포시"})
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}

func TestStoreMatcher_FindStores_RanksPricedStoresFirst(t *testing.T) {
	env := setupServiceTest(t)
	env.seedStore(t, "가나다꽃집", "서울특별시", "강남구", 0)
	env.seedStore(t, "하늘꽃집", "서울특별시", "강남구", 0,
		model.StoreAreaPricing{ProductType: model.ProductTypeBasket, PriceBasic: 55000})
	env.seedStore(t, "라일락", "서울특별시", "전체", 0)

	stores, err := env.matcher().FindStores(AreaQuery{Sido: "서울시", Sigungu: "강남구"})
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, "하늘꽃집", stores[0].BusinessName)
	assert.Equal(t, "가나다꽃집", stores[1].BusinessName)
	assert.Equal(t, "라일락", stores[2].BusinessName)
}

func TestStoreMatcher_FindStores_ExcludesClosed(t *testing.T) {
	env := setupServiceTest(t)
	store := env.seedStore(t, "휴업꽃집", "서울특별시", "강남구", 0)
	store.IsOpen = false
	require.NoError(t, env.storeRepo.Update(store))

	stores, err := env.matcher().FindStores(AreaQuery{Sido: "서울", Sigungu: "강남구"})
	assert.ErrorIs(t, err, ErrNoEligibleStore)
	assert.Empty(t, stores)
}

func TestStoreMatcher_ResolvePrice(t *testing.T) {
	matcher := NewStoreMatcher(nil, 30*time.Minute)
	store := &model.Store{
		AreaPricing: []model.StoreAreaPricing{
			{ProductType: model.ProductTypeWreath, PriceBasic: 90000},
		},
	}

	quote := matcher.ResolvePrice(store, model.ProductTypeWreath, 100000)
	assert.Equal(t, int64(90000), quote.Price)
	assert.Equal(t, model.PriceSourceAreaPricing, quote.Source)
	assert.Empty(t, quote.Warning)

	quote = matcher.ResolvePrice(store, model.ProductTypeBasket, 60000)
	assert.Equal(t, int64(60000), quote.Price)
	assert.Equal(t, model.PriceSourceBasePrice, quote.Source)
	assert.Equal(t, WarningAreaPriceMissing, quote.Warning)
}

func TestStoreMatcher_Match_AlwaysOffersCentralDispatch(t *testing.T) {
	env := setupServiceTest(t)

	result, err := env.matcher().Match(MatchQuery{
		Area:        AreaQuery{Sido: "강원도", Sigungu: "춘천시"},
		ProductType: model.ProductTypeBasket,
		BasePrice:   60000,
		Quantity:    2,
	}, env.now)
	require.NoError(t, err)

	assert.True(t, result.NoEligibleStore)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, "강원특별자치도", result.Sido)
	assert.Nil(t, result.CentralDispatch.ReceiverStoreID)
	assert.Equal(t, 30, result.CentralDispatch.SLAMinutes)
	assert.True(t, result.CentralDispatch.Deadline.Equal(env.now.Add(30*time.Minute)))
	assert.Equal(t, int64(120000), result.CentralDispatch.Subtotal)
}

func TestStoreMatcher_Match_MinimumOrder(t *testing.T) {
	env := setupServiceTest(t)
	env.seedStore(t, "역삼꽃집", "서울특별시", "강남구", 100000,
		model.StoreAreaPricing{ProductType: model.ProductTypeBasket, PriceBasic: 55000})

	result, err := env.matcher().Match(MatchQuery{
		Area:        AreaQuery{Sido: "서울", Sigungu: "강남구"},
		ProductType: model.ProductTypeBasket,
		BasePrice:   60000,
		Quantity:    1,
	}, env.now)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	candidate := result.Candidates[0]
	assert.Equal(t, int64(55000), candidate.Quote.Price)
	assert.Equal(t, int64(100000), candidate.MinOrderAmount)
	assert.False(t, candidate.MeetsMinimum)
	assert.False(t, result.NoEligibleStore)
}

func TestStoreMatcher_CheckEligible(t *testing.T) {
	env := setupServiceTest(t)
	store := env.seedStore(t, "역삼꽃집", "서울특별시", "강남구", 0)
	matcher := env.matcher()

	_, area, err := matcher.CheckEligible(store.ID, AreaQuery{Sido: "서울", Sigungu: "강남구"})
	require.NoError(t, err)
	assert.Equal(t, "강남구", area.Sigungu)

	_, _, err = matcher.CheckEligible(store.ID, AreaQuery{Sido: "서울", Sigungu: "마포구"})
	assert.ErrorIs(t, err, ErrStoreNotEligible)

	_, _, err = matcher.CheckEligible(9999, AreaQuery{Sido: "서울", Sigungu: "강남구"})
	assert.ErrorIs(t, err, ErrStoreNotFound)
}
