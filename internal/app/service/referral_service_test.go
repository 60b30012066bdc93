package service

import (
	"testing"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTier_Table(t *testing.T) {
	tests := []struct {
		count  int
		tier   Tier
		rate   float64
		toNext int
	}{
		{0, TierBronze, 3, 5},
		{4, TierBronze, 3, 1},
		{5, TierSilver, 3.5, 5},
		{9, TierSilver, 3.5, 1},
		{10, TierGold, 4, 10},
		{19, TierGold, 4, 1},
		{20, TierVIP, 5, 0},
		{50, TierVIP, 5, 0},
	}

	for _, tt := range tests {
		info := ComputeTier(tt.count)
		assert.Equal(t, tt.tier, info.Tier, "count=%d", tt.count)
		assert.Equal(t, tt.rate, info.Rate, "count=%d", tt.count)
		assert.Equal(t, tt.toNext, info.ReferralsToNext, "count=%d", tt.count)
	}
}

func TestComputeTier_Badges(t *testing.T) {
	assert.Equal(t, "🥉", ComputeTier(0).Badge)
	assert.Equal(t, "🥈", ComputeTier(5).Badge)
	assert.Equal(t, "🥇", ComputeTier(10).Badge)
	assert.Equal(t, "💎", ComputeTier(25).Badge)
}

func TestComputeRewardSplit(t *testing.T) {
	policy := config.DefaultLoyalty()

	guest := ComputeRewardSplit(policy, 58000, TierBronze, false, false)
	assert.Equal(t, int64(300), guest.BuyerRateBP)
	assert.Equal(t, int64(1740), guest.BuyerReward)
	assert.Zero(t, guest.ReferrerReward)

	member := ComputeRewardSplit(policy, 58000, TierBronze, true, false)
	assert.Equal(t, int64(300), member.BuyerRateBP)

	referred := ComputeRewardSplit(policy, 58000, TierGold, true, true)
	assert.Equal(t, int64(500), referred.BuyerRateBP)
	assert.Equal(t, int64(2900), referred.BuyerReward)
	assert.Equal(t, int64(300), referred.ReferrerRateBP)
	assert.Equal(t, int64(1740), referred.ReferrerReward)

	// 추천인 등급은 적립률에 영향을 주지 않는다
	vip := ComputeRewardSplit(policy, 58000, TierVIP, true, true)
	assert.Equal(t, referred, vip)

	floor := ComputeRewardSplit(policy, 999, TierBronze, false, false)
	assert.Equal(t, int64(29), floor.BuyerReward)
}

func TestComputeRewardSplit_ConfigurableRates(t *testing.T) {
	policy := config.DefaultLoyalty()
	policy.GuestBuyerRateBP = 0
	policy.ReferrerRateBP = 1000

	split := ComputeRewardSplit(policy, 10000, TierBronze, false, true)
	assert.Zero(t, split.BuyerReward)
	assert.Equal(t, int64(1000), split.ReferrerReward)
}

func TestValidateReferral(t *testing.T) {
	assert.NoError(t, ValidateReferral(buyerPhone, ""))
	assert.NoError(t, ValidateReferral(buyerPhone, referrerPhone))
	assert.ErrorIs(t, ValidateReferral(buyerPhone, buyerPhone), ErrSelfReferral)
	assert.ErrorIs(t, ValidateReferral("010-1234-5678", "+82 10 1234 5678"), ErrSelfReferral)
}

func TestReferralService_StatsAndHistory(t *testing.T) {
	env := setupServiceTest(t)
	loc := env.policy.Location()
	svc := NewReferralService(env.orderRepo, loc)

	// now = 2026-03-15 12:00 KST
	thisMonth := time.Date(2026, 3, 1, 0, 30, 0, 0, loc)
	lastMonth := time.Date(2026, 2, 28, 23, 30, 0, 0, loc)
	older := time.Date(2025, 12, 24, 10, 0, 0, 0, loc)

	referrer := referrerPhone
	confirmed := []time.Time{thisMonth, thisMonth.Add(time.Hour), lastMonth, older}
	for i, at := range confirmed {
		at := at
		order := newReferralOrder(i, referrer)
		order.Status = model.OrderStatusConfirmed
		order.ConfirmedAt = &at
		order.ReferrerReward = 150
		require.NoError(t, env.orderRepo.Create(order))
	}

	pending := newReferralOrder(10, referrer)
	require.NoError(t, env.orderRepo.Create(pending))

	cancelled := newReferralOrder(11, referrer)
	cancelled.Status = model.OrderStatusCancelled
	require.NoError(t, env.orderRepo.Create(cancelled))

	stats, err := svc.GetStats("010-8765-4321", env.now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalReferrals)
	assert.Equal(t, int64(2), stats.ThisMonth)
	assert.Equal(t, int64(1), stats.LastMonth)
	assert.Equal(t, TierBronze, stats.CurrentTier)
	assert.Equal(t, 3, stats.ReferralsToNext)

	history, err := svc.GetHistory(referrer)
	require.NoError(t, err)
	assert.Len(t, history, 5)
	for _, item := range history {
		assert.NotEqual(t, model.OrderStatusCancelled, item.Status)
	}
}

func TestReferralService_NoReferrals(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewReferralService(env.orderRepo, env.policy.Location())

	stats, err := svc.GetStats(buyerPhone, env.now)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReferrals)
	assert.Equal(t, TierBronze, stats.CurrentTier)

	history, err := svc.GetHistory(buyerPhone)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func newReferralOrder(i int, referrer string) *model.Order {
	ref := referrer
	return &model.Order{
		OrderNumber:    "HW-REF-" + string(rune('A'+i)),
		CustomerName:   "김구매",
		CustomerPhone:  buyerPhone,
		RecipientName:  "이수령",
		RecipientPhone: "01055556666",
		Address:        seoulAddress(),
		ProductID:      1,
		ProductType:    model.ProductTypeBasket,
		ProductName:    "축하 꽃바구니",
		UnitPrice:      50000,
		Quantity:       1,
		PriceSource:    model.PriceSourceBasePrice,
		ReferrerPhone:  &ref,
		Subtotal:       50000,
		TotalAmount:    50000,
		Status:         model.OrderStatusPendingPayment,
	}
}
