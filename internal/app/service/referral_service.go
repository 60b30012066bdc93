package service

import (
	"errors"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

var ErrSelfReferral = errors.New("self referral is not allowed")

type Tier string

const (
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
	TierVIP    Tier = "VIP"
)

// TierInfo 등급 표시 정보
type TierInfo struct {
	Tier            Tier    `json:"tier"`
	Badge           string  `json:"badge"`
	RateBP          int64   `json:"rateBp"`
	Rate            float64 `json:"rate"` // 표시용 (%)
	MinReferrals    int     `json:"minReferrals"`
	ReferralsToNext int     `json:"referralsToNext"`
}

// 이번 달 추천 수 기준, 하한 오름차순
var tierTable = []TierInfo{
	{Tier: TierBronze, Badge: "🥉", RateBP: 300, MinReferrals: 0},
	{Tier: TierSilver, Badge: "🥈", RateBP: 350, MinReferrals: 5},
	{Tier: TierGold, Badge: "🥇", RateBP: 400, MinReferrals: 10},
	{Tier: TierVIP, Badge: "💎", RateBP: 500, MinReferrals: 20},
}

// ComputeTier maps this month's referral count to a tier.
// VIP has no ceiling, so its ReferralsToNext is 0.
func ComputeTier(thisMonth int) TierInfo {
	if thisMonth < 0 {
		thisMonth = 0
	}

	idx := 0
	for i, t := range tierTable {
		if thisMonth >= t.MinReferrals {
			idx = i
		}
	}

	info := tierTable[idx]
	info.Rate = float64(info.RateBP) / 100
	if idx+1 < len(tierTable) {
		info.ReferralsToNext = tierTable[idx+1].MinReferrals - thisMonth
	}
	return info
}

// RewardSplit 구매자/추천인 적립률과 적립액
type RewardSplit struct {
	BuyerRateBP    int64 `json:"buyerRateBp"`
	ReferrerRateBP int64 `json:"referrerRateBp"`
	BuyerReward    int64 `json:"buyerReward"`
	ReferrerReward int64 `json:"referrerReward"`
}

// ComputeRewardSplit derives the buyer and referrer accrual for an order amount.
// The two rates come from independent policy values. The referrer's tier is
// shown to the referrer only and does not change the referrer rate.
func ComputeRewardSplit(policy config.LoyaltyConfig, orderAmount int64, referrerTier Tier, buyerIsMember, hasReferrer bool) RewardSplit {
	var split RewardSplit

	switch {
	case buyerIsMember && hasReferrer:
		split.BuyerRateBP = policy.ReferredBuyerRateBP
	case buyerIsMember:
		split.BuyerRateBP = policy.MemberBuyerRateBP
	default:
		split.BuyerRateBP = policy.GuestBuyerRateBP
	}
	if hasReferrer {
		split.ReferrerRateBP = policy.ReferrerRateBP
	}

	if orderAmount > 0 {
		split.BuyerReward = applyRate(orderAmount, split.BuyerRateBP)
		split.ReferrerReward = applyRate(orderAmount, split.ReferrerRateBP)
	}

	logger.Debug("Reward split computed", map[string]interface{}{
		"order_amount":  orderAmount,
		"referrer_tier": referrerTier,
		"buyer_rate":    split.BuyerRateBP,
		"referrer_rate": split.ReferrerRateBP,
	})
	return split
}

// applyRate returns floor(amount * bp / 10000).
func applyRate(amount, bp int64) int64 {
	if bp <= 0 {
		return 0
	}
	return amount * bp / 10000
}

// ValidateReferral rejects a referrer that is the buyer.
// An empty referrer is valid.
func ValidateReferral(buyerPhone, referrerPhone string) error {
	if referrerPhone == "" {
		return nil
	}

	buyer, err := util.NormalizePhone(buyerPhone)
	if err != nil {
		return err
	}
	referrer, err := util.NormalizePhone(referrerPhone)
	if err != nil {
		return err
	}

	if buyer == referrer {
		return ErrSelfReferral
	}
	return nil
}

// ReferralStats 추천 현황 (주문 기록에서 매번 다시 계산)
type ReferralStats struct {
	TotalReferrals  int64   `json:"totalReferrals"`
	ThisMonth       int64   `json:"thisMonth"`
	LastMonth       int64   `json:"lastMonth"`
	CurrentTier     Tier    `json:"currentTier"`
	Badge           string  `json:"badge"`
	RewardRate      float64 `json:"rewardRate"`
	ReferralsToNext int     `json:"referralsToNext"`
}

// ReferralHistoryItem 추천 주문 내역
type ReferralHistoryItem struct {
	ID           uint              `json:"id"`
	BuyerName    string            `json:"buyerName"`
	OrderDate    time.Time         `json:"orderDate"`
	OrderAmount  int64             `json:"orderAmount"`
	EarnedPoints int64             `json:"earnedPoints"`
	Status       model.OrderStatus `json:"status"`
}

type ReferralService interface {
	GetStats(phone string, now time.Time) (*ReferralStats, error)
	GetHistory(phone string) ([]ReferralHistoryItem, error)
}

type referralService struct {
	orderRepo repository.OrderRepository
	loc       *time.Location
}

func NewReferralService(orderRepo repository.OrderRepository, loc *time.Location) ReferralService {
	return &referralService{
		orderRepo: orderRepo,
		loc:       loc,
	}
}

func (s *referralService) GetStats(phone string, now time.Time) (*ReferralStats, error) {
	referrer, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	thisMonthStart := monthStart(now, s.loc)
	nextMonthStart := thisMonthStart.AddDate(0, 1, 0)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	total, err := s.orderRepo.CountConfirmedReferrals(referrer, nil, nil)
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.orderRepo.CountConfirmedReferrals(referrer, &thisMonthStart, &nextMonthStart)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.orderRepo.CountConfirmedReferrals(referrer, &lastMonthStart, &thisMonthStart)
	if err != nil {
		return nil, err
	}

	tier := ComputeTier(int(thisMonth))
	return &ReferralStats{
		TotalReferrals:  total,
		ThisMonth:       thisMonth,
		LastMonth:       lastMonth,
		CurrentTier:     tier.Tier,
		Badge:           tier.Badge,
		RewardRate:      tier.Rate,
		ReferralsToNext: tier.ReferralsToNext,
	}, nil
}

func (s *referralService) GetHistory(phone string) ([]ReferralHistoryItem, error) {
	referrer, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindByReferrer(referrer)
	if err != nil {
		return nil, err
	}

	items := make([]ReferralHistoryItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, ReferralHistoryItem{
			ID:           o.ID,
			BuyerName:    o.CustomerName,
			OrderDate:    o.CreatedAt.In(s.loc),
			OrderAmount:  o.TotalAmount,
			EarnedPoints: o.ReferrerReward,
			Status:       o.Status,
		})
	}
	return items, nil
}

// monthStart returns the first instant of now's calendar month in loc.
func monthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
