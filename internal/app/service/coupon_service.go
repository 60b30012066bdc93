package service

import (
	"context"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/redis"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

// Breakdown 사용 가능 금액의 적립 사유별 합계
type Breakdown struct {
	Purchase int64 `json:"purchase"`
	Referral int64 `json:"referral"`
	Welcome  int64 `json:"welcome"`
}

// Balance 고객 포인트 잔액 요약
type Balance struct {
	Total     int64     `json:"total"`     // 누적 적립액
	Available int64     `json:"available"` // 미사용·미만료 합계
	Breakdown Breakdown `json:"breakdown"`
	Count     int       `json:"count"` // 사용 가능 내역 수
}

// AggregateBalance summarises a ledger snapshot at now.
// It has no side effects; an empty snapshot yields a zero balance.
func AggregateBalance(entries []model.LedgerEntry, now time.Time) Balance {
	var b Balance
	for i := range entries {
		e := &entries[i]
		// 분할로 생긴 잔여분은 원 적립액에 이미 포함되어 있다
		if e.SplitFromID == nil {
			b.Total += e.Amount
		}
		if !e.IsAvailable(now) {
			continue
		}

		b.Available += e.Amount
		b.Count++
		switch e.OriginType {
		case model.OriginPurchase:
			b.Breakdown.Purchase += e.Amount
		case model.OriginReferral:
			b.Breakdown.Referral += e.Amount
		case model.OriginWelcome:
			b.Breakdown.Welcome += e.Amount
		}
	}
	return b
}

// AvailableAmount sums entries already filtered to the available set.
func AvailableAmount(entries []model.LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

type CouponService interface {
	GetBalance(ctx context.Context, phone string, now time.Time) (*Balance, error)
	ListAvailable(phone string, now time.Time) ([]model.LedgerEntry, error)
}

type couponService struct {
	ledgerRepo repository.LedgerRepository
	cache      *redis.BalanceCache
}

// NewCouponService creates the read side of the ledger. cache may be nil.
func NewCouponService(ledgerRepo repository.LedgerRepository, cache *redis.BalanceCache) CouponService {
	return &couponService{
		ledgerRepo: ledgerRepo,
		cache:      cache,
	}
}

// GetBalance is for display; it may be served from the short-lived cache.
func (s *couponService) GetBalance(ctx context.Context, phone string, now time.Time) (*Balance, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached Balance
		if hit, err := s.cache.Get(ctx, normalized, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	entries, err := s.ledgerRepo.ListByCustomer(normalized)
	if err != nil {
		return nil, err
	}

	balance := AggregateBalance(entries, now)

	if s.cache != nil {
		if err := s.cache.Set(ctx, normalized, balance); err != nil {
			logger.Warn("Failed to cache balance", map[string]interface{}{
				"customer_phone": util.MaskPhone(normalized),
				"error":          err.Error(),
			})
		}
	}
	return &balance, nil
}

func (s *couponService) ListAvailable(phone string, now time.Time) ([]model.LedgerEntry, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListAvailable(normalized, now)
}

// balanceCacheInvalidator drops cached balances of customers touched by ledger events.
type balanceCacheInvalidator struct {
	cache *redis.BalanceCache
}

func NewBalanceCacheInvalidator(cache *redis.BalanceCache) events.Publisher {
	if cache == nil {
		return events.NopPublisher{}
	}
	return &balanceCacheInvalidator{cache: cache}
}

func (p *balanceCacheInvalidator) Publish(ctx context.Context, evs ...events.LedgerEvent) error {
	seen := make(map[string]struct{}, len(evs))
	for _, ev := range evs {
		if _, ok := seen[ev.CustomerPhone]; ok {
			continue
		}
		seen[ev.CustomerPhone] = struct{}{}
		if err := p.cache.Invalidate(ctx, ev.CustomerPhone); err != nil {
			return err
		}
	}
	return nil
}
