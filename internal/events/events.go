package events

import (
	"context"
	"time"

	"github.com/ikkim/hwawon-backend/pkg/logger"
)

type LedgerEventType string

const (
	LedgerGranted  LedgerEventType = "ledger.granted"  // 적립
	LedgerConsumed LedgerEventType = "ledger.consumed" // 사용 (주문 할인, 출금)
	LedgerExpired  LedgerEventType = "ledger.expired"  // 만료
)

// LedgerEvent 원장 변경 알림
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	CustomerPhone string          `json:"customer_phone"`
	EntryID       uint            `json:"entry_id"`
	Code          string          `json:"code"`
	Amount        int64           `json:"amount"`
	OriginType    string          `json:"origin_type"`
	Reference     string          `json:"reference,omitempty"` // 주문번호 또는 출금번호
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher 원장 이벤트 발행 인터페이스
// 커밋 이후에 호출되며 실패는 원장 상태에 영향을 주지 않는다.
type Publisher interface {
	Publish(ctx context.Context, events ...LedgerEvent) error
}

// NopPublisher 아무것도 하지 않는 발행자
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...LedgerEvent) error { return nil }

// MultiPublisher 여러 발행자에 순서대로 전달
type MultiPublisher []Publisher

// Publish forwards to every publisher and returns the first error seen.
func (m MultiPublisher) Publish(ctx context.Context, events ...LedgerEvent) error {
	var firstErr error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events...); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishAfterCommit publishes and only logs failures.
func PublishAfterCommit(ctx context.Context, p Publisher, events ...LedgerEvent) {
	if p == nil || len(events) == 0 {
		return
	}
	if err := p.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish ledger events", map[string]interface{}{
			"count": len(events),
			"type":  events[0].Type,
			"error": err.Error(),
		})
	}
}
