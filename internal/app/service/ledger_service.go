package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")
	ErrLedgerAlreadyUsed   = errors.New("ledger entry already used")
	ErrLedgerExpired       = errors.New("ledger entry expired")
	ErrInvalidGrant        = errors.New("invalid ledger grant")

	// 내부용: 사용 가능 잔액이 요청액보다 적음. 호출 측에서 도메인 에러로 변환한다.
	errLedgerShortfall = errors.New("ledger balance shortfall")
)

const (
	ledgerCodePrefix  = "CP"
	maxCodeAttempts   = 5
	ledgerGrantSavept = "ledger_grant"
)

// GrantInput 적립 요청
type GrantInput struct {
	CustomerPhone string
	Amount        int64
	OriginType    model.OriginType
	SourceOrderID *uint
}

type LedgerService interface {
	Grant(ctx context.Context, input GrantInput) (*model.LedgerEntry, error)
	Consume(ctx context.Context, entryID uint, reference string) error
	ListByCustomer(phone string) ([]model.LedgerEntry, error)
	SweepExpired(ctx context.Context, from, to time.Time) (int, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	db         *gorm.DB
	publisher  events.Publisher
	validity   time.Duration
	now        func() time.Time
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	db *gorm.DB,
	publisher events.Publisher,
	validity time.Duration,
) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		db:         db,
		publisher:  publisher,
		validity:   validity,
		now:        time.Now,
	}
}

func (s *ledgerService) Grant(ctx context.Context, input GrantInput) (*model.LedgerEntry, error) {
	phone, err := util.NormalizePhone(input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	input.CustomerPhone = phone

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	lt := newLedgerTx(tx, s.ledgerRepo, s.validity)
	entry, err := lt.grant(input, s.now())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit ledger grant", err, map[string]interface{}{
			"customer_phone": phone,
		})
		return nil, err
	}

	events.PublishAfterCommit(ctx, s.publisher, lt.events...)
	return entry, nil
}

// Consume marks a single entry used. Exactly one concurrent caller succeeds.
func (s *ledgerService) Consume(ctx context.Context, entryID uint, reference string) error {
	now := s.now()

	ok, err := s.ledgerRepo.MarkConsumed(entryID, reference, now)
	if err != nil {
		return err
	}

	if !ok {
		entry, err := s.ledgerRepo.FindByID(entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLedgerEntryNotFound
			}
			return err
		}
		return consumeFailure(entry, now)
	}

	entry, err := s.ledgerRepo.FindByID(entryID)
	if err != nil {
		return err
	}

	logger.Info("Ledger entry consumed", map[string]interface{}{
		"entry_id":    entryID,
		"consumed_by": reference,
	})

	events.PublishAfterCommit(ctx, s.publisher, ledgerEvent(events.LedgerConsumed, entry, reference, now))
	return nil
}

func (s *ledgerService) ListByCustomer(phone string) ([]model.LedgerEntry, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByCustomer(normalized)
}

// SweepExpired announces entries whose expiry fell in (from, to]. Rows are not
// modified; an expired entry stays in the ledger for audit.
func (s *ledgerService) SweepExpired(ctx context.Context, from, to time.Time) (int, error) {
	entries, err := s.ledgerRepo.ListExpiredBetween(from, to)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	evs := make([]events.LedgerEvent, 0, len(entries))
	for i := range entries {
		evs = append(evs, ledgerEvent(events.LedgerExpired, &entries[i], "", entries[i].ExpiresAt))
	}

	logger.Info("Ledger entries expired", map[string]interface{}{
		"count": len(entries),
		"from":  from,
		"to":    to,
	})

	events.PublishAfterCommit(ctx, s.publisher, evs...)
	return len(entries), nil
}

// consumeFailure explains why a conditional consume affected no row.
func consumeFailure(entry *model.LedgerEntry, now time.Time) error {
	if entry.IsUsed() {
		return ErrLedgerAlreadyUsed
	}
	if !entry.ExpiresAt.After(now) {
		return ErrLedgerExpired
	}
	// 조건부 UPDATE 와 재조회 사이에 상태가 바뀐 경우
	return ErrLedgerAlreadyUsed
}

// ledgerTx 는 하나의 DB 트랜잭션 안에서 원장 적립/사용을 수행하고
// 커밋 후 발행할 이벤트를 모아 둔다.
type ledgerTx struct {
	tx       *gorm.DB
	ledger   repository.LedgerRepository
	validity time.Duration
	events   []events.LedgerEvent
}

func newLedgerTx(tx *gorm.DB, ledgerRepo repository.LedgerRepository, validity time.Duration) *ledgerTx {
	return &ledgerTx{
		tx:       tx,
		ledger:   ledgerRepo.WithTx(tx),
		validity: validity,
	}
}

func (l *ledgerTx) grant(input GrantInput, now time.Time) (*model.LedgerEntry, error) {
	if input.Amount <= 0 || !input.OriginType.Valid() {
		return nil, ErrInvalidGrant
	}

	entry := &model.LedgerEntry{
		CustomerPhone: input.CustomerPhone,
		Amount:        input.Amount,
		OriginType:    input.OriginType,
		SourceOrderID: input.SourceOrderID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(l.validity),
	}
	if err := l.insert(entry, now); err != nil {
		return nil, err
	}

	logger.Info("Ledger entry granted", map[string]interface{}{
		"entry_id":       entry.ID,
		"customer_phone": util.MaskPhone(entry.CustomerPhone),
		"amount":         entry.Amount,
		"origin_type":    entry.OriginType,
	})

	l.events = append(l.events, ledgerEvent(events.LedgerGranted, entry, "", now))
	return entry, nil
}

// insert assigns a fresh code, retrying on the rare collision.
// 트랜잭션이 중단되지 않도록 savepoint 로 되돌린 뒤 재시도한다.
func (l *ledgerTx) insert(entry *model.LedgerEntry, now time.Time) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		entry.ID = 0
		entry.Code = util.GenerateReference(ledgerCodePrefix, now)

		if err := l.tx.SavePoint(ledgerGrantSavept).Error; err != nil {
			return err
		}

		err := l.ledger.Create(entry)
		if err == nil {
			return nil
		}
		if !repository.IsDuplicateKey(err) {
			return err
		}

		if rbErr := l.tx.RollbackTo(ledgerGrantSavept).Error; rbErr != nil {
			return rbErr
		}
		logger.Warn("Ledger code collision, retrying", map[string]interface{}{
			"attempt": attempt,
		})
	}
	return fmt.Errorf("failed to generate unique ledger code after %d attempts", maxCodeAttempts)
}

// spend consumes available entries oldest-expiring first until amount is covered.
// An entry larger than what is still needed is consumed whole and the rest is
// re-issued as a remainder entry with the same origin and expiry.
func (l *ledgerTx) spend(phone string, amount int64, reference string, now time.Time) error {
	if amount <= 0 {
		return nil
	}

	available, err := l.ledger.ListAvailable(phone, now)
	if err != nil {
		return err
	}

	var total int64
	for _, e := range available {
		total += e.Amount
	}
	if total < amount {
		logger.Warn("Ledger balance shortfall", map[string]interface{}{
			"customer_phone": util.MaskPhone(phone),
			"requested":      amount,
			"available":      total,
		})
		return errLedgerShortfall
	}

	remaining := amount
	for i := range available {
		if remaining <= 0 {
			break
		}
		entry := available[i]

		ok, err := l.ledger.MarkConsumed(entry.ID, reference, now)
		if err != nil {
			return err
		}
		if !ok {
			// 다른 요청이 먼저 사용함
			return ErrLedgerAlreadyUsed
		}
		l.events = append(l.events, ledgerEvent(events.LedgerConsumed, &entry, reference, now))

		if entry.Amount > remaining {
			if err := l.splitRemainder(&entry, entry.Amount-remaining, reference, now); err != nil {
				return err
			}
			remaining = 0
			break
		}
		remaining -= entry.Amount
	}

	return nil
}

func (l *ledgerTx) splitRemainder(parent *model.LedgerEntry, amount int64, reference string, now time.Time) error {
	parentID := parent.ID
	remainder := &model.LedgerEntry{
		CustomerPhone: parent.CustomerPhone,
		Amount:        amount,
		OriginType:    parent.OriginType,
		SourceOrderID: parent.SourceOrderID,
		SplitFromID:   &parentID,
		CreatedAt:     parent.CreatedAt,
		ExpiresAt:     parent.ExpiresAt,
	}
	if err := l.insert(remainder, now); err != nil {
		return err
	}

	logger.Debug("Ledger remainder issued", map[string]interface{}{
		"parent_id":    parentID,
		"remainder_id": remainder.ID,
		"amount":       amount,
		"reference":    reference,
	})

	l.events = append(l.events, ledgerEvent(events.LedgerGranted, remainder, reference, now))
	return nil
}

func ledgerEvent(eventType events.LedgerEventType, entry *model.LedgerEntry, reference string, now time.Time) events.LedgerEvent {
	return events.LedgerEvent{
		Type:          eventType,
		CustomerPhone: entry.CustomerPhone,
		EntryID:       entry.ID,
		Code:          entry.Code,
		Amount:        entry.Amount,
		OriginType:    string(entry.OriginType),
		Reference:     reference,
		OccurredAt:    now,
	}
}
