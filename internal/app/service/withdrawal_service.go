package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrBelowMinimum        = errors.New("withdrawal amount below minimum")
	ErrNotAStepMultiple    = errors.New("withdrawal amount is not a multiple of the step")
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")
	ErrInvalidBankInfo     = errors.New("bank information is incomplete")
)

const withdrawalNumberPrefix = "WD"

// WithdrawalInput 출금 신청
type WithdrawalInput struct {
	Phone  string
	Amount int64
	Bank   model.BankInfo
}

// WithdrawalSummary 출금 화면 요약
type WithdrawalSummary struct {
	TotalPoints        int64 `json:"totalPoints"`
	WithdrawableAmount int64 `json:"withdrawableAmount"`
}

type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, input WithdrawalInput, now time.Time) (*model.Withdrawal, error)
	Summary(phone string, now time.Time) (*WithdrawalSummary, error)
	List(status model.WithdrawalStatus) ([]model.Withdrawal, error)
}

type withdrawalService struct {
	withdrawalRepo repository.WithdrawalRepository
	ledgerRepo     repository.LedgerRepository
	publisher      events.Publisher
	policy         config.LoyaltyConfig
	db             *gorm.DB
}

func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	ledgerRepo repository.LedgerRepository,
	publisher events.Publisher,
	policy config.LoyaltyConfig,
	db *gorm.DB,
) WithdrawalService {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		ledgerRepo:     ledgerRepo,
		publisher:      publisher,
		policy:         policy,
		db:             db,
	}
}

// ValidateWithdrawalAmount checks the minimum and step rules.
func ValidateWithdrawalAmount(amount int64, policy config.LoyaltyConfig) error {
	if amount < policy.WithdrawalMinimum {
		return ErrBelowMinimum
	}
	if amount%policy.WithdrawalStep != 0 {
		return ErrNotAStepMultiple
	}
	return nil
}

func (s *withdrawalService) RequestWithdrawal(ctx context.Context, input WithdrawalInput, now time.Time) (*model.Withdrawal, error) {
	phone, err := util.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	bank := model.BankInfo{
		BankName:      strings.TrimSpace(input.Bank.BankName),
		AccountNumber: strings.TrimSpace(input.Bank.AccountNumber),
		AccountHolder: strings.TrimSpace(input.Bank.AccountHolder),
	}
	if bank.BankName == "" || bank.AccountNumber == "" || bank.AccountHolder == "" {
		return nil, ErrInvalidBankInfo
	}

	if err := ValidateWithdrawalAmount(input.Amount, s.policy); err != nil {
		logger.Warn("Withdrawal amount rejected", map[string]interface{}{
			"customer_phone": util.MaskPhone(phone),
			"amount":         input.Amount,
			"reason":         err.Error(),
		})
		return nil, err
	}

	withdrawal := &model.Withdrawal{
		WithdrawalNumber: util.GenerateReference(withdrawalNumberPrefix, now.In(s.policy.Location())),
		CustomerPhone:    phone,
		Amount:           input.Amount,
		Bank:             bank,
		Status:           model.WithdrawalStatusPending,
	}

	logger.Info("Requesting withdrawal", map[string]interface{}{
		"customer_phone":    util.MaskPhone(phone),
		"amount":            input.Amount,
		"withdrawal_number": withdrawal.WithdrawalNumber,
	})

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// 잔액은 같은 트랜잭션 안에서 다시 읽는다
	lt := newLedgerTx(tx, s.ledgerRepo, s.policy.EntryValidity)
	if err := lt.spend(phone, input.Amount, withdrawal.WithdrawalNumber, now); err != nil {
		tx.Rollback()
		if errors.Is(err, errLedgerShortfall) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	if err := s.withdrawalRepo.WithTx(tx).Create(withdrawal); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit withdrawal", err, map[string]interface{}{
			"withdrawal_number": withdrawal.WithdrawalNumber,
		})
		return nil, err
	}

	logger.Info("Withdrawal requested", map[string]interface{}{
		"withdrawal_id":     withdrawal.ID,
		"withdrawal_number": withdrawal.WithdrawalNumber,
	})

	events.PublishAfterCommit(ctx, s.publisher, lt.events...)
	return withdrawal, nil
}

func (s *withdrawalService) Summary(phone string, now time.Time) (*WithdrawalSummary, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.ListAvailable(normalized, now)
	if err != nil {
		return nil, err
	}

	available := AvailableAmount(entries)
	withdrawable := available / s.policy.WithdrawalStep * s.policy.WithdrawalStep
	if withdrawable < s.policy.WithdrawalMinimum {
		withdrawable = 0
	}

	return &WithdrawalSummary{
		TotalPoints:        available,
		WithdrawableAmount: withdrawable,
	}, nil
}

func (s *withdrawalService) List(status model.WithdrawalStatus) ([]model.Withdrawal, error) {
	return s.withdrawalRepo.FindByStatus(status)
}
