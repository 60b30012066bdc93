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
	ErrMemberAlreadyExists = errors.New("member already exists")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInvalidMemberName   = errors.New("member name is required")
)

type MemberService interface {
	Register(ctx context.Context, phone, name string) (*model.Member, error)
	GetByPhone(phone string) (*model.Member, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
	ledgerRepo repository.LedgerRepository
	publisher  events.Publisher
	policy     config.LoyaltyConfig
	db         *gorm.DB
	now        func() time.Time
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	ledgerRepo repository.LedgerRepository,
	publisher events.Publisher,
	policy config.LoyaltyConfig,
	db *gorm.DB,
) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
		policy:     policy,
		db:         db,
		now:        time.Now,
	}
}

// Register creates a member and grants the welcome points in the same transaction.
func (s *memberService) Register(ctx context.Context, phone, name string) (*model.Member, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidMemberName
	}

	now := s.now()
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	members := s.memberRepo.WithTx(tx)
	exists, err := members.ExistsByPhone(normalized)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if exists {
		tx.Rollback()
		return nil, ErrMemberAlreadyExists
	}

	member := &model.Member{
		Phone:    normalized,
		Name:     name,
		JoinedAt: now,
	}
	if err := members.Create(member); err != nil {
		tx.Rollback()
		if repository.IsDuplicateKey(err) {
			return nil, ErrMemberAlreadyExists
		}
		return nil, err
	}

	lt := newLedgerTx(tx, s.ledgerRepo, s.policy.EntryValidity)
	if s.policy.WelcomePoints > 0 {
		if _, err := lt.grant(GrantInput{
			CustomerPhone: normalized,
			Amount:        s.policy.WelcomePoints,
			OriginType:    model.OriginWelcome,
		}, now); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit member registration", err, map[string]interface{}{
			"phone": util.MaskPhone(normalized),
		})
		return nil, err
	}

	logger.Info("Member registered", map[string]interface{}{
		"member_id":      member.ID,
		"welcome_points": s.policy.WelcomePoints,
	})

	events.PublishAfterCommit(ctx, s.publisher, lt.events...)
	return member, nil
}

func (s *memberService) GetByPhone(phone string) (*model.Member, error) {
	normalized, err := util.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.FindByPhone(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
