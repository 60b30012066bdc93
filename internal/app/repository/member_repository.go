package repository

import (
	"errors"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"gorm.io/gorm"
)

type MemberRepository interface {
	WithTx(tx *gorm.DB) MemberRepository
	Create(member *model.Member) error
	FindByPhone(phone string) (*model.Member, error)
	ExistsByPhone(phone string) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) WithTx(tx *gorm.DB) MemberRepository {
	return &memberRepository{db: tx}
}

func (r *memberRepository) Create(member *model.Member) error {
	logger.Debug("Creating member in database", map[string]interface{}{
		"phone": member.Phone,
	})

	if err := r.db.Create(member).Error; err != nil {
		logger.Error("Failed to create member in database", err, map[string]interface{}{
			"phone": member.Phone,
		})
		return err
	}

	logger.Debug("Member created in database", map[string]interface{}{
		"member_id": member.ID,
	})
	return nil
}

func (r *memberRepository) FindByPhone(phone string) (*model.Member, error) {
	var member model.Member
	if err := r.db.Where("phone = ?", phone).First(&member).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find member by phone in database", err, map[string]interface{}{
				"phone": phone,
			})
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ExistsByPhone(phone string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Member{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
		logger.Error("Failed to check member existence", err, map[string]interface{}{
			"phone": phone,
		})
		return false, err
	}
	return count > 0, nil
}
