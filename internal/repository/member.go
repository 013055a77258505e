// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// MemberRepository defines interface for member operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByUsername(ctx context.Context, username string) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}
