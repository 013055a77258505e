package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines interface for post like operations
type LikeRepository interface {
	Add(ctx context.Context, postID, memberID uint) error
	Remove(ctx context.Context, postID, memberID uint) error
	Exists(ctx context.Context, postID, memberID uint) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Add is idempotent: liking an already-liked post is a no-op.
func (r *likeRepository) Add(ctx context.Context, postID, memberID uint) error {
	like := models.Like{PostID: postID, MemberID: memberID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *likeRepository) Remove(ctx context.Context, postID, memberID uint) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND member_id = ?", postID, memberID).
		Delete(&models.Like{}).Error
}

func (r *likeRepository) Exists(ctx context.Context, postID, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND member_id = ?", postID, memberID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
