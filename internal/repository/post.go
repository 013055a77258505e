package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByIDIncludingDeleted fetches the post even when soft-deleted. Used
	// when a deleted post's title must be replaced with a placeholder rather
	// than dropped.
	GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error)
	ListByBoard(ctx context.Context, boardID uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	SetCommentsAllowed(ctx context.Context, id uint, allowed bool) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Board").
		Select("posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Unscoped().First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByBoard(
	ctx context.Context,
	boardID uint,
	limit, offset int,
) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Select("posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count").
		Where("board_id = ?", boardID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *postRepository) SetCommentsAllowed(ctx context.Context, id uint, allowed bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("comments_allowed", allowed).Error
}
