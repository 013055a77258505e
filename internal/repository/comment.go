package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
//
// The default scope excludes soft-deleted rows. Methods that need deleted
// rows say so in their name: thread listing must see deleted top-level
// comments to decide whether a placeholder is rendered, and single-comment
// lookups for rendering deleted parents go through GetByIDIncludingDeleted.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Comment, error)
	// ListThreadsByPost returns one thread per top-level comment of the post,
	// newest top-level first, each with its replies oldest-first. Both levels
	// include soft-deleted rows; visibility is resolved by the caller.
	ListThreadsByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.CommentThread, error)
	// ListByAuthor returns the member's own non-deleted comments and replies,
	// newest first. Reply rows carry their parent (even a deleted one) so the
	// owning post can be derived.
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	// MarkDeleted soft-deletes the comment. Deleting an already-deleted
	// comment is a no-op.
	MarkDeleted(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Unscoped().Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListThreadsByPost(
	ctx context.Context,
	postID uint,
	limit, offset int,
) ([]*models.CommentThread, error) {
	var topLevel []*models.Comment
	err := r.db.WithContext(ctx).
		Unscoped().
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&topLevel).Error
	if err != nil {
		return nil, err
	}
	if len(topLevel) == 0 {
		return []*models.CommentThread{}, nil
	}

	parentIDs := make([]uint, 0, len(topLevel))
	for _, c := range topLevel {
		parentIDs = append(parentIDs, c.ID)
	}

	var replies []*models.Comment
	err = r.db.WithContext(ctx).
		Unscoped().
		Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("id asc").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	byParent := make(map[uint][]*models.Comment, len(topLevel))
	for _, reply := range replies {
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
	}

	threads := make([]*models.CommentThread, 0, len(topLevel))
	for _, c := range topLevel {
		threads = append(threads, &models.CommentThread{
			Comment: c,
			Replies: byParent[c.ID],
		})
	}
	return threads, nil
}

func (r *commentRepository) ListByAuthor(
	ctx context.Context,
	authorID uint,
	limit, offset int,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Parent", func(db *gorm.DB) *gorm.DB {
			// The parent may itself be soft-deleted; it is still needed to
			// resolve which post a reply belongs to.
			return db.Unscoped()
		}).
		Where("author_id = ?", authorID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) MarkDeleted(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
