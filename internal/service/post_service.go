package service

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// MaxPostTitleLength bounds post titles.
const MaxPostTitleLength = 200

type PostService struct {
	postRepo  repository.PostRepository
	boardRepo repository.BoardRepository
	likeRepo  repository.LikeRepository
	isAdmin   func(ctx context.Context, memberID uint) (bool, error)
}

type CreatePostInput struct {
	MemberID uint
	BoardID  uint
	Title    string
	Content  string
}

type UpdatePostInput struct {
	MemberID uint
	PostID   uint
	Title    string
	Content  string
}

func NewPostService(
	postRepo repository.PostRepository,
	boardRepo repository.BoardRepository,
	likeRepo repository.LikeRepository,
	isAdmin func(ctx context.Context, memberID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		boardRepo: boardRepo,
		likeRepo:  likeRepo,
		isAdmin:   isAdmin,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if _, err := s.boardRepo.GetByID(ctx, in.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board")
		}
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > MaxPostTitleLength {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	post := &models.Post{
		Title:           title,
		Content:         in.Content,
		BoardID:         in.BoardID,
		AuthorID:        in.MemberID,
		CommentsAllowed: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, boardID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board")
		}
		return nil, err
	}
	return s.postRepo.ListByBoard(ctx, boardID, limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.MemberID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != "" {
		title := strings.TrimSpace(in.Title)
		if len(title) > MaxPostTitleLength {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = title
	}
	if in.Content != "" {
		post.Content = in.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, memberID uint) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwnerOrAdmin(ctx, post, memberID, "You can only delete your own posts"); err != nil {
		return err
	}

	return s.postRepo.Delete(ctx, postID)
}

// SetCommentsAllowed toggles whether a post accepts new comments and replies.
// Existing comments are unaffected.
func (s *PostService) SetCommentsAllowed(ctx context.Context, postID, memberID uint, allowed bool) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.requireOwnerOrAdmin(ctx, post, memberID, "Only the post author can change comment settings"); err != nil {
		return err
	}

	return s.postRepo.SetCommentsAllowed(ctx, postID, allowed)
}

// LikePost records a like. Liking a post twice is a no-op.
func (s *PostService) LikePost(ctx context.Context, postID, memberID uint) error {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}
	return s.likeRepo.Add(ctx, postID, memberID)
}

func (s *PostService) UnlikePost(ctx context.Context, postID, memberID uint) error {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}
	return s.likeRepo.Remove(ctx, postID, memberID)
}

func (s *PostService) requireOwnerOrAdmin(ctx context.Context, post *models.Post, memberID uint, denied string) error {
	if post.AuthorID == memberID {
		return nil
	}
	if s.isAdmin == nil {
		return models.NewForbiddenError(denied)
	}
	admin, err := s.isAdmin(ctx, memberID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError(denied)
	}
	return nil
}
