package service

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// CommentPageSize is the fixed page size for comment listings.
const CommentPageSize = 20

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, memberID uint) (bool, error)
}

type CreateCommentInput struct {
	MemberID uint
	PostID   uint
	Content  string
}

type CreateReplyInput struct {
	MemberID uint
	ParentID uint
	Content  string
}

type UpdateCommentInput struct {
	MemberID  uint
	Username  string
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	MemberID  uint
	Username  string
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, memberID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		isAdmin:     isAdmin,
	}
}

func validateCommentContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > models.MaxCommentLength {
		return models.NewValidationError(
			fmt.Sprintf("Comment too long (max %d characters)", models.MaxCommentLength))
	}
	return nil
}

// pageOffset converts a 1-based page number into an offset. Pages below 1 are
// clamped to the first page.
func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * CommentPageSize
}

// WriteTopLevel creates a top-level comment on a post. The post must exist,
// must not be deleted, and must currently accept comments.
func (s *CommentService) WriteTopLevel(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	if !post.CommentsAllowed {
		return nil, models.NewForbiddenError("Comments are disabled for this post")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	postID := in.PostID
	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.MemberID,
		PostID:   &postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.WithLabelValues("top_level").Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// WriteReply creates a reply to a top-level comment. The parent must exist but
// may already be soft-deleted (the thread view keeps the reply visible under a
// placeholder), must itself be top-level (replies cannot be nested), and the
// owning post must accept comments.
func (s *CommentService) WriteReply(ctx context.Context, in CreateReplyInput) (*models.Comment, error) {
	parent, err := s.commentRepo.GetByIDIncludingDeleted(ctx, in.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment")
		}
		return nil, err
	}
	if parent.IsReply() {
		return nil, models.NewValidationError("Cannot reply to a reply")
	}

	post, err := s.postRepo.GetByID(ctx, *parent.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, err
	}
	if !post.CommentsAllowed {
		return nil, models.NewForbiddenError("Comments are disabled for this post")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	parentID := in.ParentID
	reply := &models.Comment{
		Content:  in.Content,
		AuthorID: in.MemberID,
		ParentID: &parentID,
	}
	if err := s.commentRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	observability.CommentsCreated.WithLabelValues("reply").Inc()

	return s.commentRepo.GetByID(ctx, reply.ID)
}

// GetComment fetches a single non-deleted comment. Absent and soft-deleted
// comments are both reported as not found.
func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment")
		}
		return nil, err
	}
	return comment, nil
}

// UpdateComment replaces the content of a comment owned by the acting member.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.Author.Username != in.Username {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment soft-deletes a comment owned by the acting member. Admins may
// delete any comment. A second delete of the same comment reports not found,
// because deleted comments are invisible to the ownership lookup.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.Author.Username != in.Username {
		if s.isAdmin == nil {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, in.MemberID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.MarkDeleted(ctx, in.CommentID); err != nil {
		return nil, err
	}

	kind := "top_level"
	if comment.IsReply() {
		kind = "reply"
	}
	observability.CommentsDeleted.WithLabelValues(kind).Inc()

	return comment, nil
}

// ListForPost returns the rendered comment page for a post, newest top-level
// comment first, replies oldest-first within each node. Deleted comments are
// resolved to placeholders or omitted; see resolveThread.
func (s *CommentService) ListForPost(ctx context.Context, postID uint, page int) ([]*models.CommentNode, error) {
	threads, err := s.commentRepo.ListThreadsByPost(ctx, postID, CommentPageSize, pageOffset(page))
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.CommentNode, 0, len(threads))
	for _, thread := range threads {
		node, ok := resolveThread(thread)
		if !ok {
			continue
		}
		if node.Deleted {
			observability.PlaceholderRenders.Inc()
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ListForMember returns the member's own non-deleted comments and replies,
// newest first, annotated with the owning post's title. Deleted posts keep the
// comment visible but replace the title with a placeholder.
func (s *CommentService) ListForMember(ctx context.Context, memberID uint, page int) ([]*models.MemberCommentView, error) {
	comments, err := s.commentRepo.ListByAuthor(ctx, memberID, CommentPageSize, pageOffset(page))
	if err != nil {
		return nil, err
	}

	// Posts are looked up at most once per page.
	posts := make(map[uint]*models.Post)
	views := make([]*models.MemberCommentView, 0, len(comments))
	for _, comment := range comments {
		var postID uint
		switch {
		case comment.PostID != nil:
			postID = *comment.PostID
		case comment.Parent != nil && comment.Parent.PostID != nil:
			postID = *comment.Parent.PostID
		default:
			continue
		}

		post, ok := posts[postID]
		if !ok {
			post, err = s.postRepo.GetByIDIncludingDeleted(ctx, postID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			posts[postID] = post
		}

		view := &models.MemberCommentView{
			ID:          comment.ID,
			Content:     comment.Content,
			Reply:       comment.IsReply(),
			PostID:      postID,
			PostTitle:   post.Title,
			PostDeleted: post.DeletedAt.Valid,
			CreatedAt:   comment.CreatedAt,
		}
		if view.PostDeleted {
			view.PostTitle = models.DeletedPostPlaceholder
		}
		views = append(views, view)
	}
	return views, nil
}
