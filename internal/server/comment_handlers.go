package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment creates a top-level comment on a post (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.commentService.WriteTopLevel(ctx, service.CreateCommentInput{
		MemberID: memberID,
		PostID:   postID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// CreateReply creates a reply to a top-level comment (protected)
func (s *Server) CreateReply(c *fiber.Ctx) error {
	ctx := c.UserContext()
	memberID := c.Locals("userID").(uint)

	parentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.commentService.WriteReply(ctx, service.CreateReplyInput{
		MemberID: memberID,
		ParentID: parentID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetComment returns a single non-deleted comment (public)
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(ctx, commentID)
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.JSON(comment)
}

// GetComments returns one page of rendered comment threads for a post (public).
// Deleted comments render as placeholders when they still anchor visible
// replies, and disappear entirely otherwise.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.GetPost(ctx, postID); err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	nodes, err := s.commentService.ListForPost(ctx, postID, parsePage(c))
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.JSON(nodes)
}

// UpdateComment updates a comment (only owner)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	memberID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		MemberID:  memberID,
		Username:  username,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.JSON(updated)
}

// DeleteComment soft-deletes a comment (owner or admin)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	memberID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	_, err = s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		MemberID:  memberID,
		Username:  username,
		CommentID: commentID,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.SendStatus(fiber.StatusOK)
}
