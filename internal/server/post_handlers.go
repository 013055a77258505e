package server

import (
	"fmt"
	"time"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

const postCacheTTL = 30 * time.Second

func postCacheKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	var req struct {
		BoardID uint   `json:"board_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		MemberID: memberID,
		BoardID:  req.BoardID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id with a short cache-aside window.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var post models.Post
	cacheErr := cache.CacheAside(c.UserContext(), s.redis, postCacheKey(postID), &post, postCacheTTL, func() error {
		fetched, err := s.postService.GetPost(c.UserContext(), postID)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if cacheErr != nil {
		return models.RespondWithError(c, commentErrorStatus(cacheErr), cacheErr)
	}

	return c.JSON(post)
}

// GetBoardPosts handles GET /api/boards/:id/posts
func (s *Server) GetBoardPosts(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.ListPosts(c.UserContext(), boardID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id (owner only)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		MemberID: memberID,
		PostID:   postID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	s.invalidatePostCache(c, postID)
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id (owner or admin)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, memberID); err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	s.invalidatePostCache(c, postID)
	return c.SendStatus(fiber.StatusOK)
}

// SetCommentsAllowed handles PUT /api/posts/:id/comments-allowed (owner or admin)
func (s *Server) SetCommentsAllowed(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Allowed *bool `json:"allowed"`
	}
	if err := c.BodyParser(&req); err != nil || req.Allowed == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.postService.SetCommentsAllowed(c.UserContext(), postID, memberID, *req.Allowed); err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	s.invalidatePostCache(c, postID)
	return c.JSON(fiber.Map{"post_id": postID, "comments_allowed": *req.Allowed})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.UserContext(), postID, memberID); err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	s.invalidatePostCache(c, postID)
	return c.SendStatus(fiber.StatusOK)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.UserContext(), postID, memberID); err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	s.invalidatePostCache(c, postID)
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) invalidatePostCache(c *fiber.Ctx, postID uint) {
	if err := cache.Invalidate(c.UserContext(), s.redis, postCacheKey(postID)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "post cache invalidation failed",
			"post_id", postID, "error", err)
	}
}
