package server

import (
	"errors"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMyProfile handles GET /api/members/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	member, err := s.memberRepo.GetByID(c.UserContext(), memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Member"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(member)
}

// GetMyComments handles GET /api/members/me/comments?page=N. The listing
// excludes the member's own deleted comments and annotates each entry with the
// owning post, substituting a placeholder title when the post is deleted.
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	memberID := c.Locals("userID").(uint)

	views, err := s.commentService.ListForMember(c.UserContext(), memberID, parsePage(c))
	if err != nil {
		return models.RespondWithError(c, commentErrorStatus(err), err)
	}

	return c.JSON(views)
}
