package server

import (
	"errors"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateBoard handles POST /api/boards (admin only)
func (s *Server) CreateBoard(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	if _, err := s.boardRepo.GetByName(c.UserContext(), req.Name); err == nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Board already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	board := &models.Board{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.boardRepo.Create(c.UserContext(), board); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(board)
}

// GetBoards handles GET /api/boards
func (s *Server) GetBoards(c *fiber.Ctx) error {
	boards, err := s.boardRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(boards)
}

// GetBoard handles GET /api/boards/:id
func (s *Server) GetBoard(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	board, err := s.boardRepo.GetByID(c.UserContext(), boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Board"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(board)
}
