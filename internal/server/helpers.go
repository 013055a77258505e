package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parsePage extracts the 1-based "page" query parameter. Values below 1 are
// clamped to the first page.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

func (s *Server) isAdminByMemberID(ctx context.Context, memberID uint) (bool, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).Select("is_admin").First(&member, memberID).Error; err != nil {
		return false, err
	}
	return member.IsAdmin, nil
}

// commentErrorStatus maps service errors on comment operations to HTTP status codes.
func commentErrorStatus(err error) int {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		}
	}
	return status
}
