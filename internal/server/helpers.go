package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPageSize = 100

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads the page number and clamps the page size.
func parsePage(c *fiber.Ctx, defaultSize int) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = c.QueryInt("page_size", defaultSize)
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// parseDate reads a YYYY-MM-DD query parameter. A malformed value is treated
// as absent so a bad filter narrows nothing instead of failing the request.
func parseDate(c *fiber.Ctx, name string) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

// parseTopicID reads a numeric topic filter; non-numeric values are dropped.
func parseTopicID(c *fiber.Ctx) uint {
	raw := strings.TrimSpace(c.Query("topic"))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// parseSort maps the sort query parameter onto a known mode, defaulting to
// recent for anything unrecognized.
func parseSort(c *fiber.Ctx) string {
	switch c.Query("sort") {
	case repository.SortOldest:
		return repository.SortOldest
	case repository.SortRelevance:
		return repository.SortRelevance
	default:
		return repository.SortRecent
	}
}

// endOfDay pushes an inclusive date bound to the last instant of that day.
func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond)
}

// respondError maps an application error onto the matching HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
