package server

import (
	"strings"

	"chirp/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const userSearchLimit = 10

// SimpleSearch handles GET /api/search: one query across posts and users.
func (s *Server) SimpleSearch(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	if q == "" {
		return c.JSON(fiber.Map{
			"posts": []any{},
			"users": []any{},
			"page":  page,
		})
	}

	posts, err := s.postService.SearchPosts(c.Context(), repository.FeedQuery{
		ViewerID: viewerID,
		Text:     q,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondError(c, err)
	}

	users, err := s.userService.SearchUsers(c.Context(), q, userSearchLimit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"users": users,
		"page":  page,
	})
}

// AdvancedSearch handles GET /api/search/advanced. Every filter is optional
// and malformed ones (bad dates, non-numeric topic ids) are dropped rather
// than rejected, so the request always answers with whatever the remaining
// filters select.
func (s *Server) AdvancedSearch(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	query := repository.FeedQuery{
		ViewerID: viewerID,
		Text:     strings.TrimSpace(c.Query("q")),
		TopicID:  parseTopicID(c),
		Sort:     parseSort(c),
		Page:     page,
		PageSize: pageSize,
	}
	query.Since = parseDate(c, "date_from")
	if until := parseDate(c, "date_to"); until != nil {
		end := endOfDay(*until)
		query.Until = &end
	}

	posts, err := s.postService.SearchPosts(c.Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"page":  page,
		"sort":  query.Sort,
	})
}
