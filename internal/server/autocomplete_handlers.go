package server

import (
	"github.com/gofiber/fiber/v2"
)

// AutocompleteTopics handles GET /api/autocomplete/topics?q=
func (s *Server) AutocompleteTopics(c *fiber.Ctx) error {
	results, err := s.autocompleteService.Topics(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

// AutocompleteHashtags handles GET /api/autocomplete/hashtags?q=
func (s *Server) AutocompleteHashtags(c *fiber.Ctx) error {
	results, err := s.autocompleteService.Hashtags(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

// AutocompleteMentions handles GET /api/autocomplete/mentions?q=
func (s *Server) AutocompleteMentions(c *fiber.Ctx) error {
	results, err := s.autocompleteService.Mentions(c.Context(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
