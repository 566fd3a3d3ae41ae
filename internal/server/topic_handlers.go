package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTopics handles GET /api/topics
func (s *Server) GetTopics(c *fiber.Ctx) error {
	topics, err := s.topicService.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"topics": topics})
}

// CreateTopic handles POST /api/topics
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	topic, err := s.topicService.Create(c.Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// GetTopicFeed handles GET /api/topics/:slug: the topic plus one page of its
// posts.
func (s *Server) GetTopicFeed(c *fiber.Ctx) error {
	slug := c.Params("slug")
	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	topic, posts, err := s.topicService.Feed(c.Context(), slug, viewerID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"topic": topic,
		"posts": posts,
		"page":  page,
	})
}
