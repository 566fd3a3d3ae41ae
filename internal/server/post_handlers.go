package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HomeTimeline handles GET /api/feed: recent posts from the signed-in user
// and everyone they follow.
func (s *Server) HomeTimeline(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, pageSize := parsePage(c, s.config.FeedPageSize)

	posts, err := s.postService.HomeTimeline(c.Context(), userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"page":  page,
	})
}

// Explore handles GET /api/explore: everyone's posts, newest first. The
// liked flag is filled in when the request carries a valid token.
func (s *Server) Explore(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	posts, err := s.postService.Explore(c.Context(), viewerID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"page":  page,
	})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string   `json:"content"`
		Topics  []string `json:"topics"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imageURL, err := s.uploadPostImage(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:     userID,
		Content:    req.Content,
		ImageURL:   imageURL,
		TopicNames: req.Topics,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// uploadPostImage stores a multipart "image" file if one was sent. JSON
// bodies simply have no multipart form and fall through.
func (s *Server) uploadPostImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return "", nil
	}
	if s.images == nil {
		return "", models.NewValidationError("Image uploads are not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer file.Close()

	url, err := s.images.UploadImage(c.Context(), file, "posts", fileHeader.Filename)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), id, viewerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.DeletePost(c.Context(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.PostComments(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.AddComment(c.Context(), userID, id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	liked, err := s.postService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// Retweet handles POST /api/posts/:id/retweet
func (s *Server) Retweet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.Retweet(c.Context(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// Quote handles POST /api/posts/:id/quote
func (s *Server) Quote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Quote(c.Context(), service.QuoteInput{
		UserID:   userID,
		ParentID: id,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetTagFeed handles GET /api/tags/:tag: whole-word hashtag matches.
func (s *Server) GetTagFeed(c *fiber.Ctx) error {
	tag := c.Params("tag")
	if tag == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid tag"))
	}
	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	posts, err := s.postService.TagFeed(c.Context(), tag, viewerID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tag":   tag,
		"posts": posts,
		"page":  page,
	})
}
