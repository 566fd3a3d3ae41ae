package server

import (
	"strings"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	followers, following, err := s.followService.Counts(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":            user,
		"followers_count": followers,
		"following_count": following,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Bio       *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UploadAvatar handles POST /api/users/me/avatar
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	user, err := s.userService.UpdateAvatar(c.Context(), userID, file, fileHeader.Filename)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetByUsername(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}

	followers, following, err := s.followService.Counts(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	isFollowing := false
	if viewerID, ok := s.optionalUserID(c); ok {
		isFollowing, err = s.followService.IsFollowing(c.Context(), viewerID, user.ID)
		if err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"user":            user,
		"followers_count": followers,
		"following_count": following,
		"is_following":    isFollowing,
	})
}

// GetUserPosts handles GET /api/users/:username/posts. An optional q
// parameter narrows the page to matching posts; pure retweets are skipped
// when filtering so every hit shows its own text.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetByUsername(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}

	viewerID, _ := s.optionalUserID(c)
	page, pageSize := parsePage(c, s.config.FeedPageSize)
	q := strings.TrimSpace(c.Query("q"))

	posts, err := s.postService.UserPosts(c.Context(), user.ID, viewerID, q, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"page":  page,
	})
}

// ToggleFollow handles POST /api/users/:username/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	following, err := s.followService.Toggle(c.Context(), userID, username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.followService.Followers(c.Context(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.followService.Following(c.Context(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// SuggestedUsers handles GET /api/explore/users: accounts the viewer does
// not follow yet, most followed first.
func (s *Server) SuggestedUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, pageSize := parsePage(c, s.config.ExplorePageSize)

	users, err := s.userService.Suggested(c.Context(), userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"page":  page,
	})
}
