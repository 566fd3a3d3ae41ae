package server

import (
	"chirp/internal/cache"

	"github.com/gofiber/fiber/v2"
)

// ToggleTheme handles POST /api/theme. Without an explicit theme in the body
// the current preference is flipped.
func (s *Server) ToggleTheme(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Theme string `json:"theme"`
	}
	_ = c.BodyParser(&req)

	theme := req.Theme
	switch theme {
	case cache.ThemeLight, cache.ThemeDark:
	case "":
		if cache.GetTheme(c.Context(), userID) == cache.ThemeLight {
			theme = cache.ThemeDark
		} else {
			theme = cache.ThemeLight
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error"})
	}

	if err := cache.SetTheme(c.Context(), userID, theme); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error"})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"theme":  theme,
	})
}
