package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications. Opening the inbox marks
// every unread notification read; the returned page still shows the flags
// as they stood when the request arrived.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, pageSize := parsePage(c, s.config.InboxPageSize)

	notifications, err := s.notificationService.Inbox(c.Context(), userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": notifications,
		"page":          page,
	})
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.notificationService.UnreadCount(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}
