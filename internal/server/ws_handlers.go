package server

import (
	"log/slog"
	"strconv"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on websocket upgrades, so an authenticated client
// trades its JWT for a short-lived single-use ticket first.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Live notifications are not available"))
	}

	userID := c.Locals("userID").(uint)
	ticket := uuid.New().String()

	err := s.redis.Set(c.Context(), cache.TicketKey(ticket),
		strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler returns the handler for GET /api/ws: the live
// notification stream. Authentication runs in route middleware; the user id
// is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			slog.Warn("websocket registration rejected", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
