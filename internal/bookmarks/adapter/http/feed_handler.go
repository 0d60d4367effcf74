package http

import (
	"context"
	"time"

	"bookmark-sync/internal/bookmarks/domain/repository"
	"bookmark-sync/internal/shared/contextkeys"
	"bookmark-sync/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedHandler serves the owner-scoped change feed over WebSocket. Each
// connection gets its own uniquely named subscription so that reconnects
// never collide with a subscription still being torn down.
type FeedHandler struct {
	stream repository.ChangeStream
	log    logger.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(stream repository.ChangeStream, log logger.Logger) *FeedHandler {
	return &FeedHandler{stream: stream, log: log}
}

// RegisterRoutes registers the WebSocket endpoint. The router must already
// carry the auth middleware.
func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	wsGroup := router.Group("/ws")

	wsGroup.Use("/feed", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		// The websocket handler runs outside the fiber request context;
		// carry the authenticated identity over via Locals.
		ownerID, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
		if !ok || ownerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		c.Locals("owner_id", ownerID)
		return c.Next()
	})

	wsGroup.Get("/feed", websocket.New(h.handleConnection))
}

// FeedMessage represents messages sent to the client.
type FeedMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ownerID, _ := conn.Locals("owner_id").(string)
	subscriptionName := "ws-" + uuid.NewString()

	h.log.Info("Feed connection established",
		zap.String("ownerID", ownerID),
		zap.String("subscription", subscriptionName))

	sub, err := h.stream.Subscribe(ctx, ownerID, subscriptionName)
	if err != nil {
		h.log.Error("Failed to subscribe to change stream",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		conn.WriteJSON(FeedMessage{Type: "error", Data: "subscription failed"})
		return
	}
	defer sub.Close()

	conn.WriteJSON(FeedMessage{
		Type: "connected",
		Data: map[string]interface{}{"subscription": subscriptionName},
	})

	// Forward change events until the subscription or the connection ends.
	go func() {
		defer cancel()
		for event := range sub.Events() {
			if err := conn.WriteJSON(FeedMessage{Type: "bookmark_change", Data: event}); err != nil {
				h.log.Warn("Failed to write feed event",
					zap.String("ownerID", ownerID),
					zap.Error(err))
				return
			}
		}
		if err := sub.Err(); err != nil {
			conn.WriteJSON(FeedMessage{Type: "error", Data: err.Error()})
		}
	}()

	// Read loop: detects disconnection.
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Error("Feed connection error",
						zap.String("ownerID", ownerID),
						zap.Error(err))
				}
				return
			}
		}
	}
}
