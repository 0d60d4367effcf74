// Package http exposes the authoritative bookmark store over REST and
// WebSocket. Owner scoping is implicit: every route operates on the
// authenticated caller's own collection.
package http

import (
	"errors"

	"bookmark-sync/internal/bookmarks/usecase"
	"bookmark-sync/internal/shared/contextkeys"
	apperrors "bookmark-sync/internal/shared/errors"
	"bookmark-sync/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BookmarkHandler handles the bookmark CRUD endpoints.
type BookmarkHandler struct {
	usecase usecase.BookmarkUsecase
	log     logger.Logger
}

// NewBookmarkHandler creates a new BookmarkHandler.
func NewBookmarkHandler(uc usecase.BookmarkUsecase, log logger.Logger) *BookmarkHandler {
	return &BookmarkHandler{usecase: uc, log: log}
}

// RegisterRoutes registers the bookmark endpoints. The router must already
// carry the auth middleware.
func (h *BookmarkHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/bookmarks")
	group.Post("/", h.createBookmark)
	group.Get("/", h.listBookmarks)
	group.Delete("/:bookmarkId", h.deleteBookmark)
}

// CreateBookmarkRequest is the POST body.
type CreateBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (h *BookmarkHandler) createBookmark(c *fiber.Ctx) error {
	ownerID, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
	if !ok || ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req CreateBookmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	stored, err := h.usecase.Create(c.UserContext(), ownerID, req.Title, req.URL)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

func (h *BookmarkHandler) listBookmarks(c *fiber.Ctx) error {
	ownerID, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
	if !ok || ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	records, err := h.usecase.List(c.UserContext(), ownerID)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookmarks": records,
		"count":     len(records),
	})
}

func (h *BookmarkHandler) deleteBookmark(c *fiber.Ctx) error {
	ownerID, ok := c.UserContext().Value(contextkeys.UserIDKey).(string)
	if !ok || ownerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	bookmarkID := c.Params("bookmarkId")
	affected, err := h.usecase.Remove(c.UserContext(), bookmarkID, ownerID)
	if err != nil {
		return h.sendError(c, err)
	}

	// Zero affected rows means the record was already gone or never belonged
	// to the caller. Either way the delete did not happen, and the caller
	// must see that.
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":      "Bookmark not found",
			"bookmarkId": bookmarkID,
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// sendError maps application errors to HTTP responses.
func (h *BookmarkHandler) sendError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"error": appErr.Message,
		})
	}

	h.log.Error("Unhandled error in bookmark handler",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
