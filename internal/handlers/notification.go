package handlers

import (
	"net/http"
	"strconv"

	"forumcore/internal/middleware"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

// List GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	items, err := h.notifications.List(ctx, userID, queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "unread": unread})
}

// Read POST /notifications/:id/read
func (h *NotificationHandler) Read(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), userID, uint(id)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadAll POST /notifications/read-all
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), userID, uint(id)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
