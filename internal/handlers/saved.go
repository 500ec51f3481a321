package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SavedHandler struct {
	saved *services.SavedService
	log   *zap.Logger
}

func NewSavedHandler(saved *services.SavedService, log *zap.Logger) *SavedHandler {
	return &SavedHandler{saved: saved, log: log}
}

// Save PUT /saved/:type/:id
func (h *SavedHandler) Save(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.saved.Save(c.Request.Context(), contentRef(c), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// Unsave DELETE /saved/:type/:id
func (h *SavedHandler) Unsave(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.saved.Unsave(c.Request.Context(), contentRef(c), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// List GET /saved
func (h *SavedHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	items, err := h.saved.List(c.Request.Context(), userID, queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": items})
}
