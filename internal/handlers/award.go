package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/models"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AwardHandler struct {
	awards *services.AwardService
	log    *zap.Logger
}

func NewAwardHandler(awards *services.AwardService, log *zap.Logger) *AwardHandler {
	return &AwardHandler{awards: awards, log: log}
}

type awardRequest struct {
	AwardType   models.AwardType `json:"award_type" binding:"required"`
	Message     *string          `json:"message"`
	IsAnonymous bool             `json:"is_anonymous"`
}

// Give POST /awards/:type/:id
func (h *AwardHandler) Give(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	award, err := h.awards.Give(c.Request.Context(), services.GiveAwardInput{
		Ref:         contentRef(c),
		GiverID:     userID,
		AwardType:   req.AwardType,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, award)
}

// List GET /awards/:type/:id
func (h *AwardHandler) List(c *gin.Context) {
	summary, err := h.awards.Aggregate(c.Request.Context(), contentRef(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"awards": summary})
}
