package handlers

import (
	"net/http"

	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type KarmaHandler struct {
	karma *services.KarmaService
	log   *zap.Logger
}

func NewKarmaHandler(karma *services.KarmaService, log *zap.Logger) *KarmaHandler {
	return &KarmaHandler{karma: karma, log: log}
}

// Balance GET /karma/:user_id
func (h *KarmaHandler) Balance(c *gin.Context) {
	acct, err := h.karma.GetBalance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Logs GET /karma/:user_id/logs
func (h *KarmaHandler) Logs(c *gin.Context) {
	logs, err := h.karma.Logs(c.Request.Context(), c.Param("user_id"), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
