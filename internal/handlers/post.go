package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/services"
	"forumcore/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	enhanced *services.EnhancedService
	ranking  *services.RankingService
	log      *zap.Logger
}

func NewPostHandler(enhanced *services.EnhancedService, ranking *services.RankingService, log *zap.Logger) *PostHandler {
	return &PostHandler{enhanced: enhanced, ranking: ranking, log: log}
}

// Detail GET /posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.enhanced.GetEnhancedPost(c.Request.Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// List GET /posts?sort=hot|top|new|controversial&limit=
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.ranking.ListPosts(c.Request.Context(), utils.ParseSortMode(c.Query("sort")), queryInt(c, "limit", 30))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
