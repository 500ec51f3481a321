package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type commentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// Create POST /posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	node, err := h.comments.Create(c.Request.Context(), services.CreateCommentInput{
		PostID:   c.Param("id"),
		UserID:   userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// Tree GET /posts/:id/comments?sort=&limit=
func (h *CommentHandler) Tree(c *gin.Context) {
	tree, err := h.comments.FetchTree(c.Request.Context(), services.FetchTreeInput{
		PostID:   c.Param("id"),
		ViewerID: middleware.ViewerID(c),
		SortBy:   c.Query("sort"),
		Limit:    queryInt(c, "limit", 0),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": tree})
}
