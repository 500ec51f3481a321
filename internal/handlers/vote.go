package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/models"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	votes *services.VoteService
	log   *zap.Logger
}

func NewVoteHandler(votes *services.VoteService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, log: log}
}

type voteRequest struct {
	VoteType models.VoteType `json:"vote_type" binding:"required"`
}

// Vote POST /votes/:type/:id
func (h *VoteHandler) Vote(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	vc, err := h.votes.CastVote(c.Request.Context(), contentRef(c), userID, req.VoteType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": vc, "user_vote": req.VoteType})
}

// Clear DELETE /votes/:type/:id
func (h *VoteHandler) Clear(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	vc, err := h.votes.ClearVote(c.Request.Context(), contentRef(c), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": vc, "user_vote": nil})
}

// Count GET /votes/:type/:id
func (h *VoteHandler) Count(c *gin.Context) {
	ref := contentRef(c)
	vc, err := h.votes.GetVoteCount(c.Request.Context(), ref)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := gin.H{"votes": vc}
	if userID, ok := middleware.UserID(c); ok {
		uv, err := h.votes.UserVote(c.Request.Context(), ref, userID)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		resp["user_vote"] = uv
	}
	c.JSON(http.StatusOK, resp)
}
