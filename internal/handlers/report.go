package handlers

import (
	"net/http"

	"forumcore/internal/middleware"
	"forumcore/internal/models"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports *services.ReportService
	log     *zap.Logger
}

func NewReportHandler(reports *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

type reportRequest struct {
	Reason      models.ReportReason `json:"reason" binding:"required"`
	Description *string             `json:"description"`
}

// Report POST /reports/:type/:id
func (h *ReportHandler) Report(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.reports.Report(c.Request.Context(), services.ReportInput{
		Ref:         contentRef(c),
		ReporterID:  userID,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
