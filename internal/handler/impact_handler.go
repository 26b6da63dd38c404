package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type ImpactHandler struct {
	impact *service.ImpactService
}

func NewImpactHandler(impact *service.ImpactService) *ImpactHandler {
	return &ImpactHandler{impact: impact}
}

func (h *ImpactHandler) File(c *gin.Context) {
	filePath := c.Query("path")
	if filePath == "" {
		response.Error(c, errcode.ErrInvalid, "path is required")
		return
	}
	report, err := h.impact.FileImpact(c.Request.Context(), getOrgID(c), filePath)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *ImpactHandler) Ticket(c *gin.Context) {
	ticketKey := c.Param("key")
	if ticketKey == "" {
		response.Error(c, errcode.ErrInvalid, "ticket key is required")
		return
	}
	report, err := h.impact.TicketImpact(c.Request.Context(), getOrgID(c), ticketKey)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *ImpactHandler) Commit(c *gin.Context) {
	sha := c.Param("sha")
	if sha == "" {
		response.Error(c, errcode.ErrInvalid, "sha is required")
		return
	}
	report, err := h.impact.CommitImpact(c.Request.Context(), getOrgID(c), sha)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

type suggestReviewersRequest struct {
	Files []string `json:"files"`
	Limit int      `json:"limit"`
}

func (h *ImpactHandler) Reviewers(c *gin.Context) {
	var req suggestReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Files) == 0 {
		response.Error(c, errcode.ErrInvalid, "files are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	reviewers, err := h.impact.SuggestReviewers(c.Request.Context(), getOrgID(c), req.Files, req.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"reviewers": reviewers})
}
