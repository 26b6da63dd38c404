package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type GapHandler struct {
	gaps *service.GapService
}

func NewGapHandler(gaps *service.GapService) *GapHandler {
	return &GapHandler{gaps: gaps}
}

func (h *GapHandler) Comprehensive(c *gin.Context) {
	report, err := h.gaps.ComprehensiveGaps(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *GapHandler) Orphaned(c *gin.Context) {
	report, err := h.gaps.OrphanedTickets(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *GapHandler) Undocumented(c *gin.Context) {
	report, err := h.gaps.UndocumentedCommits(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *GapHandler) MissingDecisions(c *gin.Context) {
	tickets, err := h.gaps.MissingDecisions(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"tickets": tickets})
}

func (h *GapHandler) Stale(c *gin.Context) {
	tickets, err := h.gaps.StaleTickets(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"tickets": tickets})
}
