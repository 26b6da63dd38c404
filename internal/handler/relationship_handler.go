package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type RelationshipHandler struct {
	relationships *service.RelationshipService
}

func NewRelationshipHandler(relationships *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships}
}

func (h *RelationshipHandler) TicketRelationships(c *gin.Context) {
	ticketKey := c.Param("key")
	if ticketKey == "" {
		response.Error(c, errcode.ErrInvalid, "ticket key is required")
		return
	}
	rels, err := h.relationships.GetTicketRelationships(c.Request.Context(), getOrgID(c), ticketKey)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, rels)
}

func (h *RelationshipHandler) DeveloperContributions(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		response.Error(c, errcode.ErrInvalid, "developer email is required")
		return
	}
	contributions, err := h.relationships.GetDeveloperContributions(c.Request.Context(), getOrgID(c), email)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, contributions)
}

func (h *RelationshipHandler) FileHistory(c *gin.Context) {
	filePath := c.Query("path")
	if filePath == "" {
		response.Error(c, errcode.ErrInvalid, "path is required")
		return
	}
	history, err := h.relationships.GetFileHistory(c.Request.Context(), getOrgID(c), filePath)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, history)
}

func (h *RelationshipHandler) RepositoryStats(c *gin.Context) {
	repositoryID := c.Param("id")
	if repositoryID == "" {
		response.Error(c, errcode.ErrInvalid, "repository id is required")
		return
	}
	stats, err := h.relationships.GetRepositoryStats(c.Request.Context(), getOrgID(c), repositoryID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
