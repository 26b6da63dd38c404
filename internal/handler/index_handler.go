package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type IndexHandler struct {
	indexer   *service.IndexerService
	documents *service.DocumentService
}

func NewIndexHandler(indexer *service.IndexerService, documents *service.DocumentService) *IndexHandler {
	return &IndexHandler{indexer: indexer, documents: documents}
}

type indexTicketsRequest struct {
	Tickets []model.Ticket `json:"tickets"`
}

type indexCommitsRequest struct {
	RepositoryID string         `json:"repository_id"`
	Commits      []model.Commit `json:"commits"`
}

type indexPullRequestsRequest struct {
	RepositoryID string              `json:"repository_id"`
	PullRequests []model.PullRequest `json:"pull_requests"`
}

type indexCodeFilesRequest struct {
	RepositoryID string           `json:"repository_id"`
	Files        []model.CodeFile `json:"files"`
}

type indexWikiPagesRequest struct {
	Pages []service.WikiPage `json:"pages"`
}

func (h *IndexHandler) Tickets(c *gin.Context) {
	var req indexTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	indexed, err := h.indexer.IndexTickets(c.Request.Context(), getOrgID(c), req.Tickets)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"indexed": indexed})
}

func (h *IndexHandler) Commits(c *gin.Context) {
	var req indexCommitsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RepositoryID == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	indexed, err := h.indexer.IndexCommits(c.Request.Context(), getOrgID(c), req.RepositoryID, req.Commits)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"indexed": indexed})
}

func (h *IndexHandler) PullRequests(c *gin.Context) {
	var req indexPullRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RepositoryID == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	indexed, err := h.indexer.IndexPullRequests(c.Request.Context(), getOrgID(c), req.RepositoryID, req.PullRequests)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"indexed": indexed})
}

func (h *IndexHandler) CodeFiles(c *gin.Context) {
	var req indexCodeFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RepositoryID == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	indexed, err := h.indexer.IndexCodeFiles(c.Request.Context(), getOrgID(c), req.RepositoryID, req.Files)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"indexed": indexed})
}

func (h *IndexHandler) WikiPages(c *gin.Context) {
	var req indexWikiPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	orgID := getOrgID(c)
	total := 0
	for _, page := range req.Pages {
		chunks, err := h.documents.IndexWikiPage(c.Request.Context(), orgID, page)
		if err != nil {
			handleError(c, err)
			return
		}
		total += chunks
	}
	response.Success(c, gin.H{"indexed_chunks": total})
}
