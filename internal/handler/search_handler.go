package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
	router *service.QueryRouter
}

func NewSearchHandler(search *service.SearchService, router *service.QueryRouter) *SearchHandler {
	return &SearchHandler{search: search, router: router}
}

type searchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source"`
	Mode   string `json:"mode"`
	Limit  int    `json:"limit"`
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Source == "" {
		req.Source = service.SourceDocuments
	}
	orgID := getOrgID(c)
	var results []service.SearchResult
	var err error
	switch req.Mode {
	case "semantic":
		results, err = h.search.SemanticSearch(c.Request.Context(), orgID, req.Source, req.Query, req.Limit)
	case "keyword":
		results, err = h.search.KeywordSearch(c.Request.Context(), orgID, req.Source, req.Query, req.Limit)
	case "", "hybrid":
		results, err = h.search.HybridSearch(c.Request.Context(), orgID, req.Source, req.Query, req.Limit)
	default:
		response.Error(c, errcode.ErrInvalid, "unknown search mode")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"results": results})
}

func (h *SearchHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	answer, err := h.router.RouteQuery(c.Request.Context(), getOrgID(c), req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, answer)
}
