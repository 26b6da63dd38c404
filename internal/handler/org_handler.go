package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

type OrgHandler struct {
	orgs *service.OrgService
}

func NewOrgHandler(orgs *service.OrgService) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

type createOrgRequest struct {
	Name         string `json:"name"`
	Plan         string `json:"plan"`
	MonthlyQuota int    `json:"monthly_quota"`
}

func (h *OrgHandler) Create(c *gin.Context) {
	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		response.Error(c, errcode.ErrInvalid, "name is required")
		return
	}
	org := &model.Organization{
		ID:           getOrgID(c),
		Name:         req.Name,
		Plan:         req.Plan,
		MonthlyQuota: req.MonthlyQuota,
	}
	if err := h.orgs.CreateOrganization(c.Request.Context(), org); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, org)
}

func (h *OrgHandler) Get(c *gin.Context) {
	org, err := h.orgs.GetOrganization(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, org)
}

func (h *OrgHandler) Purge(c *gin.Context) {
	if err := h.orgs.PurgeOrganization(c.Request.Context(), getOrgID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"purged": true})
}

type registerRepositoryRequest struct {
	RepoName string `json:"repo_name"`
	RepoURL  string `json:"repo_url"`
	Provider string `json:"provider"`
	Branch   string `json:"branch"`
}

func (h *OrgHandler) RegisterRepository(c *gin.Context) {
	var req registerRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RepoName == "" {
		response.Error(c, errcode.ErrInvalid, "repo_name is required")
		return
	}
	item := &model.Repository{
		RepoName: req.RepoName,
		RepoURL:  req.RepoURL,
		Provider: req.Provider,
		Branch:   req.Branch,
	}
	if err := h.orgs.RegisterRepository(c.Request.Context(), getOrgID(c), item); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *OrgHandler) ListRepositories(c *gin.Context) {
	items, err := h.orgs.ListRepositories(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"repositories": items})
}

type recordDecisionRequest struct {
	TicketKey        string `json:"ticket_key"`
	DecisionSummary  string `json:"decision_summary"`
	ProblemStatement string `json:"problem_statement"`
	ChosenApproach   string `json:"chosen_approach"`
}

func (h *OrgHandler) RecordDecision(c *gin.Context) {
	var req recordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TicketKey == "" || req.DecisionSummary == "" {
		response.Error(c, errcode.ErrInvalid, "ticket_key and decision_summary are required")
		return
	}
	d := &model.Decision{
		TicketKey:        req.TicketKey,
		DecisionSummary:  req.DecisionSummary,
		ProblemStatement: req.ProblemStatement,
		ChosenApproach:   req.ChosenApproach,
	}
	if err := h.orgs.RecordDecision(c.Request.Context(), getOrgID(c), d); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, d)
}

func (h *OrgHandler) ListDecisions(c *gin.Context) {
	items, err := h.orgs.ListDecisions(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"decisions": items})
}

func (h *OrgHandler) Collections(c *gin.Context) {
	status, err := h.orgs.CollectionsStatus(c.Request.Context(), getOrgID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"collections": status})
}
