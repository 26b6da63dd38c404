package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Vibhav-Deo/documentation-assistant/internal/middleware"
)

type RouterDeps struct {
	Orgs          *OrgHandler
	Index         *IndexHandler
	Search        *SearchHandler
	Relationships *RelationshipHandler
	Gaps          *GapHandler
	Impact        *ImpactHandler
	JWTSecret     []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/organization", deps.Orgs.Create)
	authGroup.GET("/organization", deps.Orgs.Get)
	authGroup.DELETE("/organization", deps.Orgs.Purge)
	authGroup.GET("/organization/collections", deps.Orgs.Collections)

	authGroup.POST("/repositories", deps.Orgs.RegisterRepository)
	authGroup.GET("/repositories", deps.Orgs.ListRepositories)

	authGroup.POST("/decisions", deps.Orgs.RecordDecision)
	authGroup.GET("/decisions", deps.Orgs.ListDecisions)

	authGroup.POST("/index/tickets", deps.Index.Tickets)
	authGroup.POST("/index/commits", deps.Index.Commits)
	authGroup.POST("/index/pull-requests", deps.Index.PullRequests)
	authGroup.POST("/index/code-files", deps.Index.CodeFiles)
	authGroup.POST("/index/wiki-pages", deps.Index.WikiPages)

	authGroup.POST("/search", deps.Search.Search)
	authGroup.POST("/query", deps.Search.Query)

	authGroup.GET("/tickets/:key/relationships", deps.Relationships.TicketRelationships)
	authGroup.GET("/developers/:email/contributions", deps.Relationships.DeveloperContributions)
	authGroup.GET("/files/history", deps.Relationships.FileHistory)
	authGroup.GET("/repositories/:id/stats", deps.Relationships.RepositoryStats)

	authGroup.GET("/gaps", deps.Gaps.Comprehensive)
	authGroup.GET("/gaps/orphaned", deps.Gaps.Orphaned)
	authGroup.GET("/gaps/undocumented", deps.Gaps.Undocumented)
	authGroup.GET("/gaps/missing-decisions", deps.Gaps.MissingDecisions)
	authGroup.GET("/gaps/stale", deps.Gaps.Stale)

	authGroup.GET("/impact/file", deps.Impact.File)
	authGroup.GET("/impact/tickets/:key", deps.Impact.Ticket)
	authGroup.GET("/impact/commits/:sha", deps.Impact.Commit)
	authGroup.POST("/impact/reviewers", deps.Impact.Reviewers)
}
