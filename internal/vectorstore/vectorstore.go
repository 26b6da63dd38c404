package vectorstore

import (
	"context"
	"strings"
)

// Collection names for the shared operational entities. Document chunks live in
// per-organization collections built by DocCollection.
const (
	CollectionTickets      = "jira_tickets"
	CollectionCommits      = "commits"
	CollectionCodeFiles    = "code_files"
	CollectionPullRequests = "pull_requests"
)

func SharedCollections() []string {
	return []string{CollectionTickets, CollectionCommits, CollectionCodeFiles, CollectionPullRequests}
}

// DocCollection returns the per-organization document chunk collection name.
func DocCollection(orgID string) string {
	return "confluence_docs_" + sanitizeIdent(orgID)
}

func sanitizeIdent(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

type Point struct {
	ID        string
	Embedding []float32
	Keywords  []string
	Payload   map[string]interface{}
}

type Hit struct {
	ID       string
	Score    float64
	Keywords []string
	Payload  map[string]interface{}
}

// Index is the vector collection abstraction. Every read and write is scoped to
// a single organization; implementations must never return points belonging to
// another org.
type Index interface {
	EnsureCollection(ctx context.Context, collection string) error
	VerifyCollections(ctx context.Context, collections []string) (map[string]bool, error)
	Upsert(ctx context.Context, collection string, orgID string, points []Point) error
	Count(ctx context.Context, collection string, orgID string) (int64, error)
	SemanticSearch(ctx context.Context, collection string, orgID string, query []float32, limit int) ([]Hit, error)
	KeywordScroll(ctx context.Context, collection string, orgID string, terms []string, limit int) ([]Hit, error)
	DeleteOrganization(ctx context.Context, orgID string) error
}
