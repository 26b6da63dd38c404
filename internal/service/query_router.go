package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
)

// contextScoreThreshold filters weak hits out of the assembled context.
const contextScoreThreshold = 0.5

const (
	IntentTicket  = "ticket"
	IntentCode    = "code"
	IntentGeneral = "general"
)

type ContextItem struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

type RoutedAnswer struct {
	Intent     string                    `json:"intent"`
	TicketKeys []string                  `json:"ticket_keys,omitempty"`
	Context    []ContextItem             `json:"context"`
	Results    map[string][]SearchResult `json:"results"`
}

// quotaChecker reserves usage units against an organization's monthly quota.
type quotaChecker interface {
	CheckAndIncrementQuota(ctx context.Context, orgID string, n int) error
}

// QueryRouter classifies a free-form question, searches every source
// concurrently and assembles a bounded context in intent priority order.
type QueryRouter struct {
	search          *SearchService
	quota           quotaChecker
	maxContextItems int
	maxItemChars    int
}

func NewQueryRouter(search *SearchService, quota quotaChecker, maxContextItems, maxItemChars int) *QueryRouter {
	return &QueryRouter{
		search:          search,
		quota:           quota,
		maxContextItems: maxContextItems,
		maxItemChars:    maxItemChars,
	}
}

// RouteQuery answers one question. Each question consumes one quota unit, the
// same pool the indexers draw from.
func (r *QueryRouter) RouteQuery(ctx context.Context, orgID, query string) (*RoutedAnswer, error) {
	if err := r.quota.CheckAndIncrementQuota(ctx, orgID, 1); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID))
	intent := textscan.ClassifyQuery(query)

	sources := []string{SourceDocuments, SourceTickets, SourceCode, SourceCommits}
	results := make(map[string][]SearchResult, len(sources))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			hits, err := r.search.HybridSearch(ctx, orgID, source, query, r.search.DefaultLimit())
			if err != nil {
				// One failing source degrades the answer, it does not kill it.
				logger.Warn("source search failed", zap.String("source", source), zap.Error(err))
				return
			}
			mu.Lock()
			results[source] = hits
			mu.Unlock()
		}(source)
	}
	wg.Wait()

	answer := &RoutedAnswer{
		Intent:     intentLabel(intent),
		TicketKeys: textscan.ExtractTicketKeys(query),
		Context:    assembleContext(results, sourcePriority(intent), contextScoreThreshold, r.maxContextItems, r.maxItemChars),
		Results:    results,
	}
	return answer, nil
}

func intentLabel(intent textscan.Intent) string {
	switch {
	case intent.TicketIntent:
		return IntentTicket
	case intent.CodeIntent:
		return IntentCode
	default:
		return IntentGeneral
	}
}

func sourcePriority(intent textscan.Intent) []string {
	switch {
	case intent.TicketIntent:
		return []string{SourceTickets, SourceDocuments, SourceCommits, SourceCode}
	case intent.CodeIntent:
		return []string{SourceCode, SourceCommits, SourceDocuments, SourceTickets}
	default:
		return []string{SourceDocuments, SourceTickets, SourceCode, SourceCommits}
	}
}

// assembleContext walks sources in priority order and keeps hits until
// maxItems is reached. The lead source is always included so the best-matching
// source cannot be filtered down to an empty context; the threshold only gates
// the lower-priority sources.
func assembleContext(results map[string][]SearchResult, priority []string, threshold float64, maxItems, maxChars int) []ContextItem {
	var items []ContextItem
	for idx, source := range priority {
		for _, hit := range results[source] {
			if idx > 0 && hit.Score < threshold {
				continue
			}
			text := renderSnippet(hit)
			if text == "" {
				continue
			}
			items = append(items, ContextItem{
				Source: source,
				Score:  hit.Score,
				Text:   truncate(text, maxChars),
			})
			if len(items) >= maxItems {
				return items
			}
		}
	}
	return items
}

func renderSnippet(r SearchResult) string {
	get := func(key string) string {
		v, _ := r.Payload[key].(string)
		return v
	}
	switch get("type") {
	case "document":
		title := get("page_title")
		text := get("text")
		if title == "" {
			return text
		}
		return title + "\n" + text
	case "ticket":
		return strings.TrimSpace(fmt.Sprintf("%s: %s\n%s", get("ticket_key"), get("summary"), get("description")))
	case "commit":
		return strings.TrimSpace(fmt.Sprintf("%s %s", get("short_sha"), get("message")))
	case "pull_request":
		return strings.TrimSpace(get("title") + "\n" + get("description"))
	case "code_file":
		return get("file_path")
	default:
		return ""
	}
}
