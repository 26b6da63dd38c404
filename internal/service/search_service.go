package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/ai"
	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

// Hybrid fusion weights. Dense similarity carries most of the signal, keyword
// overlap is the tiebreaker that rescues exact-term matches.
const (
	semanticWeight = 0.7
	keywordWeight  = 0.3
)

// Logical source names accepted by the search API.
const (
	SourceDocuments    = "documents"
	SourceTickets      = "tickets"
	SourceCommits      = "commits"
	SourceCode         = "code"
	SourcePullRequests = "pull_requests"
)

type SearchResult struct {
	ID      string                 `json:"id"`
	Score   float64                `json:"score"`
	Source  string                 `json:"source"`
	Payload map[string]interface{} `json:"payload"`
}

type SearchService struct {
	index        vectorstore.Index
	embedder     ai.IEmbedder
	crypt        *fieldcrypt.Gateway
	queryCache   *expirable.LRU[string, []float32]
	defaultLimit int
}

func NewSearchService(index vectorstore.Index, embedder ai.IEmbedder, crypt *fieldcrypt.Gateway, cacheSize int, cacheTTL time.Duration, defaultLimit int) *SearchService {
	cache := expirable.NewLRU[string, []float32](cacheSize, nil, cacheTTL)
	return &SearchService{
		index:        index,
		embedder:     embedder,
		crypt:        crypt,
		queryCache:   cache,
		defaultLimit: defaultLimit,
	}
}

func (s *SearchService) DefaultLimit() int {
	return s.defaultLimit
}

func (s *SearchService) resolveCollection(orgID, source string) (string, error) {
	switch source {
	case SourceDocuments:
		return vectorstore.DocCollection(orgID), nil
	case SourceTickets:
		return vectorstore.CollectionTickets, nil
	case SourceCommits:
		return vectorstore.CollectionCommits, nil
	case SourceCode:
		return vectorstore.CollectionCodeFiles, nil
	case SourcePullRequests:
		return vectorstore.CollectionPullRequests, nil
	default:
		return "", appErr.ErrInvalid
	}
}

func (s *SearchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := s.embedder.ModelName() + "|" + query
	if emb, ok := s.queryCache.Get(key); ok {
		return emb, nil
	}
	emb, err := s.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	s.queryCache.Add(key, emb)
	return emb, nil
}

// SemanticSearch ranks by dense cosine similarity only.
func (s *SearchService) SemanticSearch(ctx context.Context, orgID, source, query string, limit int) ([]SearchResult, error) {
	collection, err := s.resolveCollection(orgID, source)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if empty, err := s.collectionEmpty(ctx, collection, orgID); err != nil || empty {
		return nil, err
	}
	queryEmb, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := s.index.SemanticSearch(ctx, collection, orgID, queryEmb, limit)
	if err != nil {
		return nil, err
	}
	return s.finishResults(ctx, orgID, source, hits), nil
}

// KeywordSearch ranks by term overlap between the query and stored keywords.
func (s *SearchService) KeywordSearch(ctx context.Context, orgID, source, query string, limit int) ([]SearchResult, error) {
	collection, err := s.resolveCollection(orgID, source)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if empty, err := s.collectionEmpty(ctx, collection, orgID); err != nil || empty {
		return nil, err
	}
	terms := textscan.ExtractKeywords(query)
	hits, err := s.index.KeywordScroll(ctx, collection, orgID, terms, limit*2)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].Score = keywordScore(terms, hits[i].Keywords)
	}
	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return s.finishResults(ctx, orgID, source, hits), nil
}

// HybridSearch fuses semantic and keyword rankings. Both branches fetch twice
// the requested limit so the union has enough candidates before fusion.
func (s *SearchService) HybridSearch(ctx context.Context, orgID, source, query string, limit int) ([]SearchResult, error) {
	collection, err := s.resolveCollection(orgID, source)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if empty, err := s.collectionEmpty(ctx, collection, orgID); err != nil || empty {
		return nil, err
	}
	queryEmb, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	semantic, err := s.index.SemanticSearch(ctx, collection, orgID, queryEmb, limit*2)
	if err != nil {
		return nil, err
	}
	terms := textscan.ExtractKeywords(query)
	keyword, err := s.index.KeywordScroll(ctx, collection, orgID, terms, limit*2)
	if err != nil {
		return nil, err
	}
	fused := mergeHybrid(semantic, keyword, terms, limit)
	return s.finishResults(ctx, orgID, source, fused), nil
}

func (s *SearchService) collectionEmpty(ctx context.Context, collection, orgID string) (bool, error) {
	exists, err := s.index.VerifyCollections(ctx, []string{collection})
	if err != nil {
		return false, err
	}
	if !exists[collection] {
		return true, nil
	}
	count, err := s.index.Count(ctx, collection, orgID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// finishResults decrypts confidential document fields. A hit that fails to
// decrypt is kept in its ranked position with the unreadable fields blanked
// and decrypt_error set, so one bad field cannot hide an otherwise good match.
func (s *SearchService) finishResults(ctx context.Context, orgID, source string, hits []vectorstore.Hit) []SearchResult {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID))
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		if source == SourceDocuments {
			if err := s.decryptDocPayload(hit.Payload, orgID); err != nil {
				logger.Warn("search hit has undecryptable fields", zap.String("id", hit.ID), zap.Error(err))
				hit.Payload["decrypt_error"] = true
			}
		}
		results = append(results, SearchResult{
			ID:      hit.ID,
			Score:   hit.Score,
			Source:  source,
			Payload: hit.Payload,
		})
	}
	return results
}

// decryptDocPayload decrypts each confidential field in place. Fields that
// fail are blanked; the first error is returned after all fields were tried.
func (s *SearchService) decryptDocPayload(payload map[string]interface{}, orgID string) error {
	var firstErr error
	for _, field := range []string{"page_title", "text"} {
		enc, ok := payload[field].(string)
		if !ok || enc == "" {
			continue
		}
		plain, err := s.crypt.Decrypt(enc, orgID)
		if err != nil {
			payload[field] = ""
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		payload[field] = plain
	}
	return firstErr
}

// mergeHybrid combines both candidate sets into one ranking. Final score is
// semanticWeight*similarity + keywordWeight*overlap; a candidate missing from
// one branch contributes zero for that component.
func mergeHybrid(semantic, keyword []vectorstore.Hit, queryTerms []string, limit int) []vectorstore.Hit {
	merged := make(map[string]*vectorstore.Hit, len(semantic)+len(keyword))
	order := make([]string, 0, len(semantic)+len(keyword))

	for i := range semantic {
		hit := semantic[i]
		hit.Score = semanticWeight * hit.Score
		merged[hit.ID] = &hit
		order = append(order, hit.ID)
	}
	for i := range keyword {
		kw := keyword[i]
		score := keywordWeight * keywordScore(queryTerms, kw.Keywords)
		if existing, ok := merged[kw.ID]; ok {
			existing.Score += score
			continue
		}
		kw.Score = score
		merged[kw.ID] = &kw
		order = append(order, kw.ID)
	}

	out := make([]vectorstore.Hit, 0, len(order))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	sortHits(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// keywordScore is the fraction of query terms present in the document keyword
// set.
func keywordScore(queryTerms, docKeywords []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	docSet := make(map[string]struct{}, len(docKeywords))
	for _, kw := range docKeywords {
		docSet[strings.ToLower(kw)] = struct{}{}
	}
	matched := 0
	for _, term := range queryTerms {
		if _, ok := docSet[strings.ToLower(term)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

func sortHits(hits []vectorstore.Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
