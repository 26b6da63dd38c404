package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name  string
		query []string
		doc   []string
		want  float64
	}{
		{"full overlap", []string{"auth", "token"}, []string{"auth", "token", "extra"}, 1.0},
		{"half overlap", []string{"auth", "token"}, []string{"token"}, 0.5},
		{"no overlap", []string{"auth"}, []string{"billing"}, 0},
		{"empty query", nil, []string{"anything"}, 0},
		{"case insensitive", []string{"Auth"}, []string{"auth"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordScore(tt.query, tt.doc); got != tt.want {
				t.Fatalf("keywordScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeHybrid(t *testing.T) {
	semantic := []vectorstore.Hit{
		{ID: "a", Score: 0.9, Keywords: []string{"auth", "login"}},
		{ID: "b", Score: 0.6, Keywords: []string{"billing"}},
	}
	keyword := []vectorstore.Hit{
		{ID: "b", Keywords: []string{"billing", "auth"}},
		{ID: "c", Keywords: []string{"auth", "login"}},
	}
	terms := []string{"auth", "login"}

	out := mergeHybrid(semantic, keyword, terms, 10)
	require.Len(t, out, 3)

	scores := map[string]float64{}
	for _, hit := range out {
		scores[hit.ID] = hit.Score
	}
	// a: only semantic, 0.7*0.9
	require.InDelta(t, 0.63, scores["a"], 1e-9)
	// b: both branches, 0.7*0.6 + 0.3*(1/2)
	require.InDelta(t, 0.57, scores["b"], 1e-9)
	// c: only keyword, 0.3*(2/2)
	require.InDelta(t, 0.30, scores["c"], 1e-9)

	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "b", out[1].ID)
	require.Equal(t, "c", out[2].ID)
}

func TestMergeHybridLimit(t *testing.T) {
	semantic := []vectorstore.Hit{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.8},
		{ID: "c", Score: 0.7},
	}
	out := mergeHybrid(semantic, nil, nil, 2)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "b", out[1].ID)
}

type fakeIndex struct {
	counts   map[string]int64
	semantic map[string][]vectorstore.Hit
	keyword  map[string][]vectorstore.Hit
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, collection string) error { return nil }

func (f *fakeIndex) VerifyCollections(ctx context.Context, collections []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, c := range collections {
		out[c] = true
	}
	return out, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, collection, orgID string, points []vectorstore.Point) error {
	return nil
}

func (f *fakeIndex) Count(ctx context.Context, collection, orgID string) (int64, error) {
	return f.counts[collection], nil
}

func (f *fakeIndex) SemanticSearch(ctx context.Context, collection, orgID string, query []float32, limit int) ([]vectorstore.Hit, error) {
	return f.semantic[collection], nil
}

func (f *fakeIndex) KeywordScroll(ctx context.Context, collection, orgID string, terms []string, limit int) ([]vectorstore.Hit, error) {
	return f.keyword[collection], nil
}

func (f *fakeIndex) DeleteOrganization(ctx context.Context, orgID string) error { return nil }

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func newSearchServiceForTest(t *testing.T, idx vectorstore.Index) *SearchService {
	t.Helper()
	crypt, err := fieldcrypt.New(context.Background(), "search-test-master")
	require.NoError(t, err)
	return NewSearchService(idx, &fakeEmbedder{}, crypt, 16, time.Minute, 10)
}

func TestHybridSearchEmptyCollection(t *testing.T) {
	idx := &fakeIndex{counts: map[string]int64{}}
	svc := newSearchServiceForTest(t, idx)

	results, err := svc.HybridSearch(context.Background(), "org-a", SourceTickets, "auth bug", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestHybridSearchDecryptsDocuments(t *testing.T) {
	crypt, err := fieldcrypt.New(context.Background(), "search-test-master")
	require.NoError(t, err)
	encTitle, err := crypt.Encrypt("Auth Runbook", "org-a")
	require.NoError(t, err)
	encText, err := crypt.Encrypt("rotate signing keys monthly", "org-a")
	require.NoError(t, err)

	docCollection := vectorstore.DocCollection("org-a")
	idx := &fakeIndex{
		counts: map[string]int64{docCollection: 1},
		semantic: map[string][]vectorstore.Hit{
			docCollection: {{
				ID:    "doc-1",
				Score: 0.8,
				Payload: map[string]interface{}{
					"type":       "document",
					"page_title": encTitle,
					"text":       encText,
				},
			}},
		},
	}
	svc := NewSearchService(idx, &fakeEmbedder{}, crypt, 16, time.Minute, 10)

	results, err := svc.HybridSearch(context.Background(), "org-a", SourceDocuments, "auth keys", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Auth Runbook", results[0].Payload["page_title"])
	require.Equal(t, "rotate signing keys monthly", results[0].Payload["text"])
}

func TestHybridSearchKeepsUndecryptableHits(t *testing.T) {
	crypt, err := fieldcrypt.New(context.Background(), "search-test-master")
	require.NoError(t, err)
	encTitle, err := crypt.Encrypt("Auth Runbook", "org-a")
	require.NoError(t, err)

	docCollection := vectorstore.DocCollection("org-a")
	idx := &fakeIndex{
		counts: map[string]int64{docCollection: 1},
		semantic: map[string][]vectorstore.Hit{
			docCollection: {{
				ID:    "doc-1",
				Score: 0.8,
				Payload: map[string]interface{}{
					"type":       "document",
					"page_title": encTitle,
					"text":       "this is not valid ciphertext",
				},
			}},
		},
	}
	svc := NewSearchService(idx, &fakeEmbedder{}, crypt, 16, time.Minute, 10)

	results, err := svc.HybridSearch(context.Background(), "org-a", SourceDocuments, "auth", 5)
	require.NoError(t, err)
	// The bad field is blanked and flagged; the hit itself survives with the
	// fields that did decrypt.
	require.Len(t, results, 1)
	require.Equal(t, "doc-1", results[0].ID)
	require.Equal(t, true, results[0].Payload["decrypt_error"])
	require.Equal(t, "", results[0].Payload["text"])
	require.Equal(t, "Auth Runbook", results[0].Payload["page_title"])
}

func TestSortHitsTieBreak(t *testing.T) {
	hits := []vectorstore.Hit{
		{ID: "c", Score: 0.5},
		{ID: "a", Score: 0.5},
		{ID: "b", Score: 0.9},
	}
	sortHits(hits)
	require.Equal(t, "b", hits[0].ID)
	// Equal scores order by ID so rankings are reproducible across runs.
	require.Equal(t, "a", hits[1].ID)
	require.Equal(t, "c", hits[2].ID)
}

func TestResolveCollectionRejectsUnknownSource(t *testing.T) {
	svc := newSearchServiceForTest(t, &fakeIndex{counts: map[string]int64{}})
	_, err := svc.SemanticSearch(context.Background(), "org-a", "emails", "query", 5)
	require.Error(t, err)
}
