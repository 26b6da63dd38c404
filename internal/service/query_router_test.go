package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
)

type fakeQuota struct {
	err   error
	calls int
	n     int
}

func (f *fakeQuota) CheckAndIncrementQuota(ctx context.Context, orgID string, n int) error {
	f.calls++
	f.n = n
	return f.err
}

func TestRouteQueryConsumesQuota(t *testing.T) {
	quota := &fakeQuota{}
	router := NewQueryRouter(newSearchServiceForTest(t, &fakeIndex{}), quota, 5, 1500)

	answer, err := router.RouteQuery(context.Background(), "org-a", "how does login work")
	require.NoError(t, err)
	require.NotNil(t, answer)
	require.Equal(t, 1, quota.calls)
	require.Equal(t, 1, quota.n)
}

func TestRouteQueryQuotaExceeded(t *testing.T) {
	quota := &fakeQuota{err: appErr.ErrQuotaExceeded}
	router := NewQueryRouter(newSearchServiceForTest(t, &fakeIndex{}), quota, 5, 1500)

	_, err := router.RouteQuery(context.Background(), "org-a", "how does login work")
	require.ErrorIs(t, err, appErr.ErrQuotaExceeded)
}

func TestSourcePriority(t *testing.T) {
	tests := []struct {
		name   string
		intent textscan.Intent
		first  string
	}{
		{"ticket intent leads with tickets", textscan.Intent{TicketIntent: true}, SourceTickets},
		{"code intent leads with code", textscan.Intent{CodeIntent: true}, SourceCode},
		{"general leads with documents", textscan.Intent{}, SourceDocuments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sourcePriority(tt.intent)
			require.Len(t, order, 4)
			require.Equal(t, tt.first, order[0])
		})
	}
}

func TestIntentLabel(t *testing.T) {
	require.Equal(t, IntentTicket, intentLabel(textscan.Intent{TicketIntent: true, CodeIntent: true}))
	require.Equal(t, IntentCode, intentLabel(textscan.Intent{CodeIntent: true}))
	require.Equal(t, IntentGeneral, intentLabel(textscan.Intent{}))
}

func TestAssembleContext(t *testing.T) {
	results := map[string][]SearchResult{
		SourceTickets: {
			{Score: 0.9, Payload: map[string]interface{}{"type": "ticket", "ticket_key": "AUTH-101", "summary": "Throttle logins"}},
			{Score: 0.3, Payload: map[string]interface{}{"type": "ticket", "ticket_key": "AUTH-102", "summary": "Weak but lead source"}},
		},
		SourceDocuments: {
			{Score: 0.8, Payload: map[string]interface{}{"type": "document", "page_title": "Runbook", "text": "rotate keys"}},
			{Score: 0.3, Payload: map[string]interface{}{"type": "document", "page_title": "Stale page", "text": "below threshold"}},
		},
	}
	priority := []string{SourceTickets, SourceDocuments, SourceCommits, SourceCode}

	items := assembleContext(results, priority, 0.5, 5, 1500)
	// Lead-source hits are kept even below the threshold; the weak document
	// from a lower-priority source is dropped.
	require.Len(t, items, 3)
	require.Equal(t, SourceTickets, items[0].Source)
	require.Contains(t, items[0].Text, "AUTH-101")
	require.Contains(t, items[1].Text, "AUTH-102")
	require.Equal(t, SourceDocuments, items[2].Source)
	require.Contains(t, items[2].Text, "Runbook")
}

func TestAssembleContextKeepsWeakLeadSource(t *testing.T) {
	results := map[string][]SearchResult{
		SourceTickets: {
			{Score: 0.3, Payload: map[string]interface{}{"type": "ticket", "ticket_key": "AUTH-102", "summary": "Only match anywhere"}},
		},
	}
	items := assembleContext(results, []string{SourceTickets, SourceDocuments}, 0.5, 5, 1500)
	require.Len(t, items, 1)
	require.Contains(t, items[0].Text, "AUTH-102")
}

func TestAssembleContextCaps(t *testing.T) {
	results := map[string][]SearchResult{
		SourceDocuments: {
			{Score: 0.9, Payload: map[string]interface{}{"type": "document", "text": "one"}},
			{Score: 0.9, Payload: map[string]interface{}{"type": "document", "text": "two"}},
			{Score: 0.9, Payload: map[string]interface{}{"type": "document", "text": "three"}},
		},
	}
	items := assembleContext(results, []string{SourceDocuments}, 0.5, 2, 1500)
	require.Len(t, items, 2)
}

func TestAssembleContextTruncatesItems(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	results := map[string][]SearchResult{
		SourceDocuments: {
			{Score: 0.9, Payload: map[string]interface{}{"type": "document", "text": string(long)}},
		},
	}
	items := assembleContext(results, []string{SourceDocuments}, 0.5, 5, 1500)
	require.Len(t, items, 1)
	require.Len(t, items[0].Text, 1500)
}

func TestRenderSnippet(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{
			"commit",
			map[string]interface{}{"type": "commit", "short_sha": "abcdef1", "message": "fix race"},
			"abcdef1 fix race",
		},
		{
			"code file",
			map[string]interface{}{"type": "code_file", "file_path": "auth/limiter.go"},
			"auth/limiter.go",
		},
		{
			"unknown type",
			map[string]interface{}{"type": "mystery"},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, renderSnippet(SearchResult{Payload: tt.payload}))
		})
	}
}
