package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCollectFiles(t *testing.T) {
	commits := []model.Commit{
		{FilesChanged: []string{"b.go", "a.go"}},
		{FilesChanged: []string{"a.go", "c.go"}},
	}
	files := collectFiles(commits)
	want := []string{"a.go", "b.go", "c.go"}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v, want %v", files, want)
		}
	}
}

func TestCollectDevelopers(t *testing.T) {
	// Two different people can share a display name; the email keeps them
	// apart.
	commits := []model.Commit{
		{AuthorName: "Alex Kim", AuthorEmail: "alex@corp.com", Additions: 10, Deletions: 2, CommitDate: ts("2026-01-05T00:00:00Z")},
		{AuthorName: "Alex Kim", AuthorEmail: "akim@contractor.io", Additions: 3, Deletions: 1, CommitDate: ts("2026-01-08T00:00:00Z")},
		{AuthorName: "Alex Kim", AuthorEmail: "alex@corp.com", Additions: 5, Deletions: 0, CommitDate: ts("2026-01-10T00:00:00Z")},
		{AuthorName: "anonymous", AuthorEmail: ""},
	}
	devs := collectDevelopers(commits)
	if len(devs) != 2 {
		t.Fatalf("expected 2 developers, got %d", len(devs))
	}
	top := devs[0]
	if top.Email != "alex@corp.com" || top.Commits != 2 {
		t.Fatalf("top developer = %+v, want alex@corp.com x2", top)
	}
	if top.LinesAdded != 15 || top.LinesDeleted != 2 {
		t.Fatalf("line totals = %+v", top)
	}
	if top.LastCommitDate == nil || !top.LastCommitDate.Equal(*ts("2026-01-10T00:00:00Z")) {
		t.Fatalf("last commit date = %v", top.LastCommitDate)
	}
	if devs[1].Email != "akim@contractor.io" || devs[1].Commits != 1 {
		t.Fatalf("second developer = %+v, want akim@contractor.io x1", devs[1])
	}
}

func TestCollectFileChanges(t *testing.T) {
	commits := []model.Commit{
		{FilesChanged: []string{"auth/login.go", "auth/token.go"}, CommitDate: ts("2026-01-03T00:00:00Z")},
		{FilesChanged: []string{"auth/login.go"}, CommitDate: ts("2026-01-09T00:00:00Z")},
		{FilesChanged: []string{"docs/auth.md"}},
	}
	files := collectFileChanges(commits)
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if files[0].FilePath != "auth/login.go" || files[0].Modifications != 2 {
		t.Fatalf("top file = %+v", files[0])
	}
	if files[0].LastModified == nil || !files[0].LastModified.Equal(*ts("2026-01-09T00:00:00Z")) {
		t.Fatalf("last modified = %v", files[0].LastModified)
	}
	// Ties sort by path; the undated file carries a nil timestamp.
	if files[1].FilePath != "auth/token.go" || files[2].FilePath != "docs/auth.md" {
		t.Fatalf("tail files = %+v", files[1:])
	}
	if files[2].LastModified != nil {
		t.Fatalf("undated file should have nil last modified, got %v", files[2].LastModified)
	}
}

func TestDocumentsForTicket(t *testing.T) {
	crypt, err := fieldcrypt.New(context.Background(), "relationship-test-master")
	require.NoError(t, err)
	encTitle, err := crypt.Encrypt("Auth Design", "org-a")
	require.NoError(t, err)

	collection := vectorstore.DocCollection("org-a")
	idx := &fakeIndex{
		keyword: map[string][]vectorstore.Hit{
			collection: {
				{ID: "1", Payload: map[string]interface{}{"page_id": "p1", "page_title": encTitle, "space": "ENG"}},
				{ID: "2", Payload: map[string]interface{}{"page_id": "p1", "page_title": encTitle, "space": "ENG"}},
				{ID: "3", Payload: map[string]interface{}{"page_id": "p2", "page_title": "not-a-ciphertext", "space": "ENG"}},
				{ID: "4", Payload: map[string]interface{}{"space": "ENG"}},
			},
		},
	}
	svc := &RelationshipService{index: idx, crypt: crypt}
	docs, err := svc.documentsForTicket(context.Background(), "org-a", "AUTH-101")
	require.NoError(t, err)
	// p1 deduped, p2 dropped on decrypt failure, missing page_id skipped.
	require.Len(t, docs, 1)
	require.Equal(t, "p1", docs[0].PageID)
	require.Equal(t, "Auth Design", docs[0].Title)
	require.Equal(t, "ENG", docs[0].Space)
}

func TestContributorStats(t *testing.T) {
	commits := []model.Commit{
		{AuthorName: "Sam", AuthorEmail: "sam@x.dev", Additions: 10, Deletions: 2},
		{AuthorName: "Sam", AuthorEmail: "sam@x.dev", Additions: 5, Deletions: 1},
		{AuthorName: "Alex", AuthorEmail: "alex@x.dev", Additions: 1, Deletions: 0},
		{AuthorName: "", AuthorEmail: ""},
	}
	stats := contributorStats(commits)
	if len(stats) != 2 {
		t.Fatalf("expected 2 contributors, got %d", len(stats))
	}
	if stats[0].AuthorEmail != "sam@x.dev" || stats[0].CommitCount != 2 {
		t.Fatalf("top contributor = %+v", stats[0])
	}
	if stats[0].LinesAdded != 15 || stats[0].LinesDeleted != 3 {
		t.Fatalf("line totals = %+v", stats[0])
	}
	if stats[1].AuthorEmail != "alex@x.dev" || stats[1].CommitCount != 1 {
		t.Fatalf("second contributor = %+v", stats[1])
	}
}

func TestUniqueTicketKeys(t *testing.T) {
	commits := []model.Commit{
		{TicketReferences: []string{"AUTH-2", "AUTH-1"}},
		{TicketReferences: []string{"AUTH-1"}},
	}
	pulls := []model.PullRequest{
		{TicketReferences: []string{"DB-9", ""}},
	}
	keys := uniqueTicketKeys(commits, pulls)
	want := []string{"AUTH-1", "AUTH-2", "DB-9"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestBuildTimelineOrder(t *testing.T) {
	ticket := &model.Ticket{
		TicketKey:    "AUTH-101",
		Summary:      "Add login throttling",
		Status:       "Done",
		CreatedDate:  ts("2026-01-01T00:00:00Z"),
		ResolvedDate: ts("2026-01-20T00:00:00Z"),
	}
	commits := []model.Commit{
		{SHA: "abcdef1234", Message: "throttle failed logins", CommitDate: ts("2026-01-10T00:00:00Z")},
		{SHA: "fedcba4321", Message: "old work without a date"},
	}
	pulls := []model.PullRequest{
		{Title: "Login throttling", State: "merged", CreatedAtPR: ts("2026-01-12T00:00:00Z"), MergedAt: ts("2026-01-15T00:00:00Z")},
	}

	events := buildTimeline(ticket, commits, pulls)
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	// The undated commit sorts first, then strict chronological order.
	if events[0].At != nil {
		t.Fatalf("first event should be undated, got %+v", events[0])
	}
	wantKinds := []string{"commit", "ticket_created", "commit", "pr_opened", "pr_merged", "ticket_resolved"}
	for i, kind := range wantKinds {
		if events[i].Kind != kind {
			t.Fatalf("event %d kind = %s, want %s (events: %+v)", i, events[i].Kind, kind, events)
		}
	}
}
