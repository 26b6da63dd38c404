package service

import (
	"testing"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
)

func TestSetDifference(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want []string
	}{
		{"plain difference", []string{"AUTH-1", "AUTH-2", "DB-1"}, []string{"AUTH-2"}, []string{"AUTH-1", "DB-1"}},
		{"nothing referenced", []string{"AUTH-1"}, nil, []string{"AUTH-1"}},
		{"everything referenced", []string{"AUTH-1"}, []string{"AUTH-1"}, nil},
		{"duplicates collapsed", []string{"AUTH-1", "AUTH-1"}, nil, []string{"AUTH-1"}},
		{"result sorted", []string{"Z-1", "A-1"}, nil, []string{"A-1", "Z-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := setDifference(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("setDifference() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("setDifference() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestOrphanedKeys(t *testing.T) {
	tests := []struct {
		name       string
		tickets    []string
		commitRefs []string
		prRefs     []string
		want       []string
	}{
		{"commit reference clears", []string{"PROJ-1", "PROJ-2"}, []string{"PROJ-1"}, nil, []string{"PROJ-2"}},
		{"pr-only reference clears", []string{"PROJ-7"}, nil, []string{"PROJ-7"}, nil},
		{"either reference clears", []string{"PROJ-1", "PROJ-2", "PROJ-3"}, []string{"PROJ-1"}, []string{"PROJ-2"}, []string{"PROJ-3"}},
		{"no references", []string{"PROJ-9"}, nil, nil, []string{"PROJ-9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orphanedKeys(tt.tickets, tt.commitRefs, tt.prRefs)
			if len(got) != len(tt.want) {
				t.Fatalf("orphanedKeys() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("orphanedKeys() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGroupTickets(t *testing.T) {
	tickets := []model.Ticket{
		{Status: "Open", Priority: "High", Assignee: "alice"},
		{Status: "Open", Priority: "Low", Assignee: "bob"},
		{Status: "", Priority: "", Assignee: ""},
	}
	byStatus, byPriority, byAssignee := groupTickets(tickets)
	if byStatus["Open"] != 2 || byStatus["Unknown"] != 1 {
		t.Fatalf("byStatus = %v", byStatus)
	}
	if byPriority["High"] != 1 || byPriority["Low"] != 1 || byPriority["Unknown"] != 1 {
		t.Fatalf("byPriority = %v", byPriority)
	}
	if byAssignee["alice"] != 1 || byAssignee["Unassigned"] != 1 {
		t.Fatalf("byAssignee = %v", byAssignee)
	}
}

func TestRollupCommits(t *testing.T) {
	commits := []model.Commit{
		{AuthorName: "alice", RepositoryID: "repo-1", Additions: 10, Deletions: 5},
		{AuthorName: "alice", RepositoryID: "repo-2", Additions: 3, Deletions: 0},
		{AuthorName: "", RepositoryID: "repo-1", Additions: 1, Deletions: 1},
	}
	byAuthor, byRepo, total := rollupCommits(commits)
	if byAuthor["alice"] != 2 || byAuthor["Unknown"] != 1 {
		t.Fatalf("byAuthor = %v", byAuthor)
	}
	if byRepo["repo-1"] != 2 || byRepo["repo-2"] != 1 {
		t.Fatalf("byRepo = %v", byRepo)
	}
	if total != 20 {
		t.Fatalf("total changes = %d, want 20", total)
	}
}
