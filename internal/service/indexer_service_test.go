package service

import (
	"strings"
	"testing"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
)

func TestTicketSearchText(t *testing.T) {
	ticket := &model.Ticket{
		TicketKey:   "AUTH-101",
		Summary:     "Add login throttling",
		Description: "Limit failed attempts per IP",
		IssueType:   "Story",
		Components:  []string{"auth", "gateway"},
		Labels:      []string{"security"},
	}
	text := ticketSearchText(ticket)
	for _, want := range []string{"AUTH-101: Add login throttling", "Limit failed attempts per IP", "Type: Story", "Components: auth, gateway", "Labels: security"} {
		if !strings.Contains(text, want) {
			t.Fatalf("search text missing %q:\n%s", want, text)
		}
	}
}

func TestTicketSearchTextMinimal(t *testing.T) {
	ticket := &model.Ticket{TicketKey: "DB-1", Summary: "Tune pool size"}
	if got := ticketSearchText(ticket); got != "DB-1: Tune pool size" {
		t.Fatalf("search text = %q", got)
	}
}

func TestCommitSearchText(t *testing.T) {
	c := &model.Commit{
		Message:          "throttle failed logins",
		AuthorName:       "Sam Doe",
		TicketReferences: []string{"AUTH-101"},
		FilesChanged:     []string{"auth/limiter.go", "auth/limiter_test.go"},
	}
	text := commitSearchText(c)
	for _, want := range []string{
		"throttle failed logins",
		"Author: Sam Doe",
		"Tickets: AUTH-101",
		"Files: auth/limiter.go, auth/limiter_test.go",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("search text missing %q:\n%s", want, text)
		}
	}
}

func TestPullRequestSearchText(t *testing.T) {
	p := &model.PullRequest{PRNumber: 42, Title: "Throttle logins", Description: "Closes AUTH-101"}
	text := pullRequestSearchText(p)
	if !strings.Contains(text, "PR #42: Throttle logins") {
		t.Fatalf("search text = %q", text)
	}
	if !strings.Contains(text, "Closes AUTH-101") {
		t.Fatalf("search text = %q", text)
	}
}

func TestCodeFileSearchText(t *testing.T) {
	f := &model.CodeFile{
		FilePath:  "auth/limiter.go",
		Language:  "go",
		Functions: []string{"Allow", "Reset"},
		Classes:   []string{"Limiter"},
	}
	text := codeFileSearchText(f)
	for _, want := range []string{"auth/limiter.go", "Language: go", "Functions: Allow, Reset", "Classes: Limiter"} {
		if !strings.Contains(text, want) {
			t.Fatalf("search text missing %q:\n%s", want, text)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := truncate("hello world", 5); got != "hello" {
		t.Fatalf("truncate() = %q", got)
	}
	long := strings.Repeat("x", maxPayloadChars+100)
	if got := truncate(long, maxPayloadChars); len(got) != maxPayloadChars {
		t.Fatalf("truncate() length = %d, want %d", len(got), maxPayloadChars)
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// Each rune here is 3 bytes; a byte-offset cut would split a sequence.
	s := strings.Repeat("日", 10)
	got := truncate(s, 4)
	if got != strings.Repeat("日", 4) {
		t.Fatalf("truncate() = %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("truncate produced an invalid rune in %q", got)
		}
	}
}
