package service

import (
	"testing"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
)

func TestBlastRadius(t *testing.T) {
	tests := []struct {
		files int
		lines int
		want  string
	}{
		{1, 10, BlastRadiusSmall},
		{2, 49, BlastRadiusSmall},
		{2, 50, BlastRadiusMedium},
		{3, 10, BlastRadiusMedium},
		{5, 199, BlastRadiusMedium},
		{6, 100, BlastRadiusLarge},
		{10, 499, BlastRadiusLarge},
		{11, 10, BlastRadiusVeryLarge},
		{3, 800, BlastRadiusVeryLarge},
	}
	for _, tt := range tests {
		if got := blastRadius(tt.files, tt.lines); got != tt.want {
			t.Fatalf("blastRadius(%d, %d) = %s, want %s", tt.files, tt.lines, got, tt.want)
		}
	}
}

func TestCategorizeFiles(t *testing.T) {
	cat := categorizeFiles([]string{
		"internal/auth/token.go",
		"internal/auth/token_test.go",
		"config/app.yaml",
		"Dockerfile",
		"README.md",
		"docs/setup.rst",
	})
	if cat.Source != 1 {
		t.Fatalf("source = %d, want 1", cat.Source)
	}
	if cat.Tests != 1 {
		t.Fatalf("tests = %d, want 1", cat.Tests)
	}
	if cat.Config != 2 {
		t.Fatalf("config = %d, want 2", cat.Config)
	}
	if cat.Docs != 2 {
		t.Fatalf("docs = %d, want 2", cat.Docs)
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name   string
		commit model.Commit
		want   int
	}{
		{
			name: "small source change",
			commit: model.Commit{
				FilesChanged: []string{"a.go"},
				Additions:    10,
				Deletions:    5,
			},
			// size 5, source 1 -> 5 + 2
			want: 7,
		},
		{
			name: "tests lower the score",
			commit: model.Commit{
				FilesChanged: []string{"a.go", "a_test.go"},
				Additions:    20,
			},
			// size 10, source 1, tests present -> 10 + 2 - 10
			want: 2,
		},
		{
			name: "config heavy change",
			commit: model.Commit{
				FilesChanged: []string{"deploy.yaml", "prod.yaml", "app.go"},
				Additions:    100,
				Deletions:    100,
			},
			// size 17, config 2, source 1 -> 17 + 10 + 2
			want: 29,
		},
		{
			name: "huge change hits the size cap",
			commit: model.Commit{
				FilesChanged: make([]string, 40),
				Additions:    5000,
				Deletions:    5000,
			},
			// size capped at 50, 40 empty names count as source but clamp wins
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := categorizeFiles(tt.commit.FilesChanged)
			if got := riskScore(&tt.commit, cat); got != tt.want {
				t.Fatalf("riskScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRiskScoreNeverNegative(t *testing.T) {
	c := model.Commit{FilesChanged: []string{"a_test.go"}}
	cat := categorizeFiles(c.FilesChanged)
	if got := riskScore(&c, cat); got != 0 {
		t.Fatalf("riskScore() = %d, want 0", got)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "low"},
		{24, "low"},
		{25, "medium"},
		{49, "medium"},
		{50, "high"},
		{74, "high"},
		{75, "critical"},
		{100, "critical"},
	}
	for _, tt := range tests {
		if got := riskLevel(tt.score); got != tt.want {
			t.Fatalf("riskLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestCoChangedFiles(t *testing.T) {
	commits := []model.Commit{
		{FilesChanged: []string{"a.go", "b.go", "c.go"}},
		{FilesChanged: []string{"a.go", "b.go"}},
		{FilesChanged: []string{"a.go"}},
	}
	out := coChangedFiles(commits, "a.go")
	if len(out) != 2 {
		t.Fatalf("expected 2 co-changed files, got %d", len(out))
	}
	if out[0].FilePath != "b.go" || out[0].Count != 2 {
		t.Fatalf("top co-change = %+v, want b.go x2", out[0])
	}
	if out[1].FilePath != "c.go" || out[1].Count != 1 {
		t.Fatalf("second co-change = %+v, want c.go x1", out[1])
	}
}
