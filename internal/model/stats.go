package model

import "time"

// CommitStats aggregates commit activity for one repository.
type CommitStats struct {
	TotalCommits    int        `json:"total_commits"`
	UniqueAuthors   int        `json:"unique_authors"`
	TotalAdditions  int        `json:"total_additions"`
	TotalDeletions  int        `json:"total_deletions"`
	FirstCommitDate *time.Time `json:"first_commit_date"`
	LastCommitDate  *time.Time `json:"last_commit_date"`
}

// ContributorStat is one author's aggregate over a repository.
type ContributorStat struct {
	AuthorName   string `json:"author_name"`
	AuthorEmail  string `json:"author_email"`
	CommitCount  int    `json:"commit_count"`
	LinesAdded   int    `json:"lines_added"`
	LinesDeleted int    `json:"lines_deleted"`
}

// PullRequestStats counts pull requests for one repository by state.
type PullRequestStats struct {
	TotalPRs  int `json:"total_prs"`
	MergedPRs int `json:"merged_prs"`
	OpenPRs   int `json:"open_prs"`
	ClosedPRs int `json:"closed_prs"`
}
