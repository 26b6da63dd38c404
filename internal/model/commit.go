package model

import "time"

type Commit struct {
	ID               string     `json:"id"`
	OrgID            string     `json:"org_id"`
	RepositoryID     string     `json:"repository_id"`
	SHA              string     `json:"sha"`
	Message          string     `json:"message"`
	AuthorName       string     `json:"author_name"`
	AuthorEmail      string     `json:"author_email"`
	CommitDate       *time.Time `json:"commit_date"`
	FilesChanged     []string   `json:"files_changed"`
	Additions        int        `json:"additions"`
	Deletions        int        `json:"deletions"`
	TicketReferences []string   `json:"ticket_references"`
}

func (c *Commit) ShortSHA() string {
	if len(c.SHA) < 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

type PullRequest struct {
	ID               string     `json:"id"`
	OrgID            string     `json:"org_id"`
	RepositoryID     string     `json:"repository_id"`
	PRNumber         int        `json:"pr_number"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	AuthorName       string     `json:"author_name"`
	State            string     `json:"state"`
	CreatedAtPR      *time.Time `json:"created_at_pr"`
	MergedAt         *time.Time `json:"merged_at"`
	ClosedAt         *time.Time `json:"closed_at"`
	CommitSHAs       []string   `json:"commit_shas"`
	TicketReferences []string   `json:"ticket_references"`
}
