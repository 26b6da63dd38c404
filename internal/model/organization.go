package model

import "time"

type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Plan         string    `json:"plan"`
	MonthlyQuota int       `json:"monthly_quota"`
	UsedQuota    int       `json:"used_quota"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	RepoName  string    `json:"repo_name"`
	RepoURL   string    `json:"repo_url"`
	Provider  string    `json:"provider"`
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"created_at"`
}
