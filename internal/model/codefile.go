package model

type CodeFile struct {
	ID           string   `json:"id"`
	OrgID        string   `json:"org_id"`
	RepositoryID string   `json:"repository_id"`
	FilePath     string   `json:"file_path"`
	Language     string   `json:"language"`
	SizeBytes    int64    `json:"size_bytes"`
	Functions    []string `json:"functions"`
	Classes      []string `json:"classes"`
}
