package model

import "time"

// DocumentChunk is one embeddable slice of a wiki page. Title and Text are the
// confidential fields; they are encrypted with the organization key before any
// payload leaves this process.
type DocumentChunk struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"org_id"`
	PageID     string     `json:"page_id"`
	PageTitle  string     `json:"page_title"`
	ChunkIndex int        `json:"chunk_index"`
	Text       string     `json:"text"`
	Space      string     `json:"space"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func (c *DocumentChunk) NaturalKey() string {
	return c.PageID
}
