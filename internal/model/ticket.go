package model

import "time"

type Ticket struct {
	ID           string     `json:"id"`
	OrgID        string     `json:"org_id"`
	TicketKey    string     `json:"ticket_key"`
	Summary      string     `json:"summary"`
	Description  string     `json:"description"`
	IssueType    string     `json:"issue_type"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Assignee     string     `json:"assignee"`
	Reporter     string     `json:"reporter"`
	StoryPoints  float64    `json:"story_points"`
	Labels       []string   `json:"labels"`
	Components   []string   `json:"components"`
	CreatedDate  *time.Time `json:"created_date"`
	UpdatedDate  *time.Time `json:"updated_date"`
	ResolvedDate *time.Time `json:"resolved_date"`
}

type Decision struct {
	ID               string    `json:"id"`
	OrgID            string    `json:"org_id"`
	TicketKey        string    `json:"ticket_key"`
	DecisionSummary  string    `json:"decision_summary"`
	ProblemStatement string    `json:"problem_statement"`
	ChosenApproach   string    `json:"chosen_approach"`
	CreatedAt        time.Time `json:"created_at"`
}
