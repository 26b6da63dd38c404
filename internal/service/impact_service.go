package service

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
)

const (
	fileHistoryLimit   = 100
	similarTicketLimit = 10
)

const (
	BlastRadiusSmall     = "small"
	BlastRadiusMedium    = "medium"
	BlastRadiusLarge     = "large"
	BlastRadiusVeryLarge = "very_large"
)

type FileCategories struct {
	Source int `json:"source"`
	Config int `json:"config"`
	Tests  int `json:"tests"`
	Docs   int `json:"docs"`
}

type CoChange struct {
	FilePath string `json:"file_path"`
	Count    int    `json:"count"`
}

type FileImpactReport struct {
	FilePath       string              `json:"file_path"`
	CommitCount    int                 `json:"commit_count"`
	CoChangedFiles []CoChange      `json:"co_changed_files"`
	Contributors   []DeveloperStat `json:"contributors"`
	LastModified   *time.Time      `json:"last_modified"`
}

// TicketRef is the slim ticket view used in impact listings.
type TicketRef struct {
	TicketKey string `json:"ticket_key"`
	Summary   string `json:"summary"`
	Status    string `json:"status"`
}

type TicketImpactReport struct {
	TicketKey          string          `json:"ticket_key"`
	Summary            string          `json:"summary"`
	Status             string          `json:"status"`
	AlreadyImplemented bool            `json:"already_implemented"`
	Files              []string        `json:"files"`
	Additions          int             `json:"additions"`
	Deletions          int             `json:"deletions"`
	BlastRadius        string          `json:"blast_radius"`
	Developers         []DeveloperStat `json:"developers"`
	SimilarTickets     []TicketRef     `json:"similar_tickets"`
	DependentTickets   []TicketRef     `json:"dependent_tickets"`
}

type CommitImpactReport struct {
	SHA        string         `json:"sha"`
	RiskScore  int            `json:"risk_score"`
	RiskLevel  string         `json:"risk_level"`
	Categories FileCategories `json:"categories"`
	TicketKeys []string       `json:"ticket_keys"`
}

type ImpactService struct {
	tickets *repo.TicketRepo
	commits *repo.CommitRepo
}

func NewImpactService(tickets *repo.TicketRepo, commits *repo.CommitRepo) *ImpactService {
	return &ImpactService{tickets: tickets, commits: commits}
}

// FileImpact describes how risky a file is to touch: how often it changes,
// what changes alongside it and who knows it.
func (s *ImpactService) FileImpact(ctx context.Context, orgID, filePath string) (*FileImpactReport, error) {
	commits, err := s.commits.ListForFile(ctx, orgID, filePath, fileHistoryLimit)
	if err != nil {
		return nil, err
	}
	report := &FileImpactReport{
		FilePath:       filePath,
		CommitCount:    len(commits),
		CoChangedFiles: coChangedFiles(commits, filePath),
		Contributors:   collectDevelopers(commits),
	}
	for _, c := range commits {
		if c.CommitDate == nil {
			continue
		}
		if report.LastModified == nil || c.CommitDate.After(*report.LastModified) {
			report.LastModified = c.CommitDate
		}
	}
	return report, nil
}

// TicketImpact aggregates every change made for a ticket and sizes its blast
// radius. Similar tickets share a component or a trigram-similar summary;
// dependent tickets are the keys mentioned in this ticket's description.
func (s *ImpactService) TicketImpact(ctx context.Context, orgID, ticketKey string) (*TicketImpactReport, error) {
	ticket, err := s.tickets.GetByKey(ctx, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	commits, err := s.commits.ListForTicket(ctx, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	files := collectFiles(commits)
	additions, deletions := 0, 0
	for _, c := range commits {
		additions += c.Additions
		deletions += c.Deletions
	}
	similar, err := s.tickets.ListSimilar(ctx, orgID, ticketKey, ticket.Components, ticket.Summary, similarTicketLimit)
	if err != nil {
		return nil, err
	}
	dependents, err := s.dependentTickets(ctx, orgID, ticket)
	if err != nil {
		return nil, err
	}
	return &TicketImpactReport{
		TicketKey:          ticketKey,
		Summary:            ticket.Summary,
		Status:             ticket.Status,
		AlreadyImplemented: len(commits) > 0,
		Files:              files,
		Additions:          additions,
		Deletions:          deletions,
		BlastRadius:        blastRadius(len(files), additions+deletions),
		Developers:         collectDevelopers(commits),
		SimilarTickets:     ticketRefs(similar),
		DependentTickets:   ticketRefs(dependents),
	}, nil
}

func (s *ImpactService) dependentTickets(ctx context.Context, orgID string, ticket *model.Ticket) ([]model.Ticket, error) {
	keys := textscan.ExtractTicketKeys(ticket.Description)
	filtered := keys[:0]
	for _, key := range keys {
		if key != ticket.TicketKey {
			filtered = append(filtered, key)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}
	return s.tickets.ListByKeys(ctx, orgID, filtered)
}

func ticketRefs(tickets []model.Ticket) []TicketRef {
	refs := make([]TicketRef, 0, len(tickets))
	for _, t := range tickets {
		refs = append(refs, TicketRef{TicketKey: t.TicketKey, Summary: t.Summary, Status: t.Status})
	}
	return refs
}

// CommitImpact scores one commit by size and by what kinds of files it
// touches.
func (s *ImpactService) CommitImpact(ctx context.Context, orgID, sha string) (*CommitImpactReport, error) {
	commit, err := s.commits.GetBySHA(ctx, orgID, sha)
	if err != nil {
		return nil, err
	}
	categories := categorizeFiles(commit.FilesChanged)
	score := riskScore(commit, categories)
	return &CommitImpactReport{
		SHA:        commit.SHA,
		RiskScore:  score,
		RiskLevel:  riskLevel(score),
		Categories: categories,
		TicketKeys: commit.TicketReferences,
	}, nil
}

// SuggestReviewers ranks developers by how many of the given files they have
// touched recently.
func (s *ImpactService) SuggestReviewers(ctx context.Context, orgID string, files []string, limit int) ([]DeveloperActivity, error) {
	counts := map[string]int{}
	for _, file := range files {
		commits, err := s.commits.ListForFile(ctx, orgID, file, fileHistoryLimit)
		if err != nil {
			return nil, err
		}
		for _, c := range commits {
			if c.AuthorName == "" {
				continue
			}
			counts[c.AuthorName]++
		}
	}
	devs := make([]DeveloperActivity, 0, len(counts))
	for name, n := range counts {
		devs = append(devs, DeveloperActivity{Name: name, Commits: n})
	}
	sort.Slice(devs, func(i, j int) bool {
		if devs[i].Commits != devs[j].Commits {
			return devs[i].Commits > devs[j].Commits
		}
		return devs[i].Name < devs[j].Name
	})
	if limit > 0 && len(devs) > limit {
		devs = devs[:limit]
	}
	return devs, nil
}

// coChangedFiles counts how often other files appear in the same commits as
// the target, most frequent first.
func coChangedFiles(commits []model.Commit, target string) []CoChange {
	counts := map[string]int{}
	for _, c := range commits {
		for _, f := range c.FilesChanged {
			if f == target {
				continue
			}
			counts[f]++
		}
	}
	out := make([]CoChange, 0, len(counts))
	for file, n := range counts {
		out = append(out, CoChange{FilePath: file, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FilePath < out[j].FilePath
	})
	return out
}

// blastRadius bands the spread of a change by file count and total line
// churn.
func blastRadius(fileCount, totalLines int) string {
	switch {
	case fileCount <= 2 && totalLines < 50:
		return BlastRadiusSmall
	case fileCount <= 5 && totalLines < 200:
		return BlastRadiusMedium
	case fileCount <= 10 && totalLines < 500:
		return BlastRadiusLarge
	default:
		return BlastRadiusVeryLarge
	}
}

// riskScore combines change size with file category weights. Size alone is
// capped at 50 so a huge but mechanical change cannot max the score; touching
// config raises risk, touching tests lowers it.
func riskScore(c *model.Commit, categories FileCategories) int {
	size := 5*len(c.FilesChanged) + (c.Additions+c.Deletions)/100
	if size > 50 {
		size = 50
	}
	score := size + 5*categories.Config + 2*categories.Source
	if categories.Tests > 0 {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func riskLevel(score int) string {
	switch {
	case score < 25:
		return "low"
	case score < 50:
		return "medium"
	case score < 75:
		return "high"
	default:
		return "critical"
	}
}

func categorizeFiles(files []string) FileCategories {
	var cat FileCategories
	for _, file := range files {
		lower := strings.ToLower(file)
		base := path.Base(lower)
		ext := path.Ext(lower)
		switch {
		case strings.Contains(base, "test") || strings.Contains(base, "spec.") || strings.Contains(lower, "/tests/"):
			cat.Tests++
		case ext == ".md" || ext == ".rst" || ext == ".txt":
			cat.Docs++
		case ext == ".yml" || ext == ".yaml" || ext == ".json" || ext == ".toml" ||
			ext == ".ini" || ext == ".env" || ext == ".cfg" ||
			base == "dockerfile" || base == "makefile":
			cat.Config++
		default:
			cat.Source++
		}
	}
	return cat
}
