package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

const (
	contributionListLimit = 100
	docMatchLimit         = 20
	topContributorLimit   = 10
)

type DeveloperActivity struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

// DeveloperStat is a developer's full contribution record, keyed by email so
// two people sharing a display name stay distinct.
type DeveloperStat struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Commits        int        `json:"commits"`
	LinesAdded     int        `json:"lines_added"`
	LinesDeleted   int        `json:"lines_deleted"`
	LastCommitDate *time.Time `json:"last_commit_date"`
}

type FileModification struct {
	FilePath      string     `json:"file_path"`
	Modifications int        `json:"modifications"`
	LastModified  *time.Time `json:"last_modified"`
}

type TimelineEvent struct {
	Kind    string     `json:"kind"`
	Ref     string     `json:"ref"`
	Summary string     `json:"summary"`
	At      *time.Time `json:"at"`
}

// DocumentRef points at a wiki page chunk that mentions a ticket.
type DocumentRef struct {
	PageID string `json:"page_id"`
	Title  string `json:"title"`
	Space  string `json:"space"`
}

// TicketRelationships is the full activity graph around one ticket: the code
// that implemented it, the pages that mention it, who wrote it and in what
// order things happened.
type TicketRelationships struct {
	Ticket       *model.Ticket       `json:"ticket"`
	Commits      []model.Commit      `json:"commits"`
	PullRequests []model.PullRequest `json:"pull_requests"`
	Documents    []DocumentRef       `json:"documents"`
	Files        []FileModification  `json:"files"`
	Developers   []DeveloperStat     `json:"developers"`
	Timeline     []TimelineEvent     `json:"timeline"`
}

type ContributionStats struct {
	TotalCommits  int `json:"total_commits"`
	TotalPRs      int `json:"total_prs"`
	TotalTickets  int `json:"total_tickets"`
	FilesModified int `json:"files_modified"`
	LinesAdded    int `json:"lines_added"`
	LinesDeleted  int `json:"lines_deleted"`
}

// DeveloperContributions is everything one developer touched: commits by
// author email, pull requests by author name.
type DeveloperContributions struct {
	Email        string              `json:"email"`
	Stats        ContributionStats   `json:"stats"`
	Commits      []model.Commit      `json:"commits"`
	PullRequests []model.PullRequest `json:"pull_requests"`
	Tickets      []string            `json:"tickets"`
	Files        []string            `json:"files"`
}

type FileHistoryReport struct {
	FilePath     string                  `json:"file_path"`
	TotalCommits int                     `json:"total_commits"`
	Commits      []model.Commit          `json:"commits"`
	Developers   []model.ContributorStat `json:"developers"`
	Tickets      []string                `json:"tickets"`
	FirstCommit  *model.Commit           `json:"first_commit"`
	LastCommit   *model.Commit           `json:"last_commit"`
}

type RepositoryStatsReport struct {
	Repository       *model.Repository       `json:"repository"`
	CommitStats      *model.CommitStats      `json:"commit_stats"`
	PullRequestStats *model.PullRequestStats `json:"pr_stats"`
	TotalFiles       int                     `json:"total_files"`
	TopContributors  []model.ContributorStat `json:"top_contributors"`
	RelatedTickets   []string                `json:"related_tickets"`
}

type RelationshipService struct {
	tickets      *repo.TicketRepo
	commits      *repo.CommitRepo
	pulls        *repo.PullRequestRepo
	repositories *repo.RepositoryRepo
	files        *repo.CodeFileRepo
	index        vectorstore.Index
	crypt        *fieldcrypt.Gateway
}

func NewRelationshipService(
	tickets *repo.TicketRepo,
	commits *repo.CommitRepo,
	pulls *repo.PullRequestRepo,
	repositories *repo.RepositoryRepo,
	files *repo.CodeFileRepo,
	index vectorstore.Index,
	crypt *fieldcrypt.Gateway,
) *RelationshipService {
	return &RelationshipService{
		tickets:      tickets,
		commits:      commits,
		pulls:        pulls,
		repositories: repositories,
		files:        files,
		index:        index,
		crypt:        crypt,
	}
}

func (s *RelationshipService) GetTicketRelationships(ctx context.Context, orgID, ticketKey string) (*TicketRelationships, error) {
	ticket, err := s.tickets.GetByKey(ctx, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	commits, err := s.commits.ListForTicket(ctx, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	pulls, err := s.pulls.ListForTicket(ctx, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	documents, err := s.documentsForTicket(ctx, orgID, ticketKey)
	if err != nil {
		logutil.GetLogger(ctx).Warn("document lookup for ticket failed",
			zap.String("org_id", orgID), zap.String("ticket_key", ticketKey), zap.Error(err))
	}
	return &TicketRelationships{
		Ticket:       ticket,
		Commits:      commits,
		PullRequests: pulls,
		Documents:    documents,
		Files:        collectFileChanges(commits),
		Developers:   collectDevelopers(commits),
		Timeline:     buildTimeline(ticket, commits, pulls),
	}, nil
}

// documentsForTicket finds wiki page chunks whose keywords contain the ticket
// key tokens. The per-org collection may not exist yet; that is not an error.
func (s *RelationshipService) documentsForTicket(ctx context.Context, orgID, ticketKey string) ([]DocumentRef, error) {
	collection := vectorstore.DocCollection(orgID)
	exists, err := s.index.VerifyCollections(ctx, []string{collection})
	if err != nil {
		return nil, err
	}
	if !exists[collection] {
		return nil, nil
	}
	terms := textscan.ExtractKeywords(ticketKey)
	if len(terms) == 0 {
		return nil, nil
	}
	hits, err := s.index.KeywordScroll(ctx, collection, orgID, terms, docMatchLimit)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var docs []DocumentRef
	for _, hit := range hits {
		pageID, _ := hit.Payload["page_id"].(string)
		if pageID == "" {
			continue
		}
		if _, ok := seen[pageID]; ok {
			continue
		}
		title := ""
		if enc, ok := hit.Payload["page_title"].(string); ok {
			plain, err := s.crypt.Decrypt(enc, orgID)
			if err != nil {
				continue
			}
			title = plain
		}
		space, _ := hit.Payload["space"].(string)
		seen[pageID] = struct{}{}
		docs = append(docs, DocumentRef{PageID: pageID, Title: title, Space: space})
	}
	return docs, nil
}

// GetDeveloperContributions aggregates everything one developer worked on.
// Commits are matched by author email, pull requests by author name; that
// asymmetry mirrors what the two providers report.
func (s *RelationshipService) GetDeveloperContributions(ctx context.Context, orgID, email string) (*DeveloperContributions, error) {
	commits, err := s.commits.ListByAuthor(ctx, orgID, email, contributionListLimit)
	if err != nil {
		return nil, err
	}
	pulls, err := s.pulls.ListByAuthor(ctx, orgID, email, contributionListLimit)
	if err != nil {
		return nil, err
	}
	tickets := uniqueTicketKeys(commits, pulls)
	files := collectFiles(commits)
	additions, deletions := 0, 0
	for _, c := range commits {
		additions += c.Additions
		deletions += c.Deletions
	}
	return &DeveloperContributions{
		Email: email,
		Stats: ContributionStats{
			TotalCommits:  len(commits),
			TotalPRs:      len(pulls),
			TotalTickets:  len(tickets),
			FilesModified: len(files),
			LinesAdded:    additions,
			LinesDeleted:  deletions,
		},
		Commits:      commits,
		PullRequests: pulls,
		Tickets:      tickets,
		Files:        files,
	}, nil
}

// GetFileHistory returns every commit that touched the path, newest first.
func (s *RelationshipService) GetFileHistory(ctx context.Context, orgID, filePath string) (*FileHistoryReport, error) {
	commits, err := s.commits.ListForFile(ctx, orgID, filePath, contributionListLimit)
	if err != nil {
		return nil, err
	}
	report := &FileHistoryReport{
		FilePath:     filePath,
		TotalCommits: len(commits),
		Commits:      commits,
		Developers:   contributorStats(commits),
		Tickets:      uniqueTicketKeys(commits, nil),
	}
	if len(commits) > 0 {
		report.LastCommit = &commits[0]
		report.FirstCommit = &commits[len(commits)-1]
	}
	return report, nil
}

// GetRepositoryStats builds the aggregate view of one repository.
func (s *RelationshipService) GetRepositoryStats(ctx context.Context, orgID, repositoryID string) (*RepositoryStatsReport, error) {
	repository, err := s.repositories.GetByID(ctx, orgID, repositoryID)
	if err != nil {
		return nil, err
	}
	commitStats, err := s.commits.StatsForRepository(ctx, orgID, repositoryID)
	if err != nil {
		return nil, err
	}
	prStats, err := s.pulls.StatsForRepository(ctx, orgID, repositoryID)
	if err != nil {
		return nil, err
	}
	totalFiles, err := s.files.CountForRepository(ctx, orgID, repositoryID)
	if err != nil {
		return nil, err
	}
	contributors, err := s.commits.TopContributors(ctx, orgID, repositoryID, topContributorLimit)
	if err != nil {
		return nil, err
	}
	relatedTickets, err := s.commits.ListReferencedKeysForRepository(ctx, orgID, repositoryID)
	if err != nil {
		return nil, err
	}
	sort.Strings(relatedTickets)
	return &RepositoryStatsReport{
		Repository:       repository,
		CommitStats:      commitStats,
		PullRequestStats: prStats,
		TotalFiles:       totalFiles,
		TopContributors:  contributors,
		RelatedTickets:   relatedTickets,
	}, nil
}

func collectFiles(commits []model.Commit) []string {
	seen := map[string]struct{}{}
	var files []string
	for _, c := range commits {
		for _, f := range c.FilesChanged {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

// collectFileChanges counts how often each file was touched, most modified
// first.
func collectFileChanges(commits []model.Commit) []FileModification {
	byPath := map[string]*FileModification{}
	var order []string
	for _, c := range commits {
		for _, f := range c.FilesChanged {
			mod, ok := byPath[f]
			if !ok {
				mod = &FileModification{FilePath: f}
				byPath[f] = mod
				order = append(order, f)
			}
			mod.Modifications++
			if c.CommitDate != nil && (mod.LastModified == nil || c.CommitDate.After(*mod.LastModified)) {
				mod.LastModified = c.CommitDate
			}
		}
	}
	files := make([]FileModification, 0, len(order))
	for _, f := range order {
		files = append(files, *byPath[f])
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Modifications != files[j].Modifications {
			return files[i].Modifications > files[j].Modifications
		}
		return files[i].FilePath < files[j].FilePath
	})
	return files
}

// collectDevelopers aggregates commit count, line churn and last activity per
// author email, busiest first.
func collectDevelopers(commits []model.Commit) []DeveloperStat {
	byEmail := map[string]*DeveloperStat{}
	var order []string
	for _, c := range commits {
		if c.AuthorEmail == "" {
			continue
		}
		dev, ok := byEmail[c.AuthorEmail]
		if !ok {
			dev = &DeveloperStat{Name: c.AuthorName, Email: c.AuthorEmail}
			byEmail[c.AuthorEmail] = dev
			order = append(order, c.AuthorEmail)
		}
		dev.Commits++
		dev.LinesAdded += c.Additions
		dev.LinesDeleted += c.Deletions
		if c.CommitDate != nil && (dev.LastCommitDate == nil || c.CommitDate.After(*dev.LastCommitDate)) {
			dev.LastCommitDate = c.CommitDate
		}
	}
	devs := make([]DeveloperStat, 0, len(order))
	for _, email := range order {
		devs = append(devs, *byEmail[email])
	}
	sort.Slice(devs, func(i, j int) bool {
		if devs[i].Commits != devs[j].Commits {
			return devs[i].Commits > devs[j].Commits
		}
		return devs[i].Email < devs[j].Email
	})
	return devs
}

// contributorStats aggregates commit counts and line churn per author email,
// busiest first.
func contributorStats(commits []model.Commit) []model.ContributorStat {
	byEmail := map[string]*model.ContributorStat{}
	var order []string
	for _, c := range commits {
		if c.AuthorEmail == "" {
			continue
		}
		stat, ok := byEmail[c.AuthorEmail]
		if !ok {
			stat = &model.ContributorStat{AuthorName: c.AuthorName, AuthorEmail: c.AuthorEmail}
			byEmail[c.AuthorEmail] = stat
			order = append(order, c.AuthorEmail)
		}
		stat.CommitCount++
		stat.LinesAdded += c.Additions
		stat.LinesDeleted += c.Deletions
	}
	stats := make([]model.ContributorStat, 0, len(order))
	for _, email := range order {
		stats = append(stats, *byEmail[email])
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CommitCount != stats[j].CommitCount {
			return stats[i].CommitCount > stats[j].CommitCount
		}
		return stats[i].AuthorEmail < stats[j].AuthorEmail
	})
	return stats
}

// uniqueTicketKeys unions the ticket references of commits and pull requests,
// sorted.
func uniqueTicketKeys(commits []model.Commit, pulls []model.PullRequest) []string {
	seen := map[string]struct{}{}
	var keys []string
	add := func(refs []string) {
		for _, key := range refs {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	for _, c := range commits {
		add(c.TicketReferences)
	}
	for _, p := range pulls {
		add(p.TicketReferences)
	}
	sort.Strings(keys)
	return keys
}

// buildTimeline orders every event around the ticket chronologically. Events
// without a timestamp sort before everything else so they are not mistaken
// for recent activity.
func buildTimeline(ticket *model.Ticket, commits []model.Commit, pulls []model.PullRequest) []TimelineEvent {
	var events []TimelineEvent
	if ticket != nil {
		events = append(events, TimelineEvent{
			Kind:    "ticket_created",
			Ref:     ticket.TicketKey,
			Summary: ticket.Summary,
			At:      ticket.CreatedDate,
		})
		if ticket.ResolvedDate != nil {
			events = append(events, TimelineEvent{
				Kind:    "ticket_resolved",
				Ref:     ticket.TicketKey,
				Summary: ticket.Status,
				At:      ticket.ResolvedDate,
			})
		}
	}
	for _, c := range commits {
		events = append(events, TimelineEvent{
			Kind:    "commit",
			Ref:     c.ShortSHA(),
			Summary: c.Message,
			At:      c.CommitDate,
		})
	}
	for _, p := range pulls {
		events = append(events, TimelineEvent{
			Kind:    "pr_opened",
			Ref:     p.Title,
			Summary: p.State,
			At:      p.CreatedAtPR,
		})
		if p.MergedAt != nil {
			events = append(events, TimelineEvent{
				Kind:    "pr_merged",
				Ref:     p.Title,
				Summary: p.State,
				At:      p.MergedAt,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].At, events[j].At
		if ti == nil {
			return tj != nil
		}
		if tj == nil {
			return false
		}
		return ti.Before(*tj)
	})
	return events
}
