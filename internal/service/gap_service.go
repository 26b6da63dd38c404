package service

import (
	"context"
	"sort"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
)

const undocumentedCommitLimit = 50

// OrphanedReport lists tickets no recent commit referenced, with rollups that
// point at where the orphans cluster.
type OrphanedReport struct {
	Tickets    []model.Ticket `json:"tickets"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	ByAssignee map[string]int `json:"by_assignee"`
}

// UndocumentedReport lists commits with no ticket reference and who produces
// them.
type UndocumentedReport struct {
	Commits      []model.Commit `json:"commits"`
	ByAuthor     map[string]int `json:"by_author"`
	ByRepository map[string]int `json:"by_repository"`
	TotalChanges int            `json:"total_changes"`
}

// GapReport lists documentation debt for one organization: tickets without
// code, code without tickets, planning tickets without recorded decisions and
// tickets that look abandoned.
type GapReport struct {
	Orphaned         *OrphanedReport     `json:"orphaned"`
	Undocumented     *UndocumentedReport `json:"undocumented"`
	MissingDecisions []model.Ticket      `json:"missing_decisions"`
	StaleTickets     []model.Ticket      `json:"stale_tickets"`
}

type GapService struct {
	tickets        *repo.TicketRepo
	commits        *repo.CommitRepo
	pulls          *repo.PullRequestRepo
	orphanLookback time.Duration
	staleAfter     time.Duration
}

func NewGapService(tickets *repo.TicketRepo, commits *repo.CommitRepo, pulls *repo.PullRequestRepo, orphanLookback, staleAfter time.Duration) *GapService {
	return &GapService{
		tickets:        tickets,
		commits:        commits,
		pulls:          pulls,
		orphanLookback: orphanLookback,
		staleAfter:     staleAfter,
	}
}

// OrphanedTickets returns tickets from the lookback window that neither a
// commit nor a pull request references.
func (s *GapService) OrphanedTickets(ctx context.Context, orgID string) (*OrphanedReport, error) {
	since := time.Now().Add(-s.orphanLookback)
	keys, err := s.tickets.ListKeysCreatedSince(ctx, orgID, since)
	if err != nil {
		return nil, err
	}
	commitRefs, err := s.commits.ListReferencedKeys(ctx, orgID)
	if err != nil {
		return nil, err
	}
	prRefs, err := s.pulls.ListReferencedKeys(ctx, orgID)
	if err != nil {
		return nil, err
	}
	orphaned := orphanedKeys(keys, commitRefs, prRefs)
	report := &OrphanedReport{}
	if len(orphaned) > 0 {
		if report.Tickets, err = s.tickets.ListByKeys(ctx, orgID, orphaned); err != nil {
			return nil, err
		}
	}
	report.ByStatus, report.ByPriority, report.ByAssignee = groupTickets(report.Tickets)
	return report, nil
}

// UndocumentedCommits returns commits that reference no ticket.
func (s *GapService) UndocumentedCommits(ctx context.Context, orgID string) (*UndocumentedReport, error) {
	commits, err := s.commits.ListUndocumented(ctx, orgID, undocumentedCommitLimit)
	if err != nil {
		return nil, err
	}
	report := &UndocumentedReport{Commits: commits}
	report.ByAuthor, report.ByRepository, report.TotalChanges = rollupCommits(commits)
	return report, nil
}

// MissingDecisions returns planning tickets with no recorded decision.
func (s *GapService) MissingDecisions(ctx context.Context, orgID string) ([]model.Ticket, error) {
	return s.tickets.ListMissingDecisions(ctx, orgID)
}

// StaleTickets returns open tickets untouched beyond the staleness window.
func (s *GapService) StaleTickets(ctx context.Context, orgID string) ([]model.Ticket, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	return s.tickets.ListStale(ctx, orgID, cutoff)
}

// ComprehensiveGaps runs every gap query. A failing query leaves its section
// empty instead of aborting the whole report.
func (s *GapService) ComprehensiveGaps(ctx context.Context, orgID string) (*GapReport, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID))
	report := &GapReport{}
	var err error
	if report.Orphaned, err = s.OrphanedTickets(ctx, orgID); err != nil {
		logger.Warn("orphaned ticket scan failed", zap.Error(err))
		report.Orphaned = &OrphanedReport{}
	}
	if report.Undocumented, err = s.UndocumentedCommits(ctx, orgID); err != nil {
		logger.Warn("undocumented commit scan failed", zap.Error(err))
		report.Undocumented = &UndocumentedReport{}
	}
	if report.MissingDecisions, err = s.MissingDecisions(ctx, orgID); err != nil {
		logger.Warn("missing decision scan failed", zap.Error(err))
	}
	if report.StaleTickets, err = s.StaleTickets(ctx, orgID); err != nil {
		logger.Warn("stale ticket scan failed", zap.Error(err))
	}
	return report, nil
}

// groupTickets counts tickets by status, priority and assignee. Empty fields
// land in the Unknown/Unassigned buckets.
func groupTickets(tickets []model.Ticket) (byStatus, byPriority, byAssignee map[string]int) {
	byStatus = map[string]int{}
	byPriority = map[string]int{}
	byAssignee = map[string]int{}
	for _, t := range tickets {
		status := t.Status
		if status == "" {
			status = "Unknown"
		}
		priority := t.Priority
		if priority == "" {
			priority = "Unknown"
		}
		assignee := t.Assignee
		if assignee == "" {
			assignee = "Unassigned"
		}
		byStatus[status]++
		byPriority[priority]++
		byAssignee[assignee]++
	}
	return byStatus, byPriority, byAssignee
}

// rollupCommits counts commits per author and per repository and sums line
// churn.
func rollupCommits(commits []model.Commit) (byAuthor, byRepository map[string]int, totalChanges int) {
	byAuthor = map[string]int{}
	byRepository = map[string]int{}
	for _, c := range commits {
		author := c.AuthorName
		if author == "" {
			author = "Unknown"
		}
		byAuthor[author]++
		if c.RepositoryID != "" {
			byRepository[c.RepositoryID]++
		}
		totalChanges += c.Additions + c.Deletions
	}
	return byAuthor, byRepository, totalChanges
}

// orphanedKeys returns the ticket keys that neither reference list mentions.
func orphanedKeys(ticketKeys, commitRefs, prRefs []string) []string {
	referenced := make([]string, 0, len(commitRefs)+len(prRefs))
	referenced = append(referenced, commitRefs...)
	referenced = append(referenced, prRefs...)
	return setDifference(ticketKeys, referenced)
}

// setDifference returns the members of a that are absent from b, sorted.
func setDifference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, item := range b {
		exclude[item] = struct{}{}
	}
	var out []string
	seen := map[string]struct{}{}
	for _, item := range a {
		if _, ok := exclude[item]; ok {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
