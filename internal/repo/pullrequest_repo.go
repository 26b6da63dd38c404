package repo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
)

const pullRequestColumns = `id, org_id, repository_id, pr_number, title, description, author_name,
	state, created_at_pr, merged_at, closed_at, commit_shas, ticket_references`

type PullRequestRepo struct {
	db *sql.DB
}

func NewPullRequestRepo(db *sql.DB) *PullRequestRepo {
	return &PullRequestRepo{db: db}
}

func (r *PullRequestRepo) Upsert(ctx context.Context, p *model.PullRequest) error {
	const query = `
		INSERT INTO pull_request_records (` + pullRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (repository_id, pr_number) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			author_name = EXCLUDED.author_name,
			state = EXCLUDED.state,
			created_at_pr = EXCLUDED.created_at_pr,
			merged_at = EXCLUDED.merged_at,
			closed_at = EXCLUDED.closed_at,
			commit_shas = EXCLUDED.commit_shas,
			ticket_references = EXCLUDED.ticket_references
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OrgID, p.RepositoryID, p.PRNumber, p.Title, p.Description, p.AuthorName,
		p.State, p.CreatedAtPR, p.MergedAt, p.ClosedAt, pq.Array(p.CommitSHAs), pq.Array(p.TicketReferences),
	)
	return err
}

func (r *PullRequestRepo) ListForTicket(ctx context.Context, orgID string, ticketKey string) ([]model.PullRequest, error) {
	const query = `
		SELECT ` + pullRequestColumns + `
		FROM pull_request_records
		WHERE org_id = $1 AND $2 = ANY(ticket_references)
		ORDER BY created_at_pr
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanPullRequests(rows)
}

// ListForCommits returns pull requests containing any of the given commit SHAs.
func (r *PullRequestRepo) ListForCommits(ctx context.Context, orgID string, shas []string) ([]model.PullRequest, error) {
	if len(shas) == 0 {
		return nil, nil
	}
	const query = `
		SELECT ` + pullRequestColumns + `
		FROM pull_request_records
		WHERE org_id = $1 AND commit_shas && $2
		ORDER BY created_at_pr
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, pq.Array(shas))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanPullRequests(rows)
}

func (r *PullRequestRepo) ListByAuthor(ctx context.Context, orgID string, authorName string, limit int) ([]model.PullRequest, error) {
	const query = `
		SELECT ` + pullRequestColumns + `
		FROM pull_request_records
		WHERE org_id = $1 AND author_name = $2
		ORDER BY created_at_pr DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, authorName, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanPullRequests(rows)
}

// ListReferencedKeys returns the distinct ticket keys mentioned by any pull
// request of the organization.
func (r *PullRequestRepo) ListReferencedKeys(ctx context.Context, orgID string) ([]string, error) {
	const query = `
		SELECT DISTINCT unnest(ticket_references)
		FROM pull_request_records
		WHERE org_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// StatsForRepository counts pull requests in one repository by state.
func (r *PullRequestRepo) StatsForRepository(ctx context.Context, orgID string, repositoryID string) (*model.PullRequestStats, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE state = 'merged'),
			COUNT(*) FILTER (WHERE state = 'open'),
			COUNT(*) FILTER (WHERE state = 'closed')
		FROM pull_request_records
		WHERE org_id = $1 AND repository_id = $2
	`
	var stats model.PullRequestStats
	err := r.db.QueryRowContext(ctx, query, orgID, repositoryID).Scan(
		&stats.TotalPRs, &stats.MergedPRs, &stats.OpenPRs, &stats.ClosedPRs,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanPullRequests(rows *sql.Rows) ([]model.PullRequest, error) {
	var items []model.PullRequest
	for rows.Next() {
		var p model.PullRequest
		var shas, tickets pq.StringArray
		err := rows.Scan(
			&p.ID, &p.OrgID, &p.RepositoryID, &p.PRNumber, &p.Title, &p.Description, &p.AuthorName,
			&p.State, &p.CreatedAtPR, &p.MergedAt, &p.ClosedAt, &shas, &tickets,
		)
		if err != nil {
			return nil, err
		}
		p.CommitSHAs = shas
		p.TicketReferences = tickets
		items = append(items, p)
	}
	return items, rows.Err()
}
