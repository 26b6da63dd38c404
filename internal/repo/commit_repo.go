package repo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

const commitColumns = `id, org_id, repository_id, sha, message, author_name, author_email,
	commit_date, files_changed, additions, deletions, ticket_references`

type CommitRepo struct {
	db *sql.DB
}

func NewCommitRepo(db *sql.DB) *CommitRepo {
	return &CommitRepo{db: db}
}

func (r *CommitRepo) Upsert(ctx context.Context, c *model.Commit) error {
	const query = `
		INSERT INTO commit_records (` + commitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (repository_id, sha) DO UPDATE SET
			message = EXCLUDED.message,
			author_name = EXCLUDED.author_name,
			author_email = EXCLUDED.author_email,
			commit_date = EXCLUDED.commit_date,
			files_changed = EXCLUDED.files_changed,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			ticket_references = EXCLUDED.ticket_references
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OrgID, c.RepositoryID, c.SHA, c.Message, c.AuthorName, c.AuthorEmail,
		c.CommitDate, pq.Array(c.FilesChanged), c.Additions, c.Deletions, pq.Array(c.TicketReferences),
	)
	return err
}

func (r *CommitRepo) ListForTicket(ctx context.Context, orgID string, ticketKey string) ([]model.Commit, error) {
	const query = `
		SELECT ` + commitColumns + `
		FROM commit_records
		WHERE org_id = $1 AND $2 = ANY(ticket_references)
		ORDER BY commit_date
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, ticketKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCommits(rows)
}

func (r *CommitRepo) ListByAuthor(ctx context.Context, orgID string, authorEmail string, limit int) ([]model.Commit, error) {
	const query = `
		SELECT ` + commitColumns + `
		FROM commit_records
		WHERE org_id = $1 AND author_email = $2
		ORDER BY commit_date DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, authorEmail, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCommits(rows)
}

// ListForFile returns commits that touched the given path, newest first.
func (r *CommitRepo) ListForFile(ctx context.Context, orgID string, filePath string, limit int) ([]model.Commit, error) {
	const query = `
		SELECT ` + commitColumns + `
		FROM commit_records
		WHERE org_id = $1 AND $2 = ANY(files_changed)
		ORDER BY commit_date DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, filePath, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCommits(rows)
}

func (r *CommitRepo) GetBySHA(ctx context.Context, orgID string, sha string) (*model.Commit, error) {
	const query = `
		SELECT ` + commitColumns + `
		FROM commit_records
		WHERE org_id = $1 AND sha = $2
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, sha)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items, err := scanCommits(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &items[0], nil
}

// ListReferencedKeys returns the distinct ticket keys mentioned by any commit
// of the organization.
func (r *CommitRepo) ListReferencedKeys(ctx context.Context, orgID string) ([]string, error) {
	const query = `
		SELECT DISTINCT unnest(ticket_references)
		FROM commit_records
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

// ListUndocumented returns commits that reference no ticket at all. Merge and
// revert commits are routine noise and excluded.
func (r *CommitRepo) ListUndocumented(ctx context.Context, orgID string, limit int) ([]model.Commit, error) {
	const query = `
		SELECT ` + commitColumns + `
		FROM commit_records
		WHERE org_id = $1
			AND COALESCE(array_length(ticket_references, 1), 0) = 0
			AND message NOT ILIKE 'merge%'
			AND message NOT ILIKE 'revert%'
		ORDER BY commit_date DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanCommits(rows)
}

// StatsForRepository aggregates commit activity for one repository.
func (r *CommitRepo) StatsForRepository(ctx context.Context, orgID string, repositoryID string) (*model.CommitStats, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(DISTINCT author_email),
			COALESCE(SUM(additions), 0),
			COALESCE(SUM(deletions), 0),
			MIN(commit_date),
			MAX(commit_date)
		FROM commit_records
		WHERE org_id = $1 AND repository_id = $2
	`
	var stats model.CommitStats
	err := r.db.QueryRowContext(ctx, query, orgID, repositoryID).Scan(
		&stats.TotalCommits, &stats.UniqueAuthors,
		&stats.TotalAdditions, &stats.TotalDeletions,
		&stats.FirstCommitDate, &stats.LastCommitDate,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// TopContributors ranks authors in one repository by commit count.
func (r *CommitRepo) TopContributors(ctx context.Context, orgID string, repositoryID string, limit int) ([]model.ContributorStat, error) {
	const query = `
		SELECT author_name, author_email, COUNT(*),
			COALESCE(SUM(additions), 0), COALESCE(SUM(deletions), 0)
		FROM commit_records
		WHERE org_id = $1 AND repository_id = $2
		GROUP BY author_name, author_email
		ORDER BY COUNT(*) DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, repositoryID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.ContributorStat
	for rows.Next() {
		var s model.ContributorStat
		if err := rows.Scan(&s.AuthorName, &s.AuthorEmail, &s.CommitCount, &s.LinesAdded, &s.LinesDeleted); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ListReferencedKeysForRepository returns the distinct ticket keys mentioned by
// commits in one repository.
func (r *CommitRepo) ListReferencedKeysForRepository(ctx context.Context, orgID string, repositoryID string) ([]string, error) {
	const query = `
		SELECT DISTINCT unnest(ticket_references)
		FROM commit_records
		WHERE org_id = $1 AND repository_id = $2
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, repositoryID)
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

func scanCommits(rows *sql.Rows) ([]model.Commit, error) {
	var items []model.Commit
	for rows.Next() {
		var c model.Commit
		var files, tickets pq.StringArray
		err := rows.Scan(
			&c.ID, &c.OrgID, &c.RepositoryID, &c.SHA, &c.Message, &c.AuthorName, &c.AuthorEmail,
			&c.CommitDate, &files, &c.Additions, &c.Deletions, &tickets,
		)
		if err != nil {
			return nil, err
		}
		c.FilesChanged = files
		c.TicketReferences = tickets
		items = append(items, c)
	}
	return items, rows.Err()
}
