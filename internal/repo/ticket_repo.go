package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

const ticketColumns = `id, org_id, ticket_key, summary, description, issue_type, status, priority,
	assignee, reporter, story_points, labels, components, created_date, updated_date, resolved_date`

type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// Upsert keeps one row per (org_id, ticket_key) so re-indexing the same Jira
// project refreshes tickets in place.
func (r *TicketRepo) Upsert(ctx context.Context, t *model.Ticket) error {
	const query = `
		INSERT INTO jira_ticket_records (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (org_id, ticket_key) DO UPDATE SET
			summary = EXCLUDED.summary,
			description = EXCLUDED.description,
			issue_type = EXCLUDED.issue_type,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			assignee = EXCLUDED.assignee,
			reporter = EXCLUDED.reporter,
			story_points = EXCLUDED.story_points,
			labels = EXCLUDED.labels,
			components = EXCLUDED.components,
			created_date = EXCLUDED.created_date,
			updated_date = EXCLUDED.updated_date,
			resolved_date = EXCLUDED.resolved_date
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.OrgID, t.TicketKey, t.Summary, t.Description, t.IssueType, t.Status, t.Priority,
		t.Assignee, t.Reporter, t.StoryPoints, pq.Array(t.Labels), pq.Array(t.Components),
		t.CreatedDate, t.UpdatedDate, t.ResolvedDate,
	)
	return err
}

func (r *TicketRepo) GetByKey(ctx context.Context, orgID string, ticketKey string) (*model.Ticket, error) {
	const query = `
		SELECT ` + ticketColumns + `
		FROM jira_ticket_records
		WHERE org_id = $1 AND ticket_key = $2
	`
	row := r.db.QueryRowContext(ctx, query, orgID, ticketKey)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListKeysCreatedSince returns the keys of tickets created on or after the
// cutoff.
func (r *TicketRepo) ListKeysCreatedSince(ctx context.Context, orgID string, since time.Time) ([]string, error) {
	const query = `SELECT ticket_key FROM jira_ticket_records WHERE org_id = $1 AND created_date >= $2`
	rows, err := r.db.QueryContext(ctx, query, orgID, since)
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

func (r *TicketRepo) ListByKeys(ctx context.Context, orgID string, keys []string) ([]model.Ticket, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	const query = `
		SELECT ` + ticketColumns + `
		FROM jira_ticket_records
		WHERE org_id = $1 AND ticket_key = ANY($2)
		ORDER BY ticket_key
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanTickets(rows)
}

// ListSimilar returns tickets sharing a component with the given one or whose
// summary is trigram-similar to it, best match first. Requires pg_trgm.
func (r *TicketRepo) ListSimilar(ctx context.Context, orgID string, excludeKey string, components []string, summary string, limit int) ([]model.Ticket, error) {
	const query = `
		SELECT ` + ticketColumns + `
		FROM jira_ticket_records
		WHERE org_id = $1
			AND ticket_key != $2
			AND (
				(components && $3 AND cardinality(components) > 0)
				OR similarity(summary, $4) > 0.3
			)
		ORDER BY similarity(summary, $4) DESC
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, excludeKey, pq.Array(components), summary, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanTickets(rows)
}

// ListStale returns tickets in non-terminal statuses whose last update is
// older than the cutoff.
func (r *TicketRepo) ListStale(ctx context.Context, orgID string, cutoff time.Time) ([]model.Ticket, error) {
	const query = `
		SELECT ` + ticketColumns + `
		FROM jira_ticket_records
		WHERE org_id = $1
			AND status NOT IN ('Done', 'Closed', 'Resolved')
			AND updated_date IS NOT NULL
			AND updated_date < $2
		ORDER BY updated_date
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanTickets(rows)
}

// missingDecisionsQuery finds planning tickets that were implemented (at least
// one commit references them) but have no recorded decision entry.
const missingDecisionsQuery = `
	SELECT ` + ticketColumns + `
	FROM jira_ticket_records t
	WHERE t.org_id = $1
		AND LOWER(t.issue_type) IN ('story', 'epic', 'feature')
		AND EXISTS (
			SELECT 1 FROM commit_records c
			WHERE c.org_id = t.org_id AND t.ticket_key = ANY(c.ticket_references)
		)
		AND NOT EXISTS (
			SELECT 1 FROM decisions d
			WHERE d.org_id = t.org_id AND d.ticket_key = t.ticket_key
		)
	ORDER BY t.ticket_key
`

func (r *TicketRepo) ListMissingDecisions(ctx context.Context, orgID string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, missingDecisionsQuery, orgID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanTickets(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	var labels, components pq.StringArray
	err := row.Scan(
		&t.ID, &t.OrgID, &t.TicketKey, &t.Summary, &t.Description, &t.IssueType, &t.Status, &t.Priority,
		&t.Assignee, &t.Reporter, &t.StoryPoints, &labels, &components,
		&t.CreatedDate, &t.UpdatedDate, &t.ResolvedDate,
	)
	if err != nil {
		return nil, err
	}
	t.Labels = labels
	t.Components = components
	return &t, nil
}

func scanTickets(rows *sql.Rows) ([]model.Ticket, error) {
	var items []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
