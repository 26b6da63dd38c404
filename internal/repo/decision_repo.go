package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/dbutil"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

type DecisionRepo struct {
	db *sql.DB
}

func NewDecisionRepo(db *sql.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

func (r *DecisionRepo) Create(ctx context.Context, d *model.Decision) error {
	data := map[string]interface{}{
		"id":                d.ID,
		"org_id":            d.OrgID,
		"ticket_key":        d.TicketKey,
		"decision_summary":  d.DecisionSummary,
		"problem_statement": d.ProblemStatement,
		"chosen_approach":   d.ChosenApproach,
		"created_at":        d.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("decisions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DecisionRepo) GetByTicketKey(ctx context.Context, orgID string, ticketKey string) (*model.Decision, error) {
	const query = `
		SELECT id, org_id, ticket_key, decision_summary, problem_statement, chosen_approach, created_at
		FROM decisions
		WHERE org_id = $1 AND ticket_key = $2
	`
	row := r.db.QueryRowContext(ctx, query, orgID, ticketKey)
	var d model.Decision
	err := row.Scan(&d.ID, &d.OrgID, &d.TicketKey, &d.DecisionSummary, &d.ProblemStatement, &d.ChosenApproach, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DecisionRepo) ListByOrg(ctx context.Context, orgID string) ([]model.Decision, error) {
	const query = `
		SELECT id, org_id, ticket_key, decision_summary, problem_statement, chosen_approach, created_at
		FROM decisions
		WHERE org_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(&d.ID, &d.OrgID, &d.TicketKey, &d.DecisionSummary, &d.ProblemStatement, &d.ChosenApproach, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
