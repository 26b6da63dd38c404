package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/dbutil"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

type OrganizationRepo struct {
	db *sql.DB
}

func NewOrganizationRepo(db *sql.DB) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

func (r *OrganizationRepo) Create(ctx context.Context, org *model.Organization) error {
	data := map[string]interface{}{
		"id":            org.ID,
		"name":          org.Name,
		"plan":          org.Plan,
		"monthly_quota": org.MonthlyQuota,
		"used_quota":    org.UsedQuota,
		"is_active":     org.IsActive,
		"created_at":    org.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("organizations", []map[string]interface{}{data})
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

func (r *OrganizationRepo) GetByID(ctx context.Context, orgID string) (*model.Organization, error) {
	const query = `
		SELECT id, name, plan, monthly_quota, used_quota, is_active, created_at
		FROM organizations
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, orgID)
	var org model.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Plan, &org.MonthlyQuota, &org.UsedQuota, &org.IsActive, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepo) ListActive(ctx context.Context) ([]model.Organization, error) {
	const query = `
		SELECT id, name, plan, monthly_quota, used_quota, is_active, created_at
		FROM organizations
		WHERE is_active
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var orgs []model.Organization
	for rows.Next() {
		var org model.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Plan, &org.MonthlyQuota, &org.UsedQuota, &org.IsActive, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// CheckAndIncrementQuota reserves n units of the monthly indexing quota in a
// single UPDATE so concurrent indexers cannot overshoot the limit.
func (r *OrganizationRepo) CheckAndIncrementQuota(ctx context.Context, orgID string, n int) error {
	const query = `
		UPDATE organizations
		SET used_quota = used_quota + $2
		WHERE id = $1 AND is_active AND used_quota + $2 <= monthly_quota
	`
	res, err := r.db.ExecContext(ctx, query, orgID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, orgID); err != nil {
		return err
	}
	return appErr.ErrQuotaExceeded
}

func (r *OrganizationRepo) ResetQuotas(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE organizations SET used_quota = 0`)
	return err
}

// Purge removes the organization and all relational rows that belong to it.
// Vector collections are cleaned separately by the caller.
func (r *OrganizationRepo) Purge(ctx context.Context, orgID string) error {
	tables := []string{
		"decisions",
		"jira_ticket_records",
		"commit_records",
		"pull_request_records",
		"code_file_records",
		"repositories",
		"organizations",
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, table := range tables {
		column := "org_id"
		if table == "organizations" {
			column = "id"
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = $1`, orgID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
