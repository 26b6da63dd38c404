package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/dbutil"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

type RepositoryRepo struct {
	db *sql.DB
}

func NewRepositoryRepo(db *sql.DB) *RepositoryRepo {
	return &RepositoryRepo{db: db}
}

func (r *RepositoryRepo) Create(ctx context.Context, item *model.Repository) error {
	data := map[string]interface{}{
		"id":         item.ID,
		"org_id":     item.OrgID,
		"repo_name":  item.RepoName,
		"repo_url":   item.RepoURL,
		"provider":   item.Provider,
		"branch":     item.Branch,
		"created_at": item.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("repositories", []map[string]interface{}{data})
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

func (r *RepositoryRepo) GetByID(ctx context.Context, orgID string, id string) (*model.Repository, error) {
	const query = `
		SELECT id, org_id, repo_name, repo_url, provider, branch, created_at
		FROM repositories
		WHERE org_id = $1 AND id = $2
	`
	row := r.db.QueryRowContext(ctx, query, orgID, id)
	var item model.Repository
	err := row.Scan(&item.ID, &item.OrgID, &item.RepoName, &item.RepoURL, &item.Provider, &item.Branch, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RepositoryRepo) ListByOrg(ctx context.Context, orgID string) ([]model.Repository, error) {
	where := map[string]interface{}{
		"org_id":   orgID,
		"_orderby": "created_at",
	}
	sqlStr, args, err := builder.BuildSelect("repositories",
		where, []string{"id", "org_id", "repo_name", "repo_url", "provider", "branch", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.Repository
	for rows.Next() {
		var item model.Repository
		if err := rows.Scan(&item.ID, &item.OrgID, &item.RepoName, &item.RepoURL, &item.Provider, &item.Branch, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
