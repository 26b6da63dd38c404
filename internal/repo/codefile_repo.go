package repo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

const codeFileColumns = `id, org_id, repository_id, file_path, language, size_bytes, functions, classes`

type CodeFileRepo struct {
	db *sql.DB
}

func NewCodeFileRepo(db *sql.DB) *CodeFileRepo {
	return &CodeFileRepo{db: db}
}

func (r *CodeFileRepo) Upsert(ctx context.Context, f *model.CodeFile) error {
	const query = `
		INSERT INTO code_file_records (` + codeFileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (repository_id, file_path) DO UPDATE SET
			language = EXCLUDED.language,
			size_bytes = EXCLUDED.size_bytes,
			functions = EXCLUDED.functions,
			classes = EXCLUDED.classes
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.OrgID, f.RepositoryID, f.FilePath, f.Language, f.SizeBytes,
		pq.Array(f.Functions), pq.Array(f.Classes),
	)
	return err
}

func (r *CodeFileRepo) CountForRepository(ctx context.Context, orgID string, repositoryID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM code_file_records
		WHERE org_id = $1 AND repository_id = $2
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, orgID, repositoryID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CodeFileRepo) GetByPath(ctx context.Context, orgID string, filePath string) (*model.CodeFile, error) {
	const query = `
		SELECT ` + codeFileColumns + `
		FROM code_file_records
		WHERE org_id = $1 AND file_path = $2
	`
	row := r.db.QueryRowContext(ctx, query, orgID, filePath)
	var f model.CodeFile
	var functions, classes pq.StringArray
	err := row.Scan(&f.ID, &f.OrgID, &f.RepositoryID, &f.FilePath, &f.Language, &f.SizeBytes, &functions, &classes)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.Functions = functions
	f.Classes = classes
	return &f, nil
}
