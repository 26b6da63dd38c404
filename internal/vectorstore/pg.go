package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
)

type pgIndex struct {
	db  *sql.DB
	dim int
}

// NewPgIndex builds an Index backed by postgres with the pgvector extension.
// Each collection is one table with a cosine ivfflat index.
func NewPgIndex(db *sql.DB, dim int) Index {
	return &pgIndex{db: db, dim: dim}
}

func (s *pgIndex) EnsureCollection(ctx context.Context, collection string) error {
	table := pq.QuoteIdentifier(sanitizeIdent(collection))
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			org_id TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			keywords TEXT[] NOT NULL DEFAULT '{}',
			payload JSONB NOT NULL DEFAULT '{}',
			ctime BIGINT NOT NULL
		)
	`, table, s.dim)
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	orgIdx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (org_id)`,
		pq.QuoteIdentifier(sanitizeIdent(collection)+"_org_idx"), table)
	if _, err := s.db.ExecContext(ctx, orgIdx); err != nil {
		return err
	}
	embIdx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		pq.QuoteIdentifier(sanitizeIdent(collection)+"_embedding_idx"), table)
	if _, err := s.db.ExecContext(ctx, embIdx); err != nil {
		return err
	}
	return nil
}

func (s *pgIndex) VerifyCollections(ctx context.Context, collections []string) (map[string]bool, error) {
	result := make(map[string]bool, len(collections))
	for _, collection := range collections {
		var reg sql.NullString
		err := s.db.QueryRowContext(ctx, `SELECT to_regclass($1)`, sanitizeIdent(collection)).Scan(&reg)
		if err != nil {
			return nil, err
		}
		result[collection] = reg.Valid
	}
	return result, nil
}

func (s *pgIndex) Upsert(ctx context.Context, collection string, orgID string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if len(p.Embedding) != s.dim {
			return fmt.Errorf("%w: collection %s expects %d dims, got %d",
				appErr.ErrDimensionMismatch, collection, s.dim, len(p.Embedding))
		}
	}
	table := pq.QuoteIdentifier(sanitizeIdent(collection))
	query := fmt.Sprintf(`
		INSERT INTO %s (id, org_id, embedding, keywords, payload, ctime)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table)
	now := time.Now().UnixMilli()
	for _, p := range points {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		keywords := p.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		_, err = s.db.ExecContext(ctx, query,
			id,
			orgID,
			pgvector.NewVector(p.Embedding),
			pq.Array(keywords),
			payload,
			now,
		)
		if err != nil {
			return fmt.Errorf("upsert into %s: %w", collection, err)
		}
	}
	return nil
}

func (s *pgIndex) Count(ctx context.Context, collection string, orgID string) (int64, error) {
	table := pq.QuoteIdentifier(sanitizeIdent(collection))
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE org_id = $1`, table)
	var count int64
	if err := s.db.QueryRowContext(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *pgIndex) SemanticSearch(ctx context.Context, collection string, orgID string, query []float32, limit int) ([]Hit, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dims, expected %d",
			appErr.ErrDimensionMismatch, len(query), s.dim)
	}
	table := pq.QuoteIdentifier(sanitizeIdent(collection))
	sqlStr := fmt.Sprintf(`
		SELECT id, keywords, payload, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE org_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, table)
	rows, err := s.db.QueryContext(ctx, sqlStr, pgvector.NewVector(query), orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHits(rows, true)
}

func (s *pgIndex) KeywordScroll(ctx context.Context, collection string, orgID string, terms []string, limit int) ([]Hit, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	table := pq.QuoteIdentifier(sanitizeIdent(collection))
	sqlStr := fmt.Sprintf(`
		SELECT id, keywords, payload
		FROM %s
		WHERE org_id = $1 AND keywords && $2
		LIMIT $3
	`, table)
	rows, err := s.db.QueryContext(ctx, sqlStr, orgID, pq.Array(terms), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHits(rows, false)
}

func (s *pgIndex) DeleteOrganization(ctx context.Context, orgID string) error {
	for _, collection := range SharedCollections() {
		table := pq.QuoteIdentifier(sanitizeIdent(collection))
		query := fmt.Sprintf(`DELETE FROM %s WHERE org_id = $1`, table)
		if _, err := s.db.ExecContext(ctx, query, orgID); err != nil {
			return err
		}
	}
	docTable := pq.QuoteIdentifier(DocCollection(orgID))
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, docTable)); err != nil {
		return err
	}
	return nil
}

func scanHits(rows *sql.Rows, withScore bool) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		var hit Hit
		var keywords pq.StringArray
		var payload []byte
		var err error
		if withScore {
			err = rows.Scan(&hit.ID, &keywords, &payload, &hit.Score)
		} else {
			err = rows.Scan(&hit.ID, &keywords, &payload)
		}
		if err != nil {
			return nil, err
		}
		hit.Keywords = keywords
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &hit.Payload); err != nil {
				return nil, fmt.Errorf("decode payload: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
