package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"dealdesk-llm/internal/domain"
)

type DocumentRepository interface {
	ListByCompany(ctx context.Context, tenantID, companyID string) ([]domain.DocumentExcerpt, error)
	SearchRelevant(ctx context.Context, tenantID, companyID string, queryEmbedding pgvector.Vector, k int) ([]domain.DocumentExcerpt, error)
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

// ListByCompany devuelve solo documentos con texto ya extraido, en orden de
// subida. La extraccion la hace el pipeline externo de documentos.
func (r *PgDocumentRepository) ListByCompany(ctx context.Context, tenantID, companyID string) ([]domain.DocumentExcerpt, error) {
	const query = `
		SELECT d.id, d.company_id, d.file_name, d.classification, d.extracted_text, d.embedding, d.created_at
		FROM document_excerpts d
		JOIN companies c ON c.id = d.company_id
		WHERE c.tenant_id = $1 AND d.company_id = $2 AND d.extracted_text <> ''
		ORDER BY d.created_at
	`
	rows, err := r.pool.Query(ctx, query, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SearchRelevant ordena los extractos por cercania al embedding de consulta.
func (r *PgDocumentRepository) SearchRelevant(ctx context.Context, tenantID, companyID string, queryEmbedding pgvector.Vector, k int) ([]domain.DocumentExcerpt, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT d.id, d.company_id, d.file_name, d.classification, d.extracted_text, d.embedding, d.created_at
		FROM document_excerpts d
		JOIN companies c ON c.id = d.company_id
		WHERE c.tenant_id = $1 AND d.company_id = $2 AND d.extracted_text <> '' AND d.embedding IS NOT NULL
		ORDER BY d.embedding <=> $3
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, tenantID, companyID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocuments(rows pgxRows) ([]domain.DocumentExcerpt, error) {
	var docs []domain.DocumentExcerpt
	for rows.Next() {
		var d domain.DocumentExcerpt
		var classification sql.NullString
		var embedding *pgvector.Vector

		if err := rows.Scan(
			&d.ID,
			&d.CompanyID,
			&d.FileName,
			&classification,
			&d.ExtractedText,
			&embedding,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if classification.Valid {
			d.Classification = classification.String
		}
		if embedding != nil {
			d.Embedding = *embedding
			d.HasEmbedding = true
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// pgxRows es una interfaz minima para escanear rows de pgx y simplificar tests.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
