package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk-llm/internal/domain"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment domain.Assessment) error
	GetByID(ctx context.Context, tenantID, id string) (domain.Assessment, error)
	GetLatestCompleted(ctx context.Context, tenantID, companyID string) (domain.Assessment, error)
	MarkCompleted(ctx context.Context, assessment domain.Assessment) error
	MarkFailed(ctx context.Context, tenantID, id, errorDetail string) error
	Delete(ctx context.Context, tenantID, id string) error
}

type PgAssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAssessmentRepository(pool *pgxpool.Pool) *PgAssessmentRepository {
	return &PgAssessmentRepository{pool: pool}
}

func (r *PgAssessmentRepository) Create(ctx context.Context, a domain.Assessment) error {
	const query = `
		INSERT INTO assessments (id, tenant_id, company_id, kind, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.TenantID,
		a.CompanyID,
		a.Kind,
		a.Status,
		a.CreatedAt,
	)
	return err
}

func (r *PgAssessmentRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Assessment, error) {
	const query = `
		SELECT id, tenant_id, company_id, kind, status, content, dimension_scores, recommendation,
		       overall_score, processing_ms, input_tokens, output_tokens, error_detail, created_at, completed_at
		FROM assessments
		WHERE tenant_id = $1 AND id = $2
	`
	var a domain.Assessment
	var content, scores, recommendation []byte
	var overall sql.NullInt64
	var processingMS, inputTokens, outputTokens sql.NullInt64
	var errorDetail sql.NullString
	var completedAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&a.ID,
		&a.TenantID,
		&a.CompanyID,
		&a.Kind,
		&a.Status,
		&content,
		&scores,
		&recommendation,
		&overall,
		&processingMS,
		&inputTokens,
		&outputTokens,
		&errorDetail,
		&a.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return domain.Assessment{}, err
	}

	if len(content) > 0 {
		_ = json.Unmarshal(content, &a.Content)
	}
	if len(scores) > 0 {
		_ = json.Unmarshal(scores, &a.DimensionScores)
	}
	if len(recommendation) > 0 {
		_ = json.Unmarshal(recommendation, &a.Recommendation)
	}
	if overall.Valid {
		v := int(overall.Int64)
		a.OverallScore = &v
	}
	if processingMS.Valid {
		a.ProcessingMS = processingMS.Int64
	}
	if inputTokens.Valid {
		a.InputTokens = int(inputTokens.Int64)
	}
	if outputTokens.Valid {
		a.OutputTokens = int(outputTokens.Int64)
	}
	if errorDetail.Valid {
		a.ErrorDetail = errorDetail.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

// GetLatestCompleted devuelve el assessment completado mas reciente de la
// empresa, para dar contexto a las respuestas de chat.
func (r *PgAssessmentRepository) GetLatestCompleted(ctx context.Context, tenantID, companyID string) (domain.Assessment, error) {
	const query = `
		SELECT id
		FROM assessments
		WHERE tenant_id = $1 AND company_id = $2 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT 1
	`
	var id string
	if err := r.pool.QueryRow(ctx, query, tenantID, companyID).Scan(&id); err != nil {
		return domain.Assessment{}, err
	}
	return r.GetByID(ctx, tenantID, id)
}

// MarkCompleted escribe el registro completo en un solo update. Si la fila
// ya no existe (borrada durante la generacion) el update afecta 0 filas y
// eso es un no-op inofensivo.
func (r *PgAssessmentRepository) MarkCompleted(ctx context.Context, a domain.Assessment) error {
	const query = `
		UPDATE assessments
		SET status = $3, content = $4, dimension_scores = $5, recommendation = $6,
		    overall_score = $7, processing_ms = $8, input_tokens = $9, output_tokens = $10,
		    completed_at = $11
		WHERE tenant_id = $1 AND id = $2 AND status IN ('pending', 'processing')
	`
	content, err := json.Marshal(a.Content)
	if err != nil {
		return err
	}
	scores, err := json.Marshal(a.DimensionScores)
	if err != nil {
		return err
	}
	recommendation, err := json.Marshal(a.Recommendation)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		a.TenantID,
		a.ID,
		domain.AssessmentStatusCompleted,
		content,
		scores,
		recommendation,
		a.OverallScore,
		a.ProcessingMS,
		a.InputTokens,
		a.OutputTokens,
		a.CompletedAt,
	)
	return err
}

// MarkFailed deja el detalle de error textual tal cual se capturo.
func (r *PgAssessmentRepository) MarkFailed(ctx context.Context, tenantID, id, errorDetail string) error {
	const query = `
		UPDATE assessments
		SET status = $3, error_detail = $4, completed_at = $5
		WHERE tenant_id = $1 AND id = $2 AND status IN ('pending', 'processing')
	`
	_, err := r.pool.Exec(ctx, query, tenantID, id, domain.AssessmentStatusFailed, errorDetail, time.Now().UTC())
	return err
}

func (r *PgAssessmentRepository) Delete(ctx context.Context, tenantID, id string) error {
	const query = `DELETE FROM assessments WHERE tenant_id = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, tenantID, id)
	return err
}
