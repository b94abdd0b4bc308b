package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk-llm/internal/domain"
)

type UsageRepository interface {
	CreateRecord(ctx context.Context, record domain.UsageRecord) error
	GetMonthlyTokens(ctx context.Context, tenantID, yearMonth string) (int, error)
	SetMonthlyTokens(ctx context.Context, tenantID, yearMonth string, tokens int) error
}

type PgUsageRepository struct {
	pool *pgxpool.Pool
}

func NewPgUsageRepository(pool *pgxpool.Pool) *PgUsageRepository {
	return &PgUsageRepository{pool: pool}
}

func (r *PgUsageRepository) CreateRecord(ctx context.Context, record domain.UsageRecord) error {
	const query = `
		INSERT INTO usage_records (id, tenant_id, assessment_id, kind, input_tokens, output_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.TenantID,
		record.AssessmentID,
		record.Kind,
		record.InputTokens,
		record.OutputTokens,
		record.CreatedAt,
	)
	return err
}

func (r *PgUsageRepository) GetMonthlyTokens(ctx context.Context, tenantID, yearMonth string) (int, error) {
	const query = `
		SELECT tokens
		FROM monthly_usage
		WHERE tenant_id = $1 AND year_month = $2
	`
	var tokens int
	err := r.pool.QueryRow(ctx, query, tenantID, yearMonth).Scan(&tokens)
	if errors.Is(err, pgx.ErrNoRows) {
		// Sin fila todavia: el contador arranca en cero.
		return 0, nil
	}
	return tokens, err
}

// SetMonthlyTokens escribe el valor calculado por el caller. El incremento
// es read-then-write sin lock optimista: completions concurrentes del mismo
// tenant pueden pisarse y subcontar. Aproximacion aceptada; si algun dia se
// necesita conteo exacto, esto se reemplaza por un incremento atomico aca.
func (r *PgUsageRepository) SetMonthlyTokens(ctx context.Context, tenantID, yearMonth string, tokens int) error {
	const query = `
		INSERT INTO monthly_usage (tenant_id, year_month, tokens)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, year_month)
		DO UPDATE SET tokens = EXCLUDED.tokens
	`
	_, err := r.pool.Exec(ctx, query, tenantID, yearMonth, tokens)
	return err
}
