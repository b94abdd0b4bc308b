package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk-llm/internal/domain"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, tenantID, companyID string) (domain.Company, error)
}

type PgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPgCompanyRepository(pool *pgxpool.Pool) *PgCompanyRepository {
	return &PgCompanyRepository{pool: pool}
}

// GetByID siempre filtra por tenant: el acceso cruzado es imposible por
// construccion, no por chequeo posterior.
func (r *PgCompanyRepository) GetByID(ctx context.Context, tenantID, companyID string) (domain.Company, error) {
	const query = `
		SELECT id, tenant_id, name, stage, sector, raise_amount, valuation, description, website, created_at
		FROM companies
		WHERE tenant_id = $1 AND id = $2
	`
	var c domain.Company
	err := r.pool.QueryRow(ctx, query, tenantID, companyID).Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&c.Stage,
		&c.Sector,
		&c.RaiseAmount,
		&c.Valuation,
		&c.Description,
		&c.Website,
		&c.CreatedAt,
	)
	return c, err
}
