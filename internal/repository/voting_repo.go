package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk-llm/internal/domain"
)

type VotingRepository interface {
	CreateRound(ctx context.Context, round domain.VotingRound) error
	GetRound(ctx context.Context, tenantID, roundID string) (domain.VotingRound, error)
	UpdateRoundStatus(ctx context.Context, tenantID, roundID, status string) error
	SetRevealedAt(ctx context.Context, tenantID, roundID string, revealedAt time.Time) error
	UpsertVote(ctx context.Context, vote domain.Vote) error
	ListVotes(ctx context.Context, roundID string) ([]domain.Vote, error)
}

type PgVotingRepository struct {
	pool *pgxpool.Pool
}

func NewPgVotingRepository(pool *pgxpool.Pool) *PgVotingRepository {
	return &PgVotingRepository{pool: pool}
}

func (r *PgVotingRepository) CreateRound(ctx context.Context, round domain.VotingRound) error {
	const query = `
		INSERT INTO voting_rounds (id, tenant_id, assessment_id, status, deadline, quorum_percent, participants, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	participants, err := json.Marshal(round.Participants)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		round.ID,
		round.TenantID,
		round.AssessmentID,
		round.Status,
		round.Deadline,
		round.QuorumPercent,
		participants,
		round.CreatedBy,
		round.CreatedAt,
	)
	return err
}

func (r *PgVotingRepository) GetRound(ctx context.Context, tenantID, roundID string) (domain.VotingRound, error) {
	const query = `
		SELECT id, tenant_id, assessment_id, status, deadline, quorum_percent, revealed_at, participants, created_by, created_at
		FROM voting_rounds
		WHERE tenant_id = $1 AND id = $2
	`
	var round domain.VotingRound
	var revealedAt sql.NullTime
	var participants []byte

	err := r.pool.QueryRow(ctx, query, tenantID, roundID).Scan(
		&round.ID,
		&round.TenantID,
		&round.AssessmentID,
		&round.Status,
		&round.Deadline,
		&round.QuorumPercent,
		&revealedAt,
		&participants,
		&round.CreatedBy,
		&round.CreatedAt,
	)
	if err != nil {
		return domain.VotingRound{}, err
	}
	if revealedAt.Valid {
		t := revealedAt.Time
		round.RevealedAt = &t
	}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &round.Participants); err != nil {
			return domain.VotingRound{}, err
		}
	}
	return round, nil
}

func (r *PgVotingRepository) UpdateRoundStatus(ctx context.Context, tenantID, roundID, status string) error {
	const query = `
		UPDATE voting_rounds
		SET status = $3
		WHERE tenant_id = $1 AND id = $2 AND status = 'open'
	`
	_, err := r.pool.Exec(ctx, query, tenantID, roundID, status)
	return err
}

// SetRevealedAt solo escribe si revealed_at sigue nulo: una vez seteado
// nunca se limpia ni se mueve.
func (r *PgVotingRepository) SetRevealedAt(ctx context.Context, tenantID, roundID string, revealedAt time.Time) error {
	const query = `
		UPDATE voting_rounds
		SET revealed_at = $3
		WHERE tenant_id = $1 AND id = $2 AND revealed_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, tenantID, roundID, revealedAt)
	return err
}

// UpsertVote garantiza una sola papeleta por (round, voter): la segunda
// emision pisa a la primera.
func (r *PgVotingRepository) UpsertVote(ctx context.Context, vote domain.Vote) error {
	const query = `
		INSERT INTO votes (round_id, voter_id, value, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (round_id, voter_id)
		DO UPDATE SET
			value = EXCLUDED.value,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		vote.RoundID,
		vote.VoterID,
		vote.Value,
		vote.Comment,
		vote.CreatedAt,
		vote.UpdatedAt,
	)
	return err
}

func (r *PgVotingRepository) ListVotes(ctx context.Context, roundID string) ([]domain.Vote, error) {
	const query = `
		SELECT round_id, voter_id, value, comment, created_at, updated_at
		FROM votes
		WHERE round_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var v domain.Vote
		var comment sql.NullString
		if err := rows.Scan(
			&v.RoundID,
			&v.VoterID,
			&v.Value,
			&comment,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if comment.Valid {
			v.Comment = comment.String
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return votes, nil
}
