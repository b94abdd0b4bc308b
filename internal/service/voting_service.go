package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/email"
	"dealdesk-llm/internal/repository"
)

var (
	ErrRoundNotFound     = errors.New("voting round not found")
	ErrRoundNotOpen      = errors.New("voting round is not open")
	ErrDeadlinePassed    = errors.New("voting deadline has passed")
	ErrNotParticipant    = errors.New("voter is not a round participant")
	ErrInvalidVoteValue  = errors.New("invalid vote value")
	ErrInvalidQuorum     = errors.New("quorum percent must be between 1 and 100")
	ErrNoParticipants    = errors.New("round needs at least one participant")
	ErrNotAuthorized     = errors.New("actor is not authorized for this round")
	ErrAlreadyRevealed   = errors.New("voting round already revealed")
)

// VotingService implementa la votacion ciega: aceptacion de papeletas,
// maquina de estados de la ronda, enmascarado de lectura y agregacion de
// consenso con quorum advisory.
type VotingService struct {
	votingRepo     repository.VotingRepository
	assessmentRepo repository.AssessmentRepository
	sender         email.Sender
	logger         *zap.Logger
}

func NewVotingService(
	votingRepo repository.VotingRepository,
	assessmentRepo repository.AssessmentRepository,
	sender email.Sender,
	logger *zap.Logger,
) *VotingService {
	return &VotingService{
		votingRepo:     votingRepo,
		assessmentRepo: assessmentRepo,
		sender:         sender,
		logger:         logger,
	}
}

// CreateRound abre una ronda con lista de participantes inmutable.
func (s *VotingService) CreateRound(
	ctx context.Context,
	tenantID, creatorID, assessmentID string,
	deadline time.Time,
	quorumPercent int,
	participants []domain.Participant,
) (domain.VotingRound, error) {
	if quorumPercent < 1 || quorumPercent > 100 {
		return domain.VotingRound{}, ErrInvalidQuorum
	}
	if len(participants) == 0 {
		return domain.VotingRound{}, ErrNoParticipants
	}

	if _, err := s.assessmentRepo.GetByID(ctx, tenantID, assessmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VotingRound{}, ErrAssessmentNotFound
		}
		return domain.VotingRound{}, fmt.Errorf("get assessment: %w", err)
	}

	round := domain.VotingRound{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		AssessmentID:  assessmentID,
		Status:        domain.RoundStatusOpen,
		Deadline:      deadline,
		QuorumPercent: quorumPercent,
		Participants:  participants,
		CreatedBy:     creatorID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.votingRepo.CreateRound(ctx, round); err != nil {
		return domain.VotingRound{}, fmt.Errorf("create round: %w", err)
	}

	s.notifyParticipants(round, "New voting round",
		fmt.Sprintf("You were invited to a blind voting round. Deadline: %s.", deadline.UTC().Format(time.RFC3339)))

	return round, nil
}

// SubmitVote acepta la papeleta solo si la ronda esta abierta, el deadline
// no paso y el emisor pertenece al set fijo de participantes. Reenvios del
// mismo participante pisan la papeleta anterior.
func (s *VotingService) SubmitVote(ctx context.Context, tenantID, roundID, voterID, value, comment string) (domain.Vote, error) {
	if _, ok := domain.VoteScores[value]; !ok {
		return domain.Vote{}, ErrInvalidVoteValue
	}

	round, err := s.getRound(ctx, tenantID, roundID)
	if err != nil {
		return domain.Vote{}, err
	}
	if round.Status != domain.RoundStatusOpen {
		return domain.Vote{}, ErrRoundNotOpen
	}
	if time.Now().UTC().After(round.Deadline) {
		return domain.Vote{}, ErrDeadlinePassed
	}
	if !round.HasParticipant(voterID) {
		return domain.Vote{}, ErrNotParticipant
	}

	now := time.Now().UTC()
	vote := domain.Vote{
		RoundID:   roundID,
		VoterID:   voterID,
		Value:     value,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.votingRepo.UpsertVote(ctx, vote); err != nil {
		return domain.Vote{}, fmt.Errorf("upsert vote: %w", err)
	}
	return vote, nil
}

// RevealRound hace visibles los votos sin cerrar la ronda. revealed_at se
// setea una sola vez y nunca se limpia.
func (s *VotingService) RevealRound(ctx context.Context, tenantID, roundID, actorID, role string) error {
	round, err := s.getRound(ctx, tenantID, roundID)
	if err != nil {
		return err
	}
	if !s.canManage(round, actorID, role) {
		return ErrNotAuthorized
	}
	if round.RevealedAt != nil {
		return ErrAlreadyRevealed
	}

	if err := s.votingRepo.SetRevealedAt(ctx, tenantID, roundID, time.Now().UTC()); err != nil {
		return fmt.Errorf("set revealed_at: %w", err)
	}

	s.notifyParticipants(round, "Voting round revealed",
		"The votes of your round are now visible to every participant.")
	return nil
}

// CloseRound termina la participacion; los votos quedan siempre visibles.
func (s *VotingService) CloseRound(ctx context.Context, tenantID, roundID, actorID, role string) error {
	return s.transition(ctx, tenantID, roundID, actorID, role, domain.RoundStatusClosed)
}

// CancelRound termina la ronda sin resultado.
func (s *VotingService) CancelRound(ctx context.Context, tenantID, roundID, actorID, role string) error {
	return s.transition(ctx, tenantID, roundID, actorID, role, domain.RoundStatusCancelled)
}

func (s *VotingService) transition(ctx context.Context, tenantID, roundID, actorID, role, status string) error {
	round, err := s.getRound(ctx, tenantID, roundID)
	if err != nil {
		return err
	}
	if !s.canManage(round, actorID, role) {
		return ErrNotAuthorized
	}
	if round.Status != domain.RoundStatusOpen {
		return ErrRoundNotOpen
	}
	if err := s.votingRepo.UpdateRoundStatus(ctx, tenantID, roundID, status); err != nil {
		return fmt.Errorf("update round status: %w", err)
	}
	return nil
}

// ListVotes devuelve los votos aplicando el enmascarado de visibilidad en
// el borde de lectura: mientras la ronda no este revelada ni cerrada, el
// requester solo ve su propio voto.
func (s *VotingService) ListVotes(ctx context.Context, tenantID, roundID, requesterID string) ([]domain.Vote, error) {
	round, err := s.getRound(ctx, tenantID, roundID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votingRepo.ListVotes(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return MaskVotes(round, votes, requesterID), nil
}

// GetRoundSummary agrega la ronda. Sin revelar solo expone participacion y
// quorum; revelada o cerrada expone distribucion, promedio y consenso.
func (s *VotingService) GetRoundSummary(ctx context.Context, tenantID, roundID string) (domain.RoundSummary, error) {
	round, err := s.getRound(ctx, tenantID, roundID)
	if err != nil {
		return domain.RoundSummary{}, err
	}
	votes, err := s.votingRepo.ListVotes(ctx, roundID)
	if err != nil {
		return domain.RoundSummary{}, fmt.Errorf("list votes: %w", err)
	}
	return SummarizeRound(round, votes), nil
}

func (s *VotingService) getRound(ctx context.Context, tenantID, roundID string) (domain.VotingRound, error) {
	round, err := s.votingRepo.GetRound(ctx, tenantID, roundID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VotingRound{}, ErrRoundNotFound
		}
		return domain.VotingRound{}, fmt.Errorf("get round: %w", err)
	}
	return round, nil
}

// canManage: revelar/cerrar/cancelar queda para el creador o un admin.
func (s *VotingService) canManage(round domain.VotingRound, actorID, role string) bool {
	return round.CreatedBy == actorID || role == "admin"
}

// notifyParticipants es best-effort: el envio de mails nunca bloquea ni
// falla una operacion de votacion.
func (s *VotingService) notifyParticipants(round domain.VotingRound, subject, body string) {
	if s.sender == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		for _, p := range round.Participants {
			if p.Email == "" {
				continue
			}
			if err := s.sender.SendRoundNotification(ctx, p.Email, subject, body); err != nil {
				s.logger.Warn("round notification failed",
					zap.Error(err),
					zap.String("round_id", round.ID),
				)
			}
		}
	}()
}

// MaskVotes aplica la regla de visibilidad como funcion pura: almacenar
// siempre, enmascarar solo al leer. Oculta valor e identidad de los demas
// votantes, no solo el conteo.
func MaskVotes(round domain.VotingRound, votes []domain.Vote, requesterID string) []domain.Vote {
	if round.Revealed() {
		return votes
	}
	var own []domain.Vote
	for _, v := range votes {
		if v.VoterID == requesterID {
			own = append(own, v)
		}
	}
	return own
}

// SummarizeRound calcula la agregacion de la ronda. El quorum es metadata
// advisory, no una puerta: una ronda bajo quorum igual se puede revelar o
// cerrar.
func SummarizeRound(round domain.VotingRound, votes []domain.Vote) domain.RoundSummary {
	summary := domain.RoundSummary{
		RoundID:        round.ID,
		Revealed:       round.Revealed(),
		VotesSubmitted: len(votes),
		QuorumMet:      quorumMet(len(votes), len(round.Participants), round.QuorumPercent),
	}
	if !summary.Revealed {
		return summary
	}

	distribution := map[string]int{
		domain.VoteStrongYes: 0,
		domain.VoteYes:       0,
		domain.VoteNeutral:   0,
		domain.VoteNo:        0,
		domain.VoteStrongNo:  0,
	}
	total := 0
	for _, v := range votes {
		score, ok := domain.VoteScores[v.Value]
		if !ok {
			continue
		}
		distribution[v.Value]++
		total += score
	}
	summary.Distribution = distribution
	if len(votes) > 0 {
		summary.AverageScore = float64(total) / float64(len(votes))
	}
	summary.Consensus = consensusLabel(distribution, len(votes))
	return summary
}

// quorumMet: votos emitidos >= ceil(participantes * quorum% / 100).
func quorumMet(submitted, participants, quorumPercent int) bool {
	if participants == 0 {
		return false
	}
	needed := (participants*quorumPercent + 99) / 100
	return submitted >= needed
}

func consensusLabel(distribution map[string]int, total int) string {
	if total == 0 {
		return domain.ConsensusMixed
	}
	positive := float64(distribution[domain.VoteStrongYes]+distribution[domain.VoteYes]) / float64(total)
	negative := float64(distribution[domain.VoteStrongNo]+distribution[domain.VoteNo]) / float64(total)
	neutral := float64(distribution[domain.VoteNeutral]) / float64(total)

	switch {
	case positive >= 0.7:
		return domain.ConsensusPositive
	case negative >= 0.7:
		return domain.ConsensusNegative
	case neutral >= 0.5:
		return domain.ConsensusNeutral
	default:
		return domain.ConsensusMixed
	}
}
