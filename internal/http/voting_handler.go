package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/service"
)

// VotingHandler expone los endpoints de rondas de votacion ciega.
type VotingHandler struct {
	logger    *zap.Logger
	votingSvc *service.VotingService
}

func NewVotingHandler(logger *zap.Logger, votingSvc *service.VotingService) *VotingHandler {
	return &VotingHandler{
		logger:    logger,
		votingSvc: votingSvc,
	}
}

// CreateRound maneja POST /rounds.
func (h *VotingHandler) CreateRound(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		AssessmentID  string               `json:"assessment_id" binding:"required"`
		Deadline      time.Time            `json:"deadline" binding:"required"`
		QuorumPercent int                  `json:"quorum_percent" binding:"required"`
		Participants  []domain.Participant `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create round request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	round, err := h.votingSvc.CreateRound(c.Request.Context(), claims.TenantID, claims.UserID, req.AssessmentID, req.Deadline, req.QuorumPercent, req.Participants)
	if err != nil {
		h.respondVotingError(c, err, "create round")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"round": round})
}

// SubmitVote maneja POST /rounds/:id/votes con semantica de upsert.
func (h *VotingHandler) SubmitVote(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Value   string `json:"value" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit vote request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	vote, err := h.votingSvc.SubmitVote(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req.Value, req.Comment)
	if err != nil {
		h.respondVotingError(c, err, "submit vote")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vote": vote})
}

// RevealRound maneja POST /rounds/:id/reveal.
func (h *VotingHandler) RevealRound(c *gin.Context) {
	h.runTransition(c, h.votingSvc.RevealRound)
}

// CloseRound maneja POST /rounds/:id/close.
func (h *VotingHandler) CloseRound(c *gin.Context) {
	h.runTransition(c, h.votingSvc.CloseRound)
}

// CancelRound maneja POST /rounds/:id/cancel.
func (h *VotingHandler) CancelRound(c *gin.Context) {
	h.runTransition(c, h.votingSvc.CancelRound)
}

// GetRoundSummary maneja GET /rounds/:id/summary. La agregacion viene
// enmascarada mientras la ronda no este revelada ni cerrada.
func (h *VotingHandler) GetRoundSummary(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	summary, err := h.votingSvc.GetRoundSummary(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		h.respondVotingError(c, err, "get round summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ListVotes maneja GET /rounds/:id/votes con el enmascarado aplicado.
func (h *VotingHandler) ListVotes(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	votes, err := h.votingSvc.ListVotes(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID)
	if err != nil {
		h.respondVotingError(c, err, "list votes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": votes})
}

type roundTransition func(ctx context.Context, tenantID, roundID, actorID, role string) error

func (h *VotingHandler) runTransition(c *gin.Context, fn roundTransition) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := fn(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, claims.Role); err != nil {
		h.respondVotingError(c, err, "round transition")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *VotingHandler) respondVotingError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrRoundNotFound), errors.Is(err, service.ErrAssessmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidVoteValue),
		errors.Is(err, service.ErrInvalidQuorum),
		errors.Is(err, service.ErrNoParticipants):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoundNotOpen),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrAlreadyRevealed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}
