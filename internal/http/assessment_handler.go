package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealdesk-llm/internal/service"
)

// AssessmentHandler expone los endpoints del pipeline de assessments.
type AssessmentHandler struct {
	logger        *zap.Logger
	assessmentSvc *service.AssessmentService
}

func NewAssessmentHandler(logger *zap.Logger, assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		logger:        logger,
		assessmentSvc: assessmentSvc,
	}
}

// CreateAssessment maneja POST /assessments. Responde 202 de inmediato; la
// generacion continua en background.
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		CompanyID string `json:"company_id" binding:"required"`
		Kind      string `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create assessment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	assessment, err := h.assessmentSvc.CreateAssessment(c.Request.Context(), claims.TenantID, req.CompanyID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidKind):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCompanyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoExtractedDocuments):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			h.logger.Error("create assessment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create assessment"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     assessment.ID,
		"status": assessment.Status,
	})
}

// GetAssessment maneja GET /assessments/:id.
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	assessment, err := h.assessmentSvc.GetAssessment(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("get assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// DeleteAssessment maneja DELETE /assessments/:id.
func (h *AssessmentHandler) DeleteAssessment(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := h.assessmentSvc.DeleteAssessment(c.Request.Context(), claims.TenantID, c.Param("id")); err != nil {
		h.logger.Error("delete assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete assessment"})
		return
	}

	c.Status(http.StatusNoContent)
}
