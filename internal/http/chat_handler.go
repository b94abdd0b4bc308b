package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/service"
)

// ChatHandler expone el endpoint de chat con citas.
type ChatHandler struct {
	logger  *zap.Logger
	chatSvc *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger:  logger,
		chatSvc: chatSvc,
	}
}

// GenerateAnswer maneja POST /chat.
func (h *ChatHandler) GenerateAnswer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		CompanyID string            `json:"company_id" binding:"required"`
		Question  string            `json:"question" binding:"required"`
		History   []domain.ChatTurn `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answer, err := h.chatSvc.GenerateAnswer(c.Request.Context(), claims.TenantID, req.CompanyID, req.Question, req.History)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("chat answer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
