package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealdesk-llm/internal/service"
)

// AuthHandler expone la rotacion de refresh tokens.
type AuthHandler struct {
	logger *zap.Logger
	jwtSvc *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, jwtSvc *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		jwtSvc: jwtSvc,
	}
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.jwtSvc.RefreshPair(req.RefreshToken)
	if err != nil {
		h.logger.Warn("refresh token rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, pair)
}
