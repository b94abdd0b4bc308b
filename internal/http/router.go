package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealdesk-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	assessmentH *AssessmentHandler,
	votingH *VotingHandler,
	chatH *ChatHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/refresh", authH.Refresh)

	api := r.Group("/")
	api.Use(JWTAuthMiddleware(jwtSvc))

	api.POST("/assessments", assessmentH.CreateAssessment)
	api.GET("/assessments/:id", assessmentH.GetAssessment)
	api.DELETE("/assessments/:id", assessmentH.DeleteAssessment)

	api.POST("/rounds", votingH.CreateRound)
	api.POST("/rounds/:id/votes", votingH.SubmitVote)
	api.POST("/rounds/:id/reveal", votingH.RevealRound)
	api.POST("/rounds/:id/close", votingH.CloseRound)
	api.POST("/rounds/:id/cancel", votingH.CancelRound)
	api.GET("/rounds/:id/summary", votingH.GetRoundSummary)
	api.GET("/rounds/:id/votes", votingH.ListVotes)

	api.POST("/chat", chatH.GenerateAnswer)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
