package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/config"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/services"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/utils"
)

const serviceName = "swipe-quiz-service"

type HandlerManager struct {
	questionHandler *QuestionHandler
	orderingHandler *OrderingHandler
	sessionHandler  *SessionHandler
	serviceManager  services.ServiceManager
	metrics         *metrics.Metrics
	authMiddleware  gin.HandlerFunc
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
	m *metrics.Metrics,
) *HandlerManager {
	var auth gin.HandlerFunc
	if casdoorConfig.Enabled() {
		auth = NewCasdoorAuthMiddleware(casdoorConfig, userRepo).AuthMiddleware()
	} else {
		logger.Warn("Casdoor not configured, trusting X-User-ID headers")
		auth = DevAuthMiddleware()
	}

	return newHandlerManager(serviceManager, logger, auth, m)
}

func newHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, auth gin.HandlerFunc, m *metrics.Metrics) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), logger),
		orderingHandler: NewOrderingHandler(serviceManager.Ordering(), logger),
		sessionHandler:  NewSessionHandler(serviceManager.Session(), logger),
		serviceManager:  serviceManager,
		metrics:         m,
		authMiddleware:  auth,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	authorOnly := RequireRoleMiddleware(models.RoleAuthor, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware)
	{
		// Question bank management - Authors and Admins only
		questions := v1.Group("/questions")
		questions.Use(authorOnly)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/batch", hm.questionHandler.CreateQuestionsBatch)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		orderings := v1.Group("/orderings")
		orderings.Use(authorOnly)
		{
			orderings.POST("/preview", hm.orderingHandler.PreviewOrdering)
			orderings.POST("/export", hm.questionHandler.ExportOrdering)
		}

		v1.POST("/results/validate", hm.orderingHandler.ValidateResult)

		// Sessions - any authenticated user, ownership checked per session
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.GET("/:id/next", hm.sessionHandler.NextQuestion)
			sessions.POST("/:id/responses", hm.sessionHandler.RecordResponse)
			sessions.GET("/:id/result", hm.sessionHandler.GetResult)
		}
	}

	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		hm.logger.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
