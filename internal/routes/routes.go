package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskorganizer/internal/handlers"
	"taskorganizer/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	suggestHandler *handlers.SuggestHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.GET("/notifications/vapid-public-key", notificationHandler.VAPIDPublicKey)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	r.GET("/auth/me", authHandler.Me)

	tasks := r.Group("/tasks")
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	analytics := r.Group("/analytics")
	{
		analytics.GET("/summary", analyticsHandler.Summary)
	}

	ai := r.Group("/ai")
	{
		ai.POST("/suggest", suggestHandler.Suggest)
	}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/subscribe", notificationHandler.Subscribe)
		notifications.DELETE("/subscribe", notificationHandler.Unsubscribe)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/tasks.pdf", reportHandler.TasksPDF)
	}

	return r
}
