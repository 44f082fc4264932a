package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-tracker/internal/handler"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Tasks    *handler.TaskHandler
	Users    *handler.UserHandler
	Statuses *handler.StatusHandler
}

func NewRouter(h Handlers, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(logger), requestLogger(logger), requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tasks := r.Group("/tasks")
	{
		tasks.GET("", h.Tasks.ListTasks)
		tasks.GET("/:id", h.Tasks.GetTask)
		tasks.POST("", h.Tasks.CreateTask)
		tasks.PATCH("/:id", h.Tasks.UpdateTask)
		tasks.PUT("/:id", h.Tasks.ReplaceTask)
		tasks.DELETE("/:id", h.Tasks.DeleteTask)
	}

	users := r.Group("/users")
	{
		users.POST("", h.Users.CreateUser)
		users.GET("/:id", h.Users.GetUser)
	}

	status := r.Group("/status")
	{
		status.GET("", h.Statuses.ListStatuses)
		status.POST("", h.Statuses.CreateStatus)
	}

	return r
}
