package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/quillboard/quillboard-backend/internal/handlers"
)

type RouterConfig struct {
	EvaluationHandler *handlers.EvaluationHandler
	VersionHandler    *handlers.VersionHandler
	PipelineHandler   *handlers.PipelineHandler
	AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("quillboard"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5174"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/content/:id/evaluate", cfg.EvaluationHandler.Evaluate)
		api.GET("/content/:id/runs", cfg.EvaluationHandler.RecentRuns)
		api.GET("/content/:id/versions", cfg.VersionHandler.History)
		api.GET("/pipeline/config", cfg.PipelineHandler.GetConfig)
	}

	return router
}
