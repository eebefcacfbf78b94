package app

import (
	"time"

	"literacy_backend/docs"
	"literacy_backend/internal/config"
	"literacy_backend/internal/middleware"
	"literacy_backend/internal/model"
	"literacy_backend/pkg/monitoring"
	"literacy_backend/pkg/security"
	"literacy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.ResolutionMemo())
	router.Use(middleware.OptionalAuth(&cfg.JWT))
}

func registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	admin := []gin.HandlerFunc{middleware.AuthMiddleware(&cfg.JWT), middleware.RoleMiddleware(model.Admin)}

	registerInterventionRoutes(api.Group("/interventions"), c, admin)
	registerAnalysisRoutes(api, c, admin)

	api.POST("/students/find-or-create", c.student.FindOrCreate)
}

func registerInterventionRoutes(rg *gin.RouterGroup, c *controllers, admin []gin.HandlerFunc) {
	// Static segments first so they never shadow as :interventionId.
	rg.GET("/student/:studentId", c.intervention.GetByStudent)
	rg.GET("/check", c.intervention.Check)
	rg.GET("/questions/main", c.template.ListMainQuestions)

	templates := rg.Group("/templates")
	{
		templates.GET("/questions", c.template.ListQuestions)
		templates.POST("/questions", c.template.CreateQuestion)
		templates.PUT("/questions/:id", c.template.UpdateQuestion)
		templates.DELETE("/questions/:id", c.template.DeleteQuestion)

		templates.GET("/choices", c.template.ListChoices)
		templates.POST("/choices", c.template.CreateChoice)
		templates.PUT("/choices/:id", c.template.UpdateChoice)
		templates.DELETE("/choices/:id", c.template.DeleteChoice)

		templates.GET("/sentences", c.template.ListSentences)
		templates.POST("/sentences", c.template.CreateSentence)
		templates.PUT("/sentences/:id", c.template.UpdateSentence)
		templates.DELETE("/sentences/:id", c.template.DeleteSentence)

		templates.GET("/all", c.template.All)
	}

	rg.POST("/upload-url", c.upload.CreateUploadURL)
	rg.POST("/responses", c.intervention.RecordResponse)
	rg.POST("/update-existing", append(admin, c.intervention.UpdateExisting)...)

	rg.POST("", c.intervention.Create)
	rg.GET("/:interventionId", c.intervention.GetByID)
	rg.PUT("/:interventionId", c.intervention.Update)
	rg.DELETE("/:interventionId", c.intervention.Delete)
	rg.POST("/:interventionId/push", c.intervention.Push)
	rg.PUT("/:interventionId/activate", c.intervention.Activate)
}

func registerAnalysisRoutes(api *gin.RouterGroup, c *controllers, admin []gin.HandlerFunc) {
	results := api.Group("/category-results")
	{
		results.GET("/student/:studentId", c.analysis.CategoryResults)
		results.POST("/migrate-student-ids", append(admin, c.analysis.MigrateStudentIDs)...)
	}

	pa := api.Group("/prescriptive-analysis")
	{
		pa.GET("/student/:studentId", c.analysis.PrescriptiveAnalyses)
		pa.PUT("", c.analysis.UpsertPrescriptiveAnalysis)
	}
}
