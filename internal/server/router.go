// Package server assembles the gin engine for the workflow API.
package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-workflow-api/internal/handler"
	"github.com/noah-isme/edu-workflow-api/internal/middleware"
	"github.com/noah-isme/edu-workflow-api/internal/models"
	"github.com/noah-isme/edu-workflow-api/internal/repository"
	"github.com/noah-isme/edu-workflow-api/internal/service"
	"github.com/noah-isme/edu-workflow-api/pkg/config"
	"github.com/noah-isme/edu-workflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-workflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-workflow-api/pkg/middleware/requestid"
)

// Deps collects what the router wires into handlers. Exports and Cache may be nil.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Workflow  *service.WorkflowService
	Exports   *service.AuditExportService
	Metrics   *service.MetricsService
	Directory *repository.UserDirectory
	Cache     handler.Pinger
}

// NewRouter builds the engine with middleware and all routes registered.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(d.Metrics))
	}

	metricsHandler := handler.NewMetricsHandler(d.Metrics, d.Cache)
	templateHandler := handler.NewTemplateHandler(d.Workflow)
	instanceHandler := handler.NewInstanceHandler(d.Workflow, nil)
	if d.Exports != nil {
		instanceHandler = handler.NewInstanceHandler(d.Workflow, d.Exports)
	}
	sessionHandler := handler.NewSessionHandler(d.Workflow, d.Directory)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var designer, decider gin.HandlerFunc = passThrough, passThrough
	if cfg.Workflow.EnforcePermissions {
		designer = middleware.RequireTemplateDesigner(d.Workflow)
		decider = middleware.RequireRole(d.Workflow, models.RoleStakeholder)
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/users", sessionHandler.Users)

	session := api.Group("/session")
	session.GET("", sessionHandler.Current)
	session.PUT("", sessionHandler.Set)
	session.DELETE("", sessionHandler.Clear)
	session.GET("/permissions/:role", sessionHandler.Permission)

	templates := api.Group("/templates")
	templates.GET("", templateHandler.List)
	templates.GET("/:id", templateHandler.Get)
	templates.POST("", designer, templateHandler.Create)
	templates.PATCH("/:id", designer, templateHandler.Update)
	templates.DELETE("/:id", designer, templateHandler.Delete)

	instances := api.Group("/instances")
	instances.GET("", instanceHandler.List)
	instances.POST("", instanceHandler.Start)
	instances.GET("/:id", instanceHandler.Get)
	instances.POST("/:id/steps/:stepId", instanceHandler.ProcessStep)
	instances.POST("/:id/approvals", instanceHandler.RequestApproval)
	instances.GET("/:id/audit/export", instanceHandler.ExportAudit)

	api.POST("/approvals/:id/decision", decider, instanceHandler.DecideApproval)

	return r
}

func passThrough(c *gin.Context) { c.Next() }
