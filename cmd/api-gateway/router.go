package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-hod-api/api/swagger"
	"github.com/noah-isme/sma-hod-api/internal/handler"
	"github.com/noah-isme/sma-hod-api/internal/middleware"
	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/internal/service"
	"github.com/noah-isme/sma-hod-api/pkg/config"
	"github.com/noah-isme/sma-hod-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-hod-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-hod-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *service.MetricsService
	verifier middleware.TokenValidator
	hod      *handler.HODHandler
	finance  *handler.FinanceHandler
	users    *handler.UserHandler
	health   *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	r.GET("/metrics", d.health.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.Use(middleware.JWT(d.verifier), middleware.WithResponseMeta())

	hod := api.Group("/hod", middleware.RequireRoles(models.RoleHOD, models.RoleSuperManager))
	hod.GET("/overview", d.hod.Overview)
	hod.GET("/department", d.hod.Department)
	hod.GET("/teachers", d.hod.Teachers)
	hod.GET("/resources", d.hod.Resources)
	hod.GET("/badges", d.hod.Badges)
	hod.POST("/refresh", d.hod.Refresh)
	hod.POST("/teachers/:id/messages", d.hod.SendMessage)
	hod.POST("/resource-requests", d.hod.SubmitResourceRequest)
	hod.GET("/reports/department", d.hod.Report)
	hod.DELETE("/session", d.hod.EndSession)

	api.GET("/finance/overview", middleware.RequireRoles(models.RoleSuperManager, models.RoleParent), d.finance.Overview)
	api.GET("/users", middleware.RequireRoles(models.RoleSuperManager), d.users.List)

	return r
}
