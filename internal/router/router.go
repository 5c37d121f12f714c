package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/middleware"
	"github.com/AbelardoOk/PlanTracker/internal/modules/handler"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	Metrics        *telemetry.Metrics
	UserService    service.UserService
	AuthHandler    *handler.AuthHandler
	ProjectHandler *handler.ProjectHandler
	PlantHandler   *handler.PlantHandler
	VisitorHandler *handler.VisitorHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(middleware.CORS(d.Config.Auth.CorsAllowOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinMiddleware())
	}

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)
			auth.POST("/logout", middleware.SessionAuth(d.UserService), d.AuthHandler.Logout)
		}

		authed := v1.Group("")
		authed.Use(middleware.SessionAuth(d.UserService))

		project := authed.Group("/projects")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)
			project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			project.POST("/:project_id/plants", d.PlantHandler.CreatePlant)
		}

		plant := authed.Group("/plants")
		{
			plant.GET("/:plant_id", d.PlantHandler.GetPlant)
			plant.DELETE("/:plant_id", d.PlantHandler.DeletePlant)
			plant.GET("/:plant_id/photo", d.PlantHandler.GetPlantPhoto)

			plant.POST("/:plant_id/visitors", d.VisitorHandler.CreateVisitor)
		}

		visitor := authed.Group("/visitors")
		{
			visitor.GET("", d.VisitorHandler.ListVisitors)
			visitor.GET("/:visitor_id/photo", d.VisitorHandler.GetVisitorPhoto)
		}
	}
	return r
}
