package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/court-facilities-api/api/swagger"
	"github.com/noah-isme/court-facilities-api/internal/handler"
	"github.com/noah-isme/court-facilities-api/internal/middleware"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/pkg/config"
	"github.com/noah-isme/court-facilities-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/court-facilities-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/court-facilities-api/pkg/middleware/requestid"
)

type routeDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	auth    middleware.TokenValidator

	authH       *handler.AuthHandler
	buildingH   *handler.BuildingHandler
	roomH       *handler.RoomHandler
	termH       *handler.CourtTermHandler
	assignmentH *handler.TermAssignmentHandler
	personnelH  *handler.TermPersonnelHandler
	documentH   *handler.TermDocumentHandler
	importH     *handler.TermImportHandler
	exportH     *handler.ExportHandler
	metricsH    *handler.MetricsHandler
}

func newRouter(d routeDeps) *gin.Engine {
	if d.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.metricsH.Health)
	r.GET("/ready", d.metricsH.Ready)
	r.GET("/metrics", d.metricsH.Prometheus)
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := middleware.NewRateLimiter(d.cfg.Imports.RateLimitPerMinute, d.cfg.Imports.RateLimitBurst)
	read := middleware.CanRead()
	edit := middleware.CanEdit()

	api := r.Group(d.cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", d.authH.Login)
	auth.POST("/refresh", d.authH.Refresh)

	// Signed tokens authorise file downloads, so these skip the bearer check.
	files := api.Group("/files")
	files.GET("/photos/:token", d.roomH.ServePhoto)
	files.GET("/documents/:token", d.documentH.Serve)
	files.GET("/exports/:token", d.exportH.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.auth))

	secured.POST("/auth/logout", d.authH.Logout)
	secured.GET("/auth/me", d.authH.Me)

	secured.GET("/buildings", read, d.buildingH.List)
	secured.GET("/buildings/:id", read, d.buildingH.Get)
	secured.POST("/buildings", edit, d.buildingH.Create)
	secured.PUT("/buildings/:id", edit, d.buildingH.Update)
	secured.DELETE("/buildings/:id", edit, d.buildingH.Delete)
	secured.GET("/buildings/:id/floors", read, d.buildingH.ListFloors)
	secured.POST("/buildings/:id/floors", edit, d.buildingH.CreateFloor)
	secured.PUT("/floors/:id", edit, d.buildingH.UpdateFloor)
	secured.DELETE("/floors/:id", edit, d.buildingH.DeleteFloor)

	secured.GET("/rooms", read, d.roomH.List)
	secured.GET("/rooms/match", read, d.roomH.Match)
	secured.GET("/rooms/:id", read, d.roomH.Get)
	secured.POST("/rooms", edit, d.roomH.Create)
	secured.PUT("/rooms/:id", edit, d.roomH.Update)
	secured.PATCH("/rooms/:id/status", edit, d.roomH.UpdateStatus)
	secured.DELETE("/rooms/:id", edit, d.roomH.Delete)
	secured.GET("/rooms/:id/photos/:view", read, d.roomH.PhotoURL)
	secured.POST("/rooms/:id/photos/:view", edit, limiter.Middleware(), d.roomH.UploadPhoto)
	secured.DELETE("/rooms/:id/photos/:view", edit, d.roomH.DeletePhoto)

	secured.GET("/terms", read, d.termH.List)
	secured.GET("/terms/:id", read, d.termH.Get)
	secured.POST("/terms", edit, d.termH.Create)
	secured.PUT("/terms/:id", edit, d.termH.Update)
	secured.DELETE("/terms/:id", edit, d.termH.Delete)

	secured.GET("/terms/:id/assignments", read, d.assignmentH.List)
	secured.POST("/terms/:id/assignments", edit, d.assignmentH.Create)
	secured.POST("/terms/:id/assignments/reorder", edit, d.assignmentH.Reorder)
	secured.PUT("/assignments/:id", edit, d.assignmentH.Update)
	secured.DELETE("/assignments/:id", edit, d.assignmentH.Delete)

	secured.GET("/terms/:id/personnel", read, d.personnelH.List)
	secured.POST("/terms/:id/personnel", edit, d.personnelH.Create)
	secured.PUT("/personnel/:id", edit, d.personnelH.Update)
	secured.DELETE("/personnel/:id", edit, d.personnelH.Delete)

	secured.POST("/terms/:id/exports", read, d.exportH.Create)
	secured.GET("/exports/:id", read, d.exportH.Status)

	secured.GET("/term-documents", read, d.documentH.List)
	secured.POST("/term-documents", edit, limiter.Middleware(), d.documentH.Upload)
	secured.GET("/term-documents/:id", read, d.documentH.Get)
	secured.GET("/term-documents/:id/download-url", read, d.documentH.DownloadURL)
	secured.DELETE("/term-documents/:id", edit, d.documentH.Delete)

	secured.POST("/term-imports/parse", edit, limiter.Middleware(), d.importH.Parse)
	secured.POST("/term-imports/commit", edit, d.importH.Commit)

	return r
}
