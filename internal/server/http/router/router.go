package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/AliXAbdullah03/nge-brain/internal/config"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/handlers"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/middleware"
)

// Params collects router dependencies.
type Params struct {
	fx.In

	Facade         handlers.BackOffice
	Logger         *slog.Logger
	Config         *config.Config
	TracerProvider trace.TracerProvider `optional:"true"`
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	tp := p.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	serviceName := p.Config.ServiceName
	if serviceName == "" {
		serviceName = "nge-brain"
	}
	loc := p.Config.BatchLocation
	if loc == nil {
		loc = time.UTC
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tp)))
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade, loc)
	shipmentHandler := handlers.NewShipmentHandler(p.Facade, loc, p.Config.AutoBatchSize)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	perm := middleware.RequirePermission

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/orders/track/:identifier", orderHandler.Track)
	api.GET("/shipments/track/:trackingId", shipmentHandler.Track)

	secured := api.Group("")
	secured.Use(middleware.AuthRequired(p.Facade))
	secured.POST("/users", perm(model.PermUserCreate), authHandler.CreateUser)

	orders := secured.Group("/orders")
	orders.GET("", perm(model.PermOrderView), orderHandler.List)
	orders.POST("", perm(model.PermOrderCreate), orderHandler.Create)
	orders.GET("/:id", perm(model.PermOrderView), orderHandler.Get)
	orders.PUT("/:id/status", perm(model.PermOrderModify), orderHandler.ChangeStatus)

	shipments := secured.Group("/shipments")
	shipments.POST("/create-from-orders", perm(model.PermShipmentBulkUpdate), shipmentHandler.CreateFromOrders)
	shipments.POST("/auto-batch", perm(model.PermShipmentBulkUpdate), shipmentHandler.AutoBatch)
	shipments.PUT("/bulk/status", perm(model.PermShipmentBulkUpdate), shipmentHandler.BulkStatus)
	shipments.GET("/batch/:batchNumber", perm(model.PermShipmentView), shipmentHandler.Batch)
	shipments.PUT("/batch/:batchNumber/status", perm(model.PermShipmentStatusUpdate), shipmentHandler.BatchStatus)
	shipments.GET("/:id", perm(model.PermShipmentView), shipmentHandler.Get)
	shipments.PUT("/:id", perm(model.PermShipmentStatusUpdate), shipmentHandler.Update)
	shipments.PUT("/:id/status", perm(model.PermShipmentStatusUpdate), shipmentHandler.ChangeStatus)
	shipments.POST("/:id/status", perm(model.PermShipmentStatusUpdate), shipmentHandler.ChangeStatus)
	shipments.DELETE("/:id", perm(model.PermShipmentBulkUpdate), shipmentHandler.Delete)

	return engine
}
