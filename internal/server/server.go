package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/plantpulse/plantpulse/internal/attendance"
	attendancedomain "github.com/plantpulse/plantpulse/internal/attendance/domain"
	"github.com/plantpulse/plantpulse/internal/audit"
	auditdomain "github.com/plantpulse/plantpulse/internal/audit/domain"
	"github.com/plantpulse/plantpulse/internal/client"
	clientdomain "github.com/plantpulse/plantpulse/internal/client/domain"
	"github.com/plantpulse/plantpulse/internal/config"
	"github.com/plantpulse/plantpulse/internal/downtime"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	"github.com/plantpulse/plantpulse/internal/kpi"
	kpidomain "github.com/plantpulse/plantpulse/internal/kpi/domain"
	"github.com/plantpulse/plantpulse/internal/observability"
	obsmiddleware "github.com/plantpulse/plantpulse/internal/observability/logger"
	obstracing "github.com/plantpulse/plantpulse/internal/observability/tracing"
	"github.com/plantpulse/plantpulse/internal/product"
	productdomain "github.com/plantpulse/plantpulse/internal/product/domain"
	"github.com/plantpulse/plantpulse/internal/production"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	"github.com/plantpulse/plantpulse/internal/quality"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	"github.com/plantpulse/plantpulse/internal/workorder"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	client.Module,
	product.Module,
	workorder.Module,
	production.Module,
	quality.Module,
	attendance.Module,
	downtime.Module,
	kpi.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: func(err error) (string, string) {
			return classifyErrorForLog(err), ""
		},
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	clientSvc     clientdomain.Service
	productSvc    productdomain.Service
	workOrderSvc  workorderdomain.Service
	productionSvc productiondomain.Service
	qualitySvc    qualitydomain.Service
	attendanceSvc attendancedomain.Service
	downtimeSvc   downtimedomain.Service
	kpiSvc        kpidomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	ClientSvc     clientdomain.Service
	ProductSvc    productdomain.Service
	WorkOrderSvc  workorderdomain.Service
	ProductionSvc productiondomain.Service
	QualitySvc    qualitydomain.Service
	AttendanceSvc attendancedomain.Service
	DowntimeSvc   downtimedomain.Service
	KPISvc        kpidomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		clientSvc:     p.ClientSvc,
		productSvc:    p.ProductSvc,
		workOrderSvc:  p.WorkOrderSvc,
		productionSvc: p.ProductionSvc,
		qualitySvc:    p.QualitySvc,
		attendanceSvc: p.AttendanceSvc,
		downtimeSvc:   p.DowntimeSvc,
		kpiSvc:        p.KPISvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAdminRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerAdminRoutes exposes the client registry. These are the only
// endpoints that see more than one client, so they require the
// cross-client role instead of a client context.
func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.CrossClientRequired())

	admin.GET("/clients", s.ListClients)
	admin.POST("/clients", s.CreateClient)
	admin.GET("/clients/:id", s.GetClientByID)
	admin.PATCH("/clients/:id", s.UpdateClient)
	admin.POST("/clients/:id/rotate-token", s.RotateClientToken)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.ClientContext())

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)

	// -------- Work orders --------
	api.GET("/work_orders", s.ListWorkOrders)
	api.POST("/work_orders", s.CreateWorkOrder)
	api.GET("/work_orders/:id", s.GetWorkOrderByID)
	api.PATCH("/work_orders/:id", s.UpdateWorkOrder)
	api.DELETE("/work_orders/:id", s.DeleteWorkOrder)
	api.GET("/work_orders/:id/delivery_date", s.InferDeliveryDate)
	api.GET("/work_orders/:id/lead_time", s.GetLeadTime)
	api.GET("/work_orders/:id/cycle_time", s.GetCycleTime)

	// -------- Shop floor entries --------
	api.GET("/production_entries", s.ListProductionEntries)
	api.POST("/production_entries", s.CreateProductionEntry)
	api.GET("/production_entries/:id", s.GetProductionEntryByID)
	api.DELETE("/production_entries/:id", s.DeleteProductionEntry)

	api.GET("/quality_entries", s.ListQualityEntries)
	api.POST("/quality_entries", s.CreateQualityEntry)
	api.DELETE("/quality_entries/:id", s.DeleteQualityEntry)

	api.GET("/attendance_entries", s.ListAttendanceEntries)
	api.POST("/attendance_entries", s.CreateAttendanceEntry)
	api.DELETE("/attendance_entries/:id", s.DeleteAttendanceEntry)

	api.GET("/downtime_entries", s.ListDowntimeEntries)
	api.POST("/downtime_entries", s.CreateDowntimeEntry)
	api.DELETE("/downtime_entries/:id", s.DeleteDowntimeEntry)

	// -------- KPIs --------
	kpiGroup := api.Group("/kpi")
	kpiGroup.GET("/otd", s.GetOTD)
	kpiGroup.GET("/otd/true", s.GetTrueOTD)
	kpiGroup.GET("/otd/trend", s.GetOTDTrend)
	kpiGroup.GET("/otd/by_product", s.GetOTDByProduct)
	kpiGroup.GET("/otd/by_work_order", s.GetOTDByWorkOrder)
	kpiGroup.GET("/otd/variance", s.GetDeliveryVariance)
	kpiGroup.GET("/otd/late_orders", s.GetLateOrders)
	kpiGroup.GET("/summary", s.GetKPISummary)

	// -------- Audit --------
	api.GET("/audit_logs", s.ListAuditLogs)
}
