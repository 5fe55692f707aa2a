package migration

import (
	attendancedomain "github.com/plantpulse/plantpulse/internal/attendance/domain"
	auditdomain "github.com/plantpulse/plantpulse/internal/audit/domain"
	clientdomain "github.com/plantpulse/plantpulse/internal/client/domain"
	"github.com/plantpulse/plantpulse/internal/config"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	productdomain "github.com/plantpulse/plantpulse/internal/product/domain"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	"github.com/plantpulse/plantpulse/internal/seed"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres. Other dialects (sqlite
		// for local single-node runs, mysql) build their schema through
		// AutoMigrate instead.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		return seed.EnsureDefaultClient(conn)
	}),
)

// AutoMigrate builds the full schema through gorm for dialects the
// embedded SQL does not cover.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&clientdomain.Client{},
		&productdomain.Product{},
		&workorderdomain.WorkOrder{},
		&productiondomain.ProductionEntry{},
		&qualitydomain.QualityEntry{},
		&attendancedomain.AttendanceEntry{},
		&downtimedomain.DowntimeEntry{},
		&auditdomain.AuditLog{},
	)
}
