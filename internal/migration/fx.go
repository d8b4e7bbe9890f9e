package migration

import (
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/config"
	orderdomain "github.com/smallbiznis/salesledger/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			return nil
		}
		if cfg.DBType != "postgres" {
			if err := AutoMigrateModels(conn); err != nil {
				return err
			}
			log.Info("schema synced from models", zap.String("type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("database migrations applied")
		return nil
	}),
)

// AutoMigrateModels creates the ledger tables from the gorm models. Used for
// databases the embedded SQL migrations do not target.
func AutoMigrateModels(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	)
}
