package db

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	obslogger "github.com/smallbiznis/salesledger/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(ConfigFrom),
	fx.Provide(New),
)

// New opens the configured database with zap query logging, otel tracing and
// prometheus pool metrics, and closes it on shutdown.
func New(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Name))); err != nil {
		return nil, fmt.Errorf("register otelgorm: %w", err)
	}
	if err := conn.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          cfg.Name,
		RefreshInterval: 15,
		StartServer:     false,
	})); err != nil {
		return nil, fmt.Errorf("register gorm prometheus: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return sqlDB.PingContext(ctx)
			},
			OnStop: func(ctx context.Context) error {
				log.Info("closing database connection")
				return sqlDB.Close()
			},
		})
	}

	log.Info("database initialized",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return conn, nil
}

var testDBSeq atomic.Int64

// NewTest opens an isolated in-memory sqlite database. Each call gets its own
// named database so parallel tests never share rows.
func NewTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:salesledger_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}
