package db

import (
	"time"

	"github.com/smallbiznis/salesledger/internal/config"
)

type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTime) * time.Second,
	}
}
