package observability

import (
	"strings"

	"github.com/smallbiznis/salesledger/internal/config"
)

// Config is the observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "salesledger"
	}
	obs := cfg.Observability

	logLevel := obs.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := obs.LogFormat
	if logFormat == "" {
		logFormat = "json"
	}
	protocol := obs.OtelProtocol
	if protocol == "" {
		protocol = "grpc"
	}
	ratio := obs.OtelSampling
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             logLevel,
		LogFormat:            logFormat,
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: obs.OtelEndpoint,
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    ratio,
	}
}

// Debug enables verbose logging and gin debug mode.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
