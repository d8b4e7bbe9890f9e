package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReportingConfig tunes the sales report endpoints. It is reloaded from
// reporting.yml without a restart.
type ReportingConfig struct {
	DefaultCity        string `mapstructure:"defaultCity"`
	Timezone           string `mapstructure:"timezone"`
	TopProductsDefault int    `mapstructure:"topProductsDefault"`
	TopProductsMax     int    `mapstructure:"topProductsMax"`
	DashboardTopN      int    `mapstructure:"dashboardTopN"`
	DashboardTrendDays int    `mapstructure:"dashboardTrendDays"`
	MaxCustomRangeDays int    `mapstructure:"maxCustomRangeDays"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		DefaultCity:        "تهران",
		Timezone:           "UTC",
		TopProductsDefault: 10,
		TopProductsMax:     100,
		DashboardTopN:      5,
		DashboardTrendDays: 7,
		MaxCustomRangeDays: 366,
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c ReportingConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

// NewStaticReportingConfigHolder returns a holder that never reloads.
func NewStaticReportingConfigHolder(cfg ReportingConfig) *ReportingConfigHolder {
	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/salesledger/config")
	v.AddConfigPath("/etc/salesledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SALESLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportingConfig()
	v.SetDefault("reporting.defaultCity", defaults.DefaultCity)
	v.SetDefault("reporting.timezone", defaults.Timezone)
	v.SetDefault("reporting.topProductsDefault", defaults.TopProductsDefault)
	v.SetDefault("reporting.topProductsMax", defaults.TopProductsMax)
	v.SetDefault("reporting.dashboardTopN", defaults.DashboardTopN)
	v.SetDefault("reporting.dashboardTrendDays", defaults.DashboardTrendDays)
	v.SetDefault("reporting.maxCustomRangeDays", defaults.MaxCustomRangeDays)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticReportingConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	if h == nil {
		return DefaultReportingConfig()
	}
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if cfg.TopProductsDefault <= 0 || cfg.TopProductsMax <= 0 {
		return errors.New("reporting.topProducts limits must be positive")
	}
	if cfg.TopProductsDefault > cfg.TopProductsMax {
		return errors.New("reporting.topProductsDefault cannot exceed reporting.topProductsMax")
	}
	if cfg.DashboardTopN <= 0 {
		return errors.New("reporting.dashboardTopN must be positive")
	}
	if cfg.DashboardTrendDays <= 0 {
		return errors.New("reporting.dashboardTrendDays must be positive")
	}
	if cfg.MaxCustomRangeDays <= 0 {
		return errors.New("reporting.maxCustomRangeDays must be positive")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone)); err != nil {
		return err
	}
	return nil
}
