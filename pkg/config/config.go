// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"routing/pkg/apperror"
)

// Config - главная структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Engine    EngineConfig    `koanf:"engine"`
	Profiling ProfilingConfig `koanf:"profiling"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text; пусто - по окружению
	Output     string `koanf:"output"`      // stdout, stderr, file, discard
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки PostgreSQL для хранения графов и прогонов
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// CacheConfig - бэкенд кэша расстояний
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // memory, redis
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineConfig - параметры графового движка
type EngineConfig struct {
	// Workers - число воркеров параллельного Флойда-Уоршелла, 0 = GOMAXPROCS
	Workers int `koanf:"workers"`
	// CacheEnabled включает кэш расстояний при старте
	CacheEnabled bool `koanf:"cache_enabled"`
	// CacheRetention - сколько живёт запись кэша
	CacheRetention time.Duration `koanf:"cache_retention"`
	// CleanupInterval - период фоновой очистки кэша
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	// NegativeWeightPolicy - что делать с отрицательными рёбрами в Дейкстре: fail, fallback
	NegativeWeightPolicy string `koanf:"negative_weight_policy"`
}

// ProfilingConfig - настройки профилировщика операций
type ProfilingConfig struct {
	Enabled    bool `koanf:"enabled"`
	MaxRecords int  `koanf:"max_records"` // 0 = без ограничения
}

// Validate проверяет конфигурацию и возвращает все найденные проблемы одной ошибкой
func (c *Config) Validate() error {
	v := apperror.NewValidationErrors()

	if c.App.Name == "" {
		v.AddError(apperror.CodeInvalidArgument, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		v.AddError(apperror.CodeInvalidArgument, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		v.AddError(apperror.CodeInvalidArgument, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	validDrivers := map[string]bool{"memory": true, "redis": true}
	if !validDrivers[c.Cache.Driver] {
		v.AddError(apperror.CodeInvalidArgument, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	if c.Engine.Workers < 0 {
		v.AddError(apperror.CodeInvalidArgument, fmt.Sprintf("engine.workers must be non-negative, got %d", c.Engine.Workers))
	}

	if c.Engine.CacheRetention <= 0 {
		v.AddError(apperror.CodeInvalidArgument, "engine.cache_retention must be positive")
	}

	validPolicies := map[string]bool{"fail": true, "fallback": true}
	if !validPolicies[c.Engine.NegativeWeightPolicy] {
		v.AddError(apperror.CodeInvalidArgument, fmt.Sprintf("engine.negative_weight_policy must be one of: fail, fallback, got %s", c.Engine.NegativeWeightPolicy))
	}

	if c.Profiling.MaxRecords < 0 {
		v.AddError(apperror.CodeInvalidArgument, "profiling.max_records must be non-negative")
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// LogFormat возвращает формат логов: явно заданный, иначе text для
// development и json для остальных окружений
func (c *Config) LogFormat() string {
	if c.Log.Format != "" {
		return c.Log.Format
	}
	if c.IsDevelopment() {
		return "text"
	}
	return "json"
}
