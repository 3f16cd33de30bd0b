// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/estimator"
	"github.com/shopeval/shopeval/pkg/logger"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name" env:"APP_NAME" env-default:"shopeval"`
	Env  string `yaml:"env" env:"APP_ENV" env-default:"development"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format   string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	Output   string `yaml:"output" env:"LOG_OUTPUT" env-default:"stderr"`
	FilePath string `yaml:"file_path" env:"LOG_FILE_PATH"`
}

// LoggerConfig 转换为日志器配置
func (c LogConfig) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Output = c.Output
	cfg.FilePath = c.FilePath
	return cfg
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"shopeval"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"shopeval"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	SlowQuery       time.Duration `yaml:"slow_query" env:"DB_SLOW_QUERY" env-default:"100ms"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis配置（配置缓存，可选）
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"5m"`
}

// Addr 返回Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EvaluatorConfig 评估服务配置
type EvaluatorConfig struct {
	Workers         int           `yaml:"workers" env:"EVALUATOR_WORKERS" env-default:"8"`
	Timeout         time.Duration `yaml:"timeout" env:"EVALUATOR_TIMEOUT" env-default:"30s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"EVALUATOR_REFRESH_INTERVAL" env-default:"1m"`
}

// EstimatorConfig 工时估算默认值
type EstimatorConfig struct {
	CleaningHours         float64 `yaml:"cleaning_hours" env:"ESTIMATOR_CLEANING_HOURS" env-default:"4"`
	LiningHours           float64 `yaml:"lining_hours" env:"ESTIMATOR_LINING_HOURS" env-default:"24"`
	BlastHours            float64 `yaml:"blast_hours" env:"ESTIMATOR_BLAST_HOURS" env-default:"8"`
	PaintHours            float64 `yaml:"paint_hours" env:"ESTIMATOR_PAINT_HOURS" env-default:"12"`
	MechanicalHours       float64 `yaml:"mechanical_hours" env:"ESTIMATOR_MECHANICAL_HOURS" env-default:"4"`
	FlareHours            float64 `yaml:"flare_hours" env:"ESTIMATOR_FLARE_HOURS" env-default:"2"`
	NitrogenPerStageHours float64 `yaml:"nitrogen_per_stage_hours" env:"ESTIMATOR_NITROGEN_PER_STAGE_HOURS" env-default:"1"`
	KosherHours           float64 `yaml:"kosher_hours" env:"ESTIMATOR_KOSHER_HOURS" env-default:"2"`
	AsbestosHours         float64 `yaml:"asbestos_hours" env:"ESTIMATOR_ASBESTOS_HOURS" env-default:"8"`
	CleaningClass         string  `yaml:"cleaning_class" env:"ESTIMATOR_CLEANING_CLASS" env-default:"C"`
}

// Defaults 转换为估算器默认值
func (c EstimatorConfig) Defaults() estimator.Defaults {
	return estimator.Defaults{
		CleaningHours:         c.CleaningHours,
		LiningHours:           c.LiningHours,
		BlastHours:            c.BlastHours,
		PaintHours:            c.PaintHours,
		MechanicalHours:       c.MechanicalHours,
		FlareHours:            c.FlareHours,
		NitrogenPerStageHours: c.NitrogenPerStageHours,
		KosherHours:           c.KosherHours,
		AsbestosHours:         c.AsbestosHours,
		CleaningClass:         c.CleaningClass,
	}
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE_PATH"`
}

// Load 加载配置：path 非空时读取 YAML 文件（环境变量覆盖），否则只读环境变量
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("配置文件不存在: %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("读取环境变量配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	ve := &apperrors.ValidationErrors{}

	if c.Evaluator.Workers <= 0 {
		ve.Add("evaluator.workers", "必须大于0")
	}
	if c.Evaluator.RefreshInterval < 0 {
		ve.Add("evaluator.refresh_interval", "不能为负数")
	}
	if c.Estimator.CleaningHours <= 0 {
		ve.Add("estimator.cleaning_hours", "必须大于0")
	}
	if c.Estimator.CleaningClass == "" {
		ve.Add("estimator.cleaning_class", "不能为空")
	}
	for field, v := range map[string]float64{
		"estimator.lining_hours":             c.Estimator.LiningHours,
		"estimator.blast_hours":              c.Estimator.BlastHours,
		"estimator.paint_hours":              c.Estimator.PaintHours,
		"estimator.mechanical_hours":         c.Estimator.MechanicalHours,
		"estimator.flare_hours":              c.Estimator.FlareHours,
		"estimator.nitrogen_per_stage_hours": c.Estimator.NitrogenPerStageHours,
		"estimator.kosher_hours":             c.Estimator.KosherHours,
		"estimator.asbestos_hours":           c.Estimator.AsbestosHours,
	} {
		if v < 0 {
			ve.Add(field, "不能为负数")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
