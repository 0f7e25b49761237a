package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"learner_analytics_backend/internal/engine"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Engine    EngineConfig    `mapstructure:"engine"`
	Export    ExportConfig    `mapstructure:"export"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // release 模式下也执行数据库迁移
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig 引擎可调参数，与产品契约相关的子集。
// 零值表示"未配置"，使用 engine.DefaultParams 的默认值。
type EngineConfig struct {
	ZScore           float64 `mapstructure:"z_score"`
	SmoothingAlpha   float64 `mapstructure:"smoothing_alpha"`
	MinBandHalfWidth float64 `mapstructure:"min_band_half_width"`
	TargetAccuracy   float64 `mapstructure:"target_accuracy"`
	TrendRatio       float64 `mapstructure:"trend_ratio"`
	AtRiskThreshold  float64 `mapstructure:"at_risk_threshold"`
	CacheTTLMinutes  int     `mapstructure:"cache_ttl_minutes"`
}

type ExportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Hour    int    `mapstructure:"hour"` // 每日导出的小时（本地时区，0-23）
	Prefix  string `mapstructure:"prefix"`
}

// EngineParams 在引擎默认参数之上套用配置覆盖。
func (c *Config) EngineParams() engine.Params {
	p := engine.DefaultParams()
	if c.Engine.ZScore > 0 {
		p.ZScore = c.Engine.ZScore
	}
	if c.Engine.SmoothingAlpha > 0 {
		p.SmoothingAlpha = c.Engine.SmoothingAlpha
	}
	if c.Engine.MinBandHalfWidth > 0 {
		p.MinBandHalfWidth = c.Engine.MinBandHalfWidth
	}
	if c.Engine.TargetAccuracy > 0 {
		p.TargetAccuracy = c.Engine.TargetAccuracy
	}
	if c.Engine.TrendRatio > 0 {
		p.TrendRatio = c.Engine.TrendRatio
	}
	if c.Engine.AtRiskThreshold > 0 {
		p.AtRiskThreshold = c.Engine.AtRiskThreshold
	}
	return p
}

// CacheTTL 派生结果缓存的过期时间，默认 15 分钟。
func (c *Config) CacheTTL() time.Duration {
	if c.Engine.CacheTTLMinutes > 0 {
		return time.Duration(c.Engine.CacheTTLMinutes) * time.Minute
	}
	return 15 * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNER_ANALYTICS")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage / MinIO
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}
