package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Progress  ProgressConfig  `mapstructure:"progress"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
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
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
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

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// ProgressConfig 进度/游戏化策略常量
// 完成状态阈值与证书资格阈值是两套独立策略，不要合并
type ProgressConfig struct {
	CompletionStatusThreshold int `mapstructure:"completion_status_threshold"` // Enrollment 转为 completed 的百分比
	CertificateThreshold      int `mapstructure:"certificate_threshold"`      // 证书签发资格百分比

	PointsQuizPerfect int `mapstructure:"points_quiz_perfect"` // 测验满分
	PointsQuizPartial int `mapstructure:"points_quiz_partial"` // 测验未满分的尝试
	PointsLesson      int `mapstructure:"points_lesson"`       // 普通课时完成

	RankIntermediate int `mapstructure:"rank_intermediate"` // Intermediate 段位积分下限
	RankPro          int `mapstructure:"rank_pro"`          // Pro 段位积分下限
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LMS")
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

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	viper.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	viper.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	viper.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	viper.BindEnv("storage.oss_bucket", "OSS_BUCKET")

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
	cfg.Progress.ApplyDefaults()

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// ProgressStore 持有当前生效的进度策略
// 热更新在 fsnotify 协程写入，请求处理协程读取，整份替换保证无竞态
type ProgressStore struct {
	v atomic.Pointer[ProgressConfig]
}

func NewProgressStore(cfg ProgressConfig) *ProgressStore {
	s := &ProgressStore{}
	s.Store(cfg)
	return s
}

// Load 返回当前策略快照，调用方不得修改
func (s *ProgressStore) Load() *ProgressConfig {
	return s.v.Load()
}

func (s *ProgressStore) Store(cfg ProgressConfig) {
	cfg.ApplyDefaults()
	s.v.Store(&cfg)
}

// ApplyDefaults 填充未配置的策略常量
func (p *ProgressConfig) ApplyDefaults() {
	if p.CompletionStatusThreshold == 0 {
		p.CompletionStatusThreshold = 95
	}
	if p.CertificateThreshold == 0 {
		p.CertificateThreshold = 70
	}
	if p.PointsQuizPerfect == 0 {
		p.PointsQuizPerfect = 20
	}
	if p.PointsQuizPartial == 0 {
		p.PointsQuizPartial = 5
	}
	if p.PointsLesson == 0 {
		p.PointsLesson = 10
	}
	if p.RankIntermediate == 0 {
		p.RankIntermediate = 200
	}
	if p.RankPro == 0 {
		p.RankPro = 500
	}
}
