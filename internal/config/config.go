package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App      `yaml:"app"`
	Server    Server   `yaml:"server"`
	Database  DB       `yaml:"database"`
	Cache     Cache    `yaml:"cache"`
	Auth      Auth     `yaml:"auth"`
	RateLimit Limit    `yaml:"rate_limit"`
	Tracking  Tracking `yaml:"tracking"`
	Log       Log      `yaml:"log"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port            int    `yaml:"port"`
	ReadTimeout     int    `yaml:"read_timeout"`
	WriteTimeout    int    `yaml:"write_timeout"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// 数据库配置
type DB struct {
	Driver   string `yaml:"driver"` // mysql | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Path     string `yaml:"path"` // sqlite 文件路径
}

// 缓存配置（Redis）
type Cache struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// 认证配置
type Auth struct {
	Enabled         bool   `yaml:"enabled"`
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	AdminPassword   string `yaml:"admin_password"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 扫码追踪配置
type Tracking struct {
	Workers            int    `yaml:"workers"`
	QueueSize          int    `yaml:"queue_size"`
	TaskTimeoutSeconds int    `yaml:"task_timeout_seconds"`
	InvalidQRURL       string `yaml:"invalid_qr_url"`
	InactiveQRURL      string `yaml:"inactive_qr_url"`
	CountryHeader      string `yaml:"country_header"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// 可通过环境变量覆盖的敏感配置
const (
	EnvDBPassword    = "QR_DB_PASSWORD"
	EnvRedisPassword = "QR_REDIS_PASSWORD"
	EnvAuthSecret    = "QR_AUTH_SECRET"
	EnvAdminPassword = "QR_ADMIN_PASSWORD"
)

// 加载配置：YAML 文件 -> .env -> 环境变量覆盖 -> 默认值 -> 校验
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// .env 文件是可选的
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv(EnvAuthSecret); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.Auth.AdminPassword = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.Auth.ExpirationHours == 0 {
		c.Auth.ExpirationHours = 24
	}
	if c.Tracking.Workers <= 0 {
		c.Tracking.Workers = 4
	}
	if c.Tracking.QueueSize <= 0 {
		c.Tracking.QueueSize = 1024
	}
	if c.Tracking.TaskTimeoutSeconds <= 0 {
		c.Tracking.TaskTimeoutSeconds = 10
	}
	if c.Tracking.CountryHeader == "" {
		c.Tracking.CountryHeader = "CF-IPCountry"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("mysql 需要配置 database.host 和 database.name"))
		}
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("sqlite 需要配置 database.path"))
		}
	default:
		errs = append(errs, fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver))
	}
	if c.Tracking.InvalidQRURL == "" || c.Tracking.InactiveQRURL == "" {
		errs = append(errs, errors.New("tracking.invalid_qr_url 和 tracking.inactive_qr_url 必须配置"))
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		errs = append(errs, errors.New("启用认证时必须配置 auth.secret"))
	}
	return errors.Join(errs...)
}
