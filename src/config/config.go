package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds every runtime setting of the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Minio    MinioConfig    `koanf:"minio"`
	Auth     AuthConfig     `koanf:"auth"`
	Cache    CacheConfig    `koanf:"cache"`
	Backup   BackupConfig   `koanf:"backup"`
	Limit    LimitConfig    `koanf:"limit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	Mode string `koanf:"mode"`
}

// DatabaseConfig selects the gorm dialect. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type RedisConfig struct {
	Mode       string `koanf:"mode"`
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	Password   string `koanf:"password"`
	MasterName string `koanf:"master_name"`
	Sentinels  string `koanf:"sentinels"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != "" || r.Mode == "sentinel"
}

type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
	AdminPassword string        `koanf:"admin_password"`
}

type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type BackupConfig struct {
	Dir      string `koanf:"dir"`
	Schedule string `koanf:"schedule"`
}

type LimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Addr returns the listen address for the http server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: "2000", Mode: "release"},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "serverdata/database.db",
			Port:    "5432",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Port: "6379"},
		Minio: MinioConfig{Bucket: "yemenflix"},
		Auth: AuthConfig{
			JWTSecret:     "yemen-flix-dev-secret",
			TokenTTL:      7 * 24 * time.Hour,
			BcryptCost:    10,
			AdminPassword: "admin123",
		},
		Cache:   CacheConfig{TTL: 5 * time.Minute},
		Backup:  BackupConfig{Dir: "backups"},
		Limit:   LimitConfig{RPS: 5, Burst: 10},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// envMappings maps the flat environment names to nested config paths.
var envMappings = map[string]string{
	"host":              "server.host",
	"app_port":          "server.port",
	"gin_mode":          "server.mode",
	"db_driver":         "database.driver",
	"db_path":           "database.path",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_pass":           "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.sslmode",
	"redis_mode":        "redis.mode",
	"redis_host":        "redis.host",
	"redis_port":        "redis.port",
	"redis_password":    "redis.password",
	"redis_master_name": "redis.master_name",
	"redis_sentinels":   "redis.sentinels",
	"minio_endpoint":    "minio.endpoint",
	"minio_access_key":  "minio.access_key",
	"minio_secret_key":  "minio.secret_key",
	"minio_bucket":      "minio.bucket",
	"minio_use_ssl":     "minio.use_ssl",
	"jwt_secret":        "auth.jwt_secret",
	"jwt_ttl":           "auth.token_ttl",
	"bcrypt_cost":       "auth.bcrypt_cost",
	"admin_password":    "auth.admin_password",
	"cache_ttl":         "cache.ttl",
	"backup_dir":        "backup.dir",
	"backup_schedule":   "backup.schedule",
	"rate_limit_rps":    "limit.rps",
	"rate_limit_burst":  "limit.burst",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
}

// envTransform returns "" for variables we do not own so koanf skips them.
func envTransform(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

// Load reads .env (when present), then layers defaults, an optional YAML
// file named by CONFIG_FILE and the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}
