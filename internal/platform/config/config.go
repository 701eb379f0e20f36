// Package config carga la configuración del servicio y de la CLI: .env opcional,
// archivo YAML opcional y variables VETSHEET_* (p.ej. VETSHEET_STORAGE_DRIVER).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VETSHEET"

// ErrInvalidConfig envuelve cualquier error de validación.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Source  SourceConfig  `mapstructure:"source"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Parser  ParserConfig  `mapstructure:"parser"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	App    string `mapstructure:"app"`
}

// StorageConfig: driver memory | postgres | sqlite.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// SourceConfig: kind fs | minio.
type SourceConfig struct {
	Kind  string      `mapstructure:"kind"`
	Dir   string      `mapstructure:"dir"`
	MinIO MinIOConfig `mapstructure:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// CacheConfig: kind none | lru | redis.
type CacheConfig struct {
	Kind  string        `mapstructure:"kind"`
	Size  int           `mapstructure:"size"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type ParserConfig struct {
	KeepRaw bool `mapstructure:"keep_raw"`
}

var defaults = map[string]any{
	"server.addr":          ":8080",
	"server.read_timeout":  5 * time.Second,
	"server.write_timeout": 10 * time.Second,

	"log.level":  "info",
	"log.format": "text",
	"log.app":    "vet-sheet-parser",

	"storage.driver":       "memory",
	"storage.dsn":          "",
	"storage.auto_migrate": true,

	"source.kind":             "fs",
	"source.dir":              "data",
	"source.minio.endpoint":   "",
	"source.minio.access_key": "",
	"source.minio.secret_key": "",
	"source.minio.bucket":     "",
	"source.minio.prefix":     "",
	"source.minio.use_ssl":    false,

	"cache.kind":           "lru",
	"cache.size":           256,
	"cache.ttl":            24 * time.Hour,
	"cache.redis.addr":     "localhost:6379",
	"cache.redis.password": "",
	"cache.redis.db":       0,
	"cache.redis.prefix":   "vetsheet:parse:",

	"parser.keep_raw": false,
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal sólo ve las claves conocidas: los defaults las registran todas.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Load lee .env (si existe), el YAML en path (si path no es vacío) y las
// variables VETSHEET_*. Devuelve la config validada.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "sqlite":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("%w: storage.dsn is required for driver %q", ErrInvalidConfig, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Source.Kind {
	case "fs":
		if strings.TrimSpace(c.Source.Dir) == "" {
			return fmt.Errorf("%w: source.dir is required", ErrInvalidConfig)
		}
	case "minio":
		if c.Source.MinIO.Endpoint == "" || c.Source.MinIO.Bucket == "" {
			return fmt.Errorf("%w: source.minio.endpoint and source.minio.bucket are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalidConfig, c.Source.Kind)
	}

	switch c.Cache.Kind {
	case "none", "":
	case "lru":
		if c.Cache.Size <= 0 {
			return fmt.Errorf("%w: cache.size must be > 0", ErrInvalidConfig)
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("%w: cache.redis.addr is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache.kind %q", ErrInvalidConfig, c.Cache.Kind)
	}
	return nil
}
