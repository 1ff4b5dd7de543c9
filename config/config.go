// Package config loads the proposal viewer configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// MaxFileSize limits configuration input.
const MaxFileSize = 1 << 20

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("config parse failed")
	ErrConfigTooLarge = errors.New("config file too large")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// PDF engines.
const (
	EngineChromium    = "chromium"
	EngineRod         = "rod"
	EngineWKHTMLTOPDF = "wkhtmltopdf"
	EngineNone        = "none"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheFS     = "fs"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds the viewer configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Render RenderConfig `yaml:"render"`
	PDF    PDFConfig    `yaml:"pdf"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	BasePath        string        `yaml:"basePath"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StoreConfig selects the proposal store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RenderConfig tunes HTML composition.
type RenderConfig struct {
	AssetBaseURL string `yaml:"assetBaseURL"`
}

// PDFConfig selects and tunes the PDF engine.
type PDFConfig struct {
	Engine               string        `yaml:"engine"`
	BrowserPath          string        `yaml:"browserPath"`
	WKHTMLTOPDFPath      string        `yaml:"wkhtmltopdfPath"`
	Args                 []string      `yaml:"args"`
	Timeout              time.Duration `yaml:"timeout"`
	PageSize             string        `yaml:"pageSize"`
	BaseURL              string        `yaml:"baseURL"`
	ExternalAssetsPolicy string        `yaml:"externalAssetsPolicy"`
}

// CacheConfig selects the rendered artifact cache.
type CacheConfig struct {
	Driver        string        `yaml:"driver"`
	Dir           string        `yaml:"dir"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	TTL           time.Duration `yaml:"ttl"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			DSN:    "file:proposals.db?cache=shared",
		},
		PDF: PDFConfig{
			Engine:  EngineChromium,
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Driver: CacheMemory,
			Dir:    "./artifacts",
			TTL:    time.Hour,
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the input does not set.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil destination", ErrConfigParse)
	}
	if len(data) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxFileSize)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// ApplyEnv overrides cfg from PROPOSAL_* variables. A nil lookup uses
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = parsed
		return nil
	}

	str("PROPOSAL_HOST", &c.Server.Host)
	str("PROPOSAL_PORT", &c.Server.Port)
	str("PROPOSAL_BASE_PATH", &c.Server.BasePath)
	str("PROPOSAL_STORE_DRIVER", &c.Store.Driver)
	str("PROPOSAL_STORE_DSN", &c.Store.DSN)
	str("PROPOSAL_ASSET_BASE_URL", &c.Render.AssetBaseURL)
	str("PROPOSAL_PDF_ENGINE", &c.PDF.Engine)
	str("PROPOSAL_PDF_BROWSER_PATH", &c.PDF.BrowserPath)
	str("PROPOSAL_PDF_WKHTMLTOPDF_PATH", &c.PDF.WKHTMLTOPDFPath)
	str("PROPOSAL_PDF_BASE_URL", &c.PDF.BaseURL)
	str("PROPOSAL_CACHE_DRIVER", &c.Cache.Driver)
	str("PROPOSAL_CACHE_DIR", &c.Cache.Dir)
	str("PROPOSAL_REDIS_ADDR", &c.Cache.RedisAddr)
	str("PROPOSAL_REDIS_PASSWORD", &c.Cache.RedisPassword)
	if v, ok := lookup("PROPOSAL_REDIS_DB"); ok && strings.TrimSpace(v) != "" {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: PROPOSAL_REDIS_DB: %v", ErrInvalidConfig, err)
		}
		c.Cache.RedisDB = db
	}
	if err := dur("PROPOSAL_PDF_TIMEOUT", &c.PDF.Timeout); err != nil {
		return err
	}
	return dur("PROPOSAL_CACHE_TTL", &c.Cache.TTL)
}

// Validate rejects unknown drivers and missing connection settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("%w: server.port is required", ErrInvalidConfig)
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("%w: store.dsn is required for %s", ErrInvalidConfig, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	switch c.PDF.Engine {
	case EngineChromium, EngineRod, EngineWKHTMLTOPDF, EngineNone, "":
	default:
		return fmt.Errorf("%w: unknown pdf engine %q", ErrInvalidConfig, c.PDF.Engine)
	}
	if c.PDF.Timeout < 0 {
		return fmt.Errorf("%w: pdf.timeout must not be negative", ErrInvalidConfig)
	}
	switch c.PDF.ExternalAssetsPolicy {
	case "", "allow", "block":
	default:
		return fmt.Errorf("%w: unknown external assets policy %q", ErrInvalidConfig, c.PDF.ExternalAssetsPolicy)
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheNone, "":
	case CacheFS:
		if strings.TrimSpace(c.Cache.Dir) == "" {
			return fmt.Errorf("%w: cache.dir is required for fs", ErrInvalidConfig)
		}
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			return fmt.Errorf("%w: cache.redisAddr is required for redis", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache driver %q", ErrInvalidConfig, c.Cache.Driver)
	}
	return nil
}
