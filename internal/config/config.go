package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/nestingglobal/nestview/internal/cache"
	"github.com/nestingglobal/nestview/internal/logging"
)

// Config holds everything nestview reads from its config file and
// environment.
type Config struct {
	APIURL    string
	SocketURL string
	AMQPURL   string

	CacheBackend  string
	CacheDir      string
	CacheCompress bool

	LogLevel  string
	LogFormat string
	LogFile   string

	FluentHost string
	FluentPort int

	MetricsAddr string
}

const (
	defaultConfigPath   = "~/.config/nestview/config.toml"
	defaultAPIURL       = "http://127.0.0.1:5000"
	defaultCacheBackend = cache.KindFile
	defaultCacheDir     = "~/.cache/nestview"
	defaultLogLevel     = "info"
	defaultLogFormat    = logging.FormatText
	defaultLogFile      = "~/.local/state/nestview/nestview.log"
)

// Environment variables that override the config file.
const (
	EnvAPIURL        = "NESTVIEW_API_URL"
	EnvSocketURL     = "NESTVIEW_SOCKET_URL"
	EnvAMQPURL       = "NESTVIEW_AMQP_URL"
	EnvCacheBackend  = "NESTVIEW_CACHE_BACKEND"
	EnvCacheDir      = "NESTVIEW_CACHE_DIR"
	EnvCacheCompress = "NESTVIEW_CACHE_COMPRESS"
	EnvLogLevel      = "NESTVIEW_LOG_LEVEL"
	EnvLogFormat     = "NESTVIEW_LOG_FORMAT"
	EnvLogFile       = "NESTVIEW_LOG_FILE"
	EnvFluentHost    = "NESTVIEW_FLUENT_HOST"
	EnvFluentPort    = "NESTVIEW_FLUENT_PORT"
	EnvMetricsAddr   = "NESTVIEW_METRICS_ADDR"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:       defaultAPIURL,
		CacheBackend: defaultCacheBackend,
		CacheDir:     mustExpand(defaultCacheDir),
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		LogFile:      mustExpand(defaultLogFile),
	}
}

type fileConfig struct {
	APIURL        string `toml:"api_url"`
	SocketURL     string `toml:"socket_url"`
	AMQPURL       string `toml:"amqp_url"`
	CacheBackend  string `toml:"cache_backend"`
	CacheDir      string `toml:"cache_dir"`
	CacheCompress *bool  `toml:"cache_compress"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	FluentHost    string `toml:"fluent_host"`
	FluentPort    int    `toml:"fluent_port"`
	MetricsAddr   string `toml:"metrics_addr"`
}

// Load reads the config file at path (or the default location), then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw fileConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.merge(raw)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.CacheDir = mustExpand(cfg.CacheDir)
	cfg.LogFile = mustExpand(cfg.LogFile)
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment without replacing variables that are already set. An empty
// path tries ./.env and ignores its absence.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) merge(raw fileConfig) {
	setString(&c.APIURL, raw.APIURL)
	setString(&c.SocketURL, raw.SocketURL)
	setString(&c.AMQPURL, raw.AMQPURL)
	setString(&c.CacheBackend, raw.CacheBackend)
	setString(&c.CacheDir, raw.CacheDir)
	if raw.CacheCompress != nil {
		c.CacheCompress = *raw.CacheCompress
	}
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.LogFormat, raw.LogFormat)
	setString(&c.LogFile, raw.LogFile)
	setString(&c.FluentHost, raw.FluentHost)
	if raw.FluentPort > 0 {
		c.FluentPort = raw.FluentPort
	}
	setString(&c.MetricsAddr, raw.MetricsAddr)
}

func (c *Config) applyEnv() error {
	setString(&c.APIURL, os.Getenv(EnvAPIURL))
	setString(&c.SocketURL, os.Getenv(EnvSocketURL))
	setString(&c.AMQPURL, os.Getenv(EnvAMQPURL))
	setString(&c.CacheBackend, os.Getenv(EnvCacheBackend))
	setString(&c.CacheDir, os.Getenv(EnvCacheDir))
	setString(&c.LogLevel, os.Getenv(EnvLogLevel))
	setString(&c.LogFormat, os.Getenv(EnvLogFormat))
	setString(&c.LogFile, os.Getenv(EnvLogFile))
	setString(&c.FluentHost, os.Getenv(EnvFluentHost))
	setString(&c.MetricsAddr, os.Getenv(EnvMetricsAddr))

	if v := strings.TrimSpace(os.Getenv(EnvCacheCompress)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheCompress, err)
		}
		c.CacheCompress = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvFluentPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFluentPort, err)
		}
		c.FluentPort = port
	}
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIURL) == "" {
		errs = append(errs, errors.New("api_url is empty"))
	}
	switch strings.ToLower(c.CacheBackend) {
	case cache.KindFile, cache.KindSQLite, cache.KindMemory, "none":
	default:
		errs = append(errs, fmt.Errorf("unknown cache_backend %q", c.CacheBackend))
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatPretty, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.FluentPort < 0 || c.FluentPort > 65535 {
		errs = append(errs, fmt.Errorf("fluent_port %d out of range", c.FluentPort))
	}
	return errors.Join(errs...)
}

// PushEndpoint resolves which push endpoint to dial when no explicit one is
// given: the broker when configured, otherwise the socket URL.
func (c Config) PushEndpoint() string {
	if strings.TrimSpace(c.AMQPURL) != "" {
		return c.AMQPURL
	}
	return c.SocketURL
}

// LogValue keeps credentials in the broker URL out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_url", c.APIURL),
		slog.String("socket_url", c.SocketURL),
		slog.Bool("amqp", c.AMQPURL != ""),
		slog.String("cache_backend", c.CacheBackend),
		slog.String("cache_dir", c.CacheDir),
		slog.Bool("cache_compress", c.CacheCompress),
		slog.String("log_format", c.LogFormat),
		slog.String("metrics_addr", c.MetricsAddr),
	)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
