// Package config loads pathfinder settings from a config file, the
// environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. PATHFINDER_SERVER_ADDR.
const EnvPrefix = "PATHFINDER"

// Config is the full pathfinder configuration.
type Config struct {
	Server Server `mapstructure:"server"`
	Graph  Graph  `mapstructure:"graph"`
	Search Search `mapstructure:"search"`
	Log    Log    `mapstructure:"log"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxConcurrent  int           `mapstructure:"max_concurrent" validate:"gt=0"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`

	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
	// RateIPHeader names a proxy header whose last entry identifies the
	// client, e.g. X-Forwarded-For. Empty keys limits by remote address.
	RateIPHeader string `mapstructure:"rate_ip_header"`
}

// Graph locates the preprocessed road graph.
type Graph struct {
	Path string `mapstructure:"path" validate:"required"`
}

// Search sets the engine defaults.
type Search struct {
	Algorithm     string  `mapstructure:"algorithm" validate:"oneof=bfs bibfs parallel-bibfs dijkstra bidijkstra astar biastar"`
	Queue         string  `mapstructure:"queue" validate:"oneof=binary fibonacci"`
	CacheSize     int     `mapstructure:"cache_size" validate:"gte=0"`
	MaxSnapMeters float64 `mapstructure:"max_snap_meters" validate:"gt=0"`
}

// Log configures the root logger.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

func newViper(configFile string) *viper.Viper {
	vi := viper.New()

	vi.SetEnvPrefix(EnvPrefix)
	vi.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vi.AutomaticEnv()

	if configFile != "" {
		vi.SetConfigFile(configFile)
	} else {
		vi.SetConfigName("pathfinder")
		vi.AddConfigPath(".")
		vi.AddConfigPath("./config")
	}

	vi.SetDefault("server.addr", ":8080")
	vi.SetDefault("server.read_timeout", 5*time.Second)
	vi.SetDefault("server.write_timeout", 5*time.Second)
	vi.SetDefault("server.request_timeout", 5*time.Second)
	vi.SetDefault("server.max_concurrent", runtime.NumCPU()*2)
	vi.SetDefault("server.cors_origins", []string{})
	vi.SetDefault("server.rate_limit", 0)
	vi.SetDefault("server.rate_burst", 10)
	vi.SetDefault("server.rate_ip_header", "")

	vi.SetDefault("graph.path", "graph.bin")

	vi.SetDefault("search.algorithm", "bidijkstra")
	vi.SetDefault("search.queue", "binary")
	vi.SetDefault("search.cache_size", 1024)
	vi.SetDefault("search.max_snap_meters", 500)

	vi.SetDefault("log.level", "info")
	vi.SetDefault("log.format", "console")

	return vi
}

// Load reads configuration from file (optional), then the environment, then
// defaults. A named file that does not exist is an error; when no file is
// named a missing pathfinder.yaml is ignored.
func Load(file string) (*Config, error) {
	vi := newViper(file)
	if err := vi.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := vi.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the struct tags of c.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLogger builds the root logger. format is "json" or "console".
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	econf := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		TimeKey:        "ts",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var core zapcore.Core
	if format == "json" {
		core = zapcore.NewCore(zapcore.NewJSONEncoder(econf), os.Stderr, lvl)
	} else {
		econf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(econf), os.Stderr, lvl)
	}
	return zap.New(core), nil
}
