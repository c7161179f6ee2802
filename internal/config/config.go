// Package config loads schemats settings from, in rising precedence:
// built-in defaults, a schemats.yaml file, a .env file, SCHEMATS_*
// environment variables and command-line flags bound by the caller.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/koustreak/schemats/internal/cache"
	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/render"
)

// EnvPrefix prefixes every environment variable: database.url is read
// from SCHEMATS_DATABASE_URL.
const EnvPrefix = "SCHEMATS"

// Config is the full schemats configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Store    StoreConfig    `mapstructure:"store"`
}

// DatabaseConfig selects the database and what to read from it.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	Schema         string        `mapstructure:"schema"`
	Tables         []string      `mapstructure:"tables"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

// OutputConfig controls where and how generated output is written.
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	Header bool   `mapstructure:"header"`
	// Bucket, when set, publishes a relative Path into this object store bucket.
	Bucket string `mapstructure:"bucket"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// CacheConfig controls the serve command's render cache. An empty
// RedisAddr selects the in-process cache.
type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// StoreConfig describes the S3-compatible object store. An empty Endpoint
// disables s3:// targets.
type StoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// New returns a viper instance with defaults and environment binding in
// place. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("database.url", "")
	v.SetDefault("database.schema", "")
	v.SetDefault("database.tables", []string{})
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.query_timeout", 30*time.Second)
	v.SetDefault("output.path", "-")
	v.SetDefault("output.format", string(render.FormatTypeScript))
	v.SetDefault("output.header", true)
	v.SetDefault("output.bucket", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.access_key", "")
	v.SetDefault("store.secret_key", "")
	v.SetDefault("store.use_ssl", false)
	v.SetDefault("store.region", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional variable works too.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	return v
}

// Options tells Load where to look for files.
type Options struct {
	// File is an explicit config file. Empty searches for schemats.yaml
	// in the working directory and does not fail when none exists.
	File string

	// EnvFiles are .env files loaded into the process environment before
	// reading. Missing files are skipped. Variables already set win.
	EnvFiles []string

	// Tables, when non-nil, replaces database.tables as given. Values from
	// files and the environment are split on commas; these are not, so a
	// quoted name containing a comma stays whole.
	Tables []string
}

// Load reads configuration into a Config.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load "+f, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("schemats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode config", err)
	}
	if opts.Tables != nil {
		cfg.Database.Tables = append([]string(nil), opts.Tables...)
	} else {
		cfg.Database.Tables = splitList(cfg.Database.Tables)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Database.MaxConns < 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "database.max_conns must not be negative, got %d", c.Database.MaxConns)
	}
	if c.Cache.TTL < 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

// splitList accepts both list values and comma-separated ones, since
// environment variables can only carry the latter.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// DatabaseConfig builds the driver configuration.
func (c *Config) DatabaseConfig() *database.Config {
	dc := database.DefaultConfig(c.Database.URL)
	if c.Database.MaxConns > 0 {
		dc.MaxConns = c.Database.MaxConns
	}
	if c.Database.ConnectTimeout > 0 {
		dc.ConnectTimeout = c.Database.ConnectTimeout
	}
	if c.Database.QueryTimeout > 0 {
		dc.QueryTimeout = c.Database.QueryTimeout
	}
	return dc
}

// LoggerConfig builds the logger configuration. Output goes to stderr.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

// StoreConfig returns the object store configuration, or nil when no
// endpoint is configured.
func (c *Config) StoreConfig() *filestore.Config {
	if c.Store.Endpoint == "" {
		return nil
	}
	sc := filestore.DefaultConfig(c.Store.Endpoint, c.Store.AccessKey, c.Store.SecretKey)
	sc.UseSSL = c.Store.UseSSL
	sc.Region = c.Store.Region
	return sc
}

// RedisConfig returns the Redis cache configuration, or nil when the
// in-process cache should be used.
func (c *Config) RedisConfig() *cache.RedisConfig {
	if c.Cache.RedisAddr == "" {
		return nil
	}
	return &cache.RedisConfig{
		Addr:     c.Cache.RedisAddr,
		Password: c.Cache.RedisPassword,
		DB:       c.Cache.RedisDB,
		Cache:    c.CacheSettings(),
	}
}

// CacheSettings returns the backend-independent cache settings.
func (c *Config) CacheSettings() cache.Config {
	cc := cache.DefaultConfig()
	if c.Cache.TTL > 0 {
		cc.DefaultTTL = c.Cache.TTL
	}
	return cc
}

// OutputTarget resolves where generated output goes. A relative path with
// output.bucket set becomes an s3:// target in that bucket.
func (c *Config) OutputTarget() string {
	path := c.Output.Path
	if c.Output.Bucket == "" || path == "" || path == "-" || filestore.IsObjectURL(path) || strings.HasPrefix(path, "/") {
		return path
	}
	return "s3://" + c.Output.Bucket + "/" + strings.TrimPrefix(path, "./")
}
