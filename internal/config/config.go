package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/server"
)

const (
	// ConfigName is the config file name searched for, without extension.
	ConfigName = "sputnik"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "SPUTNIK"
)

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreS3     = "s3"
)

// Like recorder kinds.
const (
	RecorderRedis = "redis"
	RecorderAMQP  = "amqp"
	RecorderMySQL = "mysql"
)

// Config is the complete Sputnik configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	Likes    LikesConfig    `mapstructure:"likes"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`

	// file is the config file that was read, if any.
	file string
}

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	Address           string        `mapstructure:"address"`
	Title             string        `mapstructure:"title"`
	MountID           string        `mapstructure:"mount_id"`
	WebSocketPath     string        `mapstructure:"websocket_path"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MaxEventQueue     int           `mapstructure:"max_event_queue"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	DevMode           bool          `mapstructure:"dev_mode"`
}

// SessionConfig holds session limits and the persistence backend.
type SessionConfig struct {
	// Store is "memory", "redis" or "s3".
	Store           string        `mapstructure:"store"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	MaxDetached     int           `mapstructure:"max_detached"`
	ResumeWindow    time.Duration `mapstructure:"resume_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig holds the Redis connection used by the session store and the
// like counter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// S3Config holds the bucket used by the S3 session store.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// LikesConfig selects where likes are recorded.
type LikesConfig struct {
	// Recorders lists "redis", "amqp" and/or "mysql". Empty disables
	// recording.
	Recorders []string      `mapstructure:"recorders"`
	Buffer    int           `mapstructure:"buffer"`
	Timeout   time.Duration `mapstructure:"timeout"`

	// RedisPrefix prefixes the per-widget counter key.
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// RabbitMQConfig holds the AMQP connection for the like publisher.
type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

// DatabaseConfig holds the MySQL connection for the like ledger.
type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	d := server.DefaultServerConfig()

	v.SetDefault("server.address", d.Address)
	v.SetDefault("server.title", "Like")
	v.SetDefault("server.mount_id", d.MountID)
	v.SetDefault("server.websocket_path", d.WebSocketPath)
	v.SetDefault("server.handshake_timeout", d.HandshakeTimeout)
	v.SetDefault("server.read_timeout", d.ReadTimeout)
	v.SetDefault("server.write_timeout", d.WriteTimeout)
	v.SetDefault("server.heartbeat_interval", d.HeartbeatInterval)
	v.SetDefault("server.max_event_queue", d.MaxEventQueue)
	v.SetDefault("server.shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("server.dev_mode", false)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.max_sessions", d.MaxSessions)
	v.SetDefault("session.max_detached", d.MaxDetachedSessions)
	v.SetDefault("session.resume_window", d.ResumeWindow)
	v.SetDefault("session.cleanup_interval", d.CleanupInterval)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "sessions/")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_path_style", false)

	v.SetDefault("likes.recorders", []string{})
	v.SetDefault("likes.buffer", 256)
	v.SetDefault("likes.timeout", 5*time.Second)
	v.SetDefault("likes.redis_prefix", "likes:")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "like.queue")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. With an empty path, sputnik.{yaml,yml,json} is
// looked up in the working directory and ./config and may be absent. A
// non-empty path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, serrors.New("E106").WithDetail(path).Wrap(err)
		}
	}

	cfg := &Config{file: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, serrors.New("E106").WithDetail("decode").Wrap(err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File returns the config file that was read, or "".
func (c *Config) File() string {
	return c.file
}

func (c *Config) normalize() {
	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	recorders := c.Likes.Recorders[:0]
	for _, r := range c.Likes.Recorders {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" && !slices.Contains(recorders, r) {
			recorders = append(recorders, r)
		}
	}
	c.Likes.Recorders = recorders
}

// Validate checks the configuration and returns a structured error for the
// first problem found.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return serrors.New("E101").WithDetailf("server.address is %q", c.Server.Address).Wrap(err)
	}
	if id := c.Server.MountID; id == "" || strings.ContainsAny(id, " \t\n#") {
		return serrors.New("E102").WithDetailf("server.mount_id is %q", id)
	}
	if !strings.HasPrefix(c.Server.WebSocketPath, "/") {
		return serrors.New("E105").WithDetailf("server.websocket_path %q must start with /", c.Server.WebSocketPath)
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{"server.handshake_timeout", c.Server.HandshakeTimeout},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.heartbeat_interval", c.Server.HeartbeatInterval},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"session.resume_window", c.Session.ResumeWindow},
		{"session.cleanup_interval", c.Session.CleanupInterval},
		{"likes.timeout", c.Likes.Timeout},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return serrors.New("E105").WithDetailf("%s is %s", d.key, d.d)
		}
	}
	if c.Server.MaxEventQueue <= 0 || c.Likes.Buffer <= 0 || c.Session.MaxSessions < 0 || c.Session.MaxDetached < 0 {
		return serrors.New("E105").WithDetail("queue sizes must be positive and session limits non-negative")
	}

	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return serrors.New("E104").WithDetail("session.store is redis but redis.addr is empty")
		}
	case StoreS3:
		if c.S3.Bucket == "" {
			return serrors.New("E104").WithDetail("session.store is s3 but s3.bucket is empty")
		}
	default:
		return serrors.New("E103").WithDetailf("session.store is %q", c.Session.Store)
	}

	for _, r := range c.Likes.Recorders {
		switch r {
		case RecorderRedis:
			if c.Redis.Addr == "" {
				return serrors.New("E104").WithDetail("likes.recorders has redis but redis.addr is empty")
			}
		case RecorderAMQP:
			if c.RabbitMQ.URL == "" {
				return serrors.New("E104").WithDetail("likes.recorders has amqp but rabbitmq.url is empty")
			}
		case RecorderMySQL:
			if c.Database.DSN == "" {
				return serrors.New("E104").WithDetail("likes.recorders has mysql but database.dsn is empty")
			}
		default:
			return serrors.New("E108").WithDetailf("likes.recorders has %q", r)
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return serrors.New("E107").WithDetail(err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return serrors.New("E107").WithDetailf("log.format is %q", c.Log.Format)
	}
	return nil
}

// HasRecorder reports whether likes are recorded with kind.
func (c *Config) HasRecorder(kind string) bool {
	return slices.Contains(c.Likes.Recorders, kind)
}

// ToServerConfig converts the configuration for server.New.
func (c *Config) ToServerConfig(logger *slog.Logger) *server.ServerConfig {
	cfg := server.DefaultServerConfig()
	cfg.Address = c.Server.Address
	cfg.Title = c.Server.Title
	cfg.MountID = c.Server.MountID
	cfg.WebSocketPath = c.Server.WebSocketPath
	cfg.HandshakeTimeout = c.Server.HandshakeTimeout
	cfg.ReadTimeout = c.Server.ReadTimeout
	cfg.WriteTimeout = c.Server.WriteTimeout
	cfg.HeartbeatInterval = c.Server.HeartbeatInterval
	cfg.MaxEventQueue = c.Server.MaxEventQueue
	cfg.ShutdownTimeout = c.Server.ShutdownTimeout
	cfg.DevMode = c.Server.DevMode
	cfg.MaxSessions = c.Session.MaxSessions
	cfg.MaxDetachedSessions = c.Session.MaxDetached
	cfg.ResumeWindow = c.Session.ResumeWindow
	cfg.CleanupInterval = c.Session.CleanupInterval
	cfg.Logger = logger
	return cfg
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level is %q", l.Level)
	}
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
