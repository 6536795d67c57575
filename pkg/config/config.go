package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching/worker"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BOLSA_DB_HOST
const EnvPrefix = "BOLSA"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Matching MatchingConfig `mapstructure:"matching"`
	Worker   worker.Config  `mapstructure:"worker"`
	Log      logx.Config    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    string        `mapstructure:"allow_origins"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// Total time spent retrying the initial connection
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DSN renders a lib/pq connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	QueueName string        `mapstructure:"queue_name"`
	StatusTTL time.Duration `mapstructure:"status_ttl"`
}

type KafkaConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Brokers    []string `mapstructure:"brokers"`
	Topic      string   `mapstructure:"topic"`
	Partitions int      `mapstructure:"partitions"`
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type MatchingConfig struct {
	GenerateMinScore float64       `mapstructure:"generate_min_score"`
	GenerateLimit    int           `mapstructure:"generate_limit"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	// Async generation needs the redis queue and a running worker
	AsyncEnabled bool `mapstructure:"async_enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allow_origins", "*")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "bolsa")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db.connect_timeout", time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.queue_name", "matching:generation")
	v.SetDefault("redis.status_ttl", 24*time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "matching-events")
	v.SetDefault("kafka.partitions", 3)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "bolsa")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("matching.generate_min_score", 30.0)
	v.SetDefault("matching.generate_limit", 20)
	v.SetDefault("matching.lock_ttl", 30*time.Second)
	v.SetDefault("matching.async_enabled", true)

	defaults := worker.DefaultConfig()
	v.SetDefault("worker.workers", defaults.Workers)
	v.SetDefault("worker.dequeue_timeout", defaults.DequeueTimeout)
	v.SetDefault("worker.delayed_interval", defaults.DelayedInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads defaults, then the optional YAML file at path, then BOLSA_*
// environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the services cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required when auth is enabled"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	if c.Matching.GenerateLimit < 1 {
		errs = append(errs, fmt.Errorf("matching.generate_limit must be positive, got %d", c.Matching.GenerateLimit))
	}
	if c.Matching.GenerateMinScore < 0 || c.Matching.GenerateMinScore > 100 {
		errs = append(errs, fmt.Errorf("matching.generate_min_score must be within 0-100, got %v", c.Matching.GenerateMinScore))
	}
	return errors.Join(errs...)
}
