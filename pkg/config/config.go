// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Data, Recommender, Postgres, Kafka, Redis, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Data        DataConfig        `yaml:"data"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// CORSOrigins lists browser origins allowed to call the API; "*" allows
	// any. Empty disables CORS headers.
	CORSOrigins []string `yaml:"corsOrigins"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// DataConfig selects where the movie and rating tables are read from.
type DataConfig struct {
	Source      string        `yaml:"source"`
	MoviesPath  string        `yaml:"moviesPath"`
	RatingsPath string        `yaml:"ratingsPath"`
	LoadTimeout time.Duration `yaml:"loadTimeout"`
}

// RecommenderConfig controls ranking defaults and catalog construction.
type RecommenderConfig struct {
	DefaultTopN     int    `yaml:"defaultTopN"`
	MaxTopN         int    `yaml:"maxTopN"`
	PeerCount       int    `yaml:"peerCount"`
	DuplicatePolicy string `yaml:"duplicatePolicy"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. Analytics publishing is
// skipped entirely when Enabled is false.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
	// BatchSize and BatchTimeout bound how many query events the producer
	// buffers before a write.
	BatchSize    int           `yaml:"batchSize"`
	BatchTimeout time.Duration `yaml:"batchTimeout"`
	// StartOffset is "first" or "last"; it applies only when the consumer
	// group has no committed offset.
	StartOffset string `yaml:"startOffset"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	QueryEvents string `yaml:"queryEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalyticsConfig controls query event collection. Events go to Kafka when
// Kafka is enabled and straight to the in-process aggregator otherwise.
// Snapshots are written only when a PostgreSQL connection exists.
type AnalyticsConfig struct {
	BufferSize       int           `yaml:"bufferSize"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make the catalog or the server
// misbehave.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.MoviesPath == "" || c.Data.RatingsPath == "" {
			return fmt.Errorf("data.moviesPath and data.ratingsPath are required for the csv source")
		}
	case "postgres":
	default:
		return fmt.Errorf("unknown data.source %q (want csv or postgres)", c.Data.Source)
	}
	switch c.Recommender.DuplicatePolicy {
	case "mean", "first", "last":
	default:
		return fmt.Errorf("unknown recommender.duplicatePolicy %q (want mean, first or last)", c.Recommender.DuplicatePolicy)
	}
	if c.Recommender.DefaultTopN < 1 {
		return fmt.Errorf("recommender.defaultTopN must be positive, got %d", c.Recommender.DefaultTopN)
	}
	if c.Recommender.MaxTopN < c.Recommender.DefaultTopN {
		return fmt.Errorf("recommender.maxTopN (%d) must be at least defaultTopN (%d)",
			c.Recommender.MaxTopN, c.Recommender.DefaultTopN)
	}
	if c.Recommender.PeerCount < 1 {
		return fmt.Errorf("recommender.peerCount must be positive, got %d", c.Recommender.PeerCount)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit must not be negative, got %d", c.Server.RateLimit)
	}
	switch c.Kafka.StartOffset {
	case "first", "last":
	default:
		return fmt.Errorf("unknown kafka.startOffset %q (want first or last)", c.Kafka.StartOffset)
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       600,
		},
		Data: DataConfig{
			Source:      "csv",
			MoviesPath:  "data/movies_metadata.csv",
			RatingsPath: "data/ratings_small.csv",
			LoadTimeout: 2 * time.Minute,
		},
		Recommender: RecommenderConfig{
			DefaultTopN:     5,
			MaxTopN:         100,
			PeerCount:       5,
			DuplicatePolicy: "mean",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "movierec",
			User:            "movierec",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "movierec-group",
			Topics: KafkaTopics{
				QueryEvents: "recommendation-queries",
			},
			BatchSize:    100,
			BatchTimeout: 50 * time.Millisecond,
			StartOffset:  "last",
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			BufferSize:       10000,
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads MR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MR_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("MR_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("MR_DATA_SOURCE"); v != "" {
		cfg.Data.Source = v
	}
	if v := os.Getenv("MR_DATA_MOVIES_PATH"); v != "" {
		cfg.Data.MoviesPath = v
	}
	if v := os.Getenv("MR_DATA_RATINGS_PATH"); v != "" {
		cfg.Data.RatingsPath = v
	}
	if v := os.Getenv("MR_RECOMMENDER_PEER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recommender.PeerCount = n
		}
	}
	if v := os.Getenv("MR_RECOMMENDER_DUPLICATE_POLICY"); v != "" {
		cfg.Recommender.DuplicatePolicy = v
	}
	if v := os.Getenv("MR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("MR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("MR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("MR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("MR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("MR_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("MR_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("MR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MR_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("MR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("MR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
