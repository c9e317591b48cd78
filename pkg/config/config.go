// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. A .env file in the working directory,
// when present, is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Scorer    ScorerConfig    `yaml:"scorer"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// AllowFileSource lets HTTP clients name server-side files as input.
	AllowFileSource bool `yaml:"allowFileSource"`

	// RateLimit is the number of API requests per minute and client; 0
	// disables limiting.
	RateLimit   int      `yaml:"rateLimit"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters. An empty Host
// disables the corpus store.
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

// KafkaConfig holds Kafka broker and topic settings. No brokers disables
// event publishing and corpus ingestion.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	CorpusIngest     string `yaml:"corpusIngest"`
	SimilarityEvents string `yaml:"similarityEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// ExtractorConfig holds the default bag-of-words parameters used when a
// request does not carry its own.
type ExtractorConfig struct {
	Mode           string `yaml:"mode"`
	BowSize        int    `yaml:"bowSize"`
	WordSize       int    `yaml:"wordSize"`
	SkipSpaces     bool   `yaml:"skipSpaces"`
	NonUniqueWords bool   `yaml:"nonUniqueWords"`
	NGramMin       int    `yaml:"ngramMin"`
	NGramMax       int    `yaml:"ngramMax"`
}

// ScorerConfig controls similarity scoring defaults and limits.
type ScorerConfig struct {
	CaseSensitive bool `yaml:"caseSensitive"`
	MaxResults    int  `yaml:"maxResults"`
}

// CorpusConfig controls how the reference corpus is loaded.
type CorpusConfig struct {
	Dir          string   `yaml:"dir"`
	Extensions   []string `yaml:"extensions"`
	MaxFileBytes int64    `yaml:"maxFileBytes"`
	Workers      int      `yaml:"workers"`
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
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
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

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

// Validate rejects settings that no component can run with. Extractor
// parameters are not checked here; the extractors report bad values
// themselves.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rateLimit must not be negative")
	}
	switch c.Extractor.Mode {
	case "fixed", "ngram":
	default:
		problems = append(problems, fmt.Sprintf("extractor.mode %q must be fixed or ngram", c.Extractor.Mode))
	}
	if c.Corpus.Workers <= 0 {
		problems = append(problems, "corpus.workers must be positive")
	}
	if c.Scorer.MaxResults < 0 {
		problems = append(problems, "scorer.maxResults must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       600,
		},
		Postgres: PostgresConfig{
			Port:            5432,
			Database:        "lexsim",
			User:            "lexsim",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "lexsim-group",
			Topics: KafkaTopics{
				CorpusIngest:     "corpus.ingest",
				SimilarityEvents: "similarity.scored",
			},
		},
		Redis: RedisConfig{
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Extractor: ExtractorConfig{
			Mode:           "fixed",
			BowSize:        10,
			WordSize:       4,
			SkipSpaces:     true,
			NonUniqueWords: true,
			NGramMin:       1,
			NGramMax:       1,
		},
		Scorer: ScorerConfig{
			CaseSensitive: false,
			MaxResults:    100,
		},
		Corpus: CorpusConfig{
			Extensions:   []string{".txt"},
			MaxFileBytes: 10 << 20,
			Workers:      4,
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

// applyEnvOverrides reads LS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LS_SERVER_ALLOW_FILE_SOURCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.AllowFileSource = b
		}
	}
	if v := os.Getenv("LS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("LS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("LS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("LS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("LS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("LS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LS_EXTRACTOR_MODE"); v != "" {
		cfg.Extractor.Mode = v
	}
	if v := os.Getenv("LS_EXTRACTOR_BOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Extractor.BowSize = n
		}
	}
	if v := os.Getenv("LS_SCORER_CASE_SENSITIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scorer.CaseSensitive = b
		}
	}
	if v := os.Getenv("LS_CORPUS_DIR"); v != "" {
		cfg.Corpus.Dir = v
	}
	if v := os.Getenv("LS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
