package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration.
// Values come from environment variables; an optional CONFIG_FILE (YAML or
// TOML, keys named like the variables in lower case) supplies base values
// that the environment overrides. Only KAFKA_BROKERS is required.
type Config struct {
	// Server
	ServiceName     string
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Kafka
	KafkaBrokers          []string
	KafkaClientID         string
	KafkaRequiredAcks     int
	KafkaWriteTimeout     time.Duration
	KafkaBatchTimeout     time.Duration
	KafkaAutoCreateTopics bool

	// Dispatch ledger; empty DatabaseURL keeps the ledger in memory,
	// holding at most LedgerMemoryCap entries
	DatabaseURL     string
	DBMaxConns      int32
	DBMinConns      int32
	MigrationsPath  string
	LedgerMemoryCap int

	// Rate limiting: maximum publishes per second per destination (0 = off)
	RateLimit int

	// Server-push listeners
	StreamBuffer    int
	StreamHeartbeat time.Duration

	// Tracing
	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

func Load() (*Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	brokers := SplitList(src.getEnv("KAFKA_BROKERS", ""))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}

	return &Config{
		ServiceName:     src.getEnv("SERVICE_NAME", "ms_notification"),
		HTTPPort:        src.getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     src.getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    src.getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: src.getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSOrigins:     SplitList(src.getEnv("CORS_ALLOWED_ORIGINS", "*")),

		KafkaBrokers:          brokers,
		KafkaClientID:         src.getEnv("KAFKA_CLIENT_ID", "ms-notification-kafka"),
		KafkaRequiredAcks:     src.getInt("KAFKA_REQUIRED_ACKS", -1),
		KafkaWriteTimeout:     src.getDuration("KAFKA_WRITE_TIMEOUT", 10*time.Second),
		KafkaBatchTimeout:     src.getDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		KafkaAutoCreateTopics: src.getBool("KAFKA_AUTO_CREATE_TOPICS", true),

		DatabaseURL:     src.getEnv("DATABASE_URL", ""),
		DBMaxConns:      int32(src.getInt("DB_MAX_CONNS", 10)),
		DBMinConns:      int32(src.getInt("DB_MIN_CONNS", 2)),
		MigrationsPath:  src.getEnv("MIGRATIONS_PATH", "file://migrations"),
		LedgerMemoryCap: src.getInt("LEDGER_MEMORY_CAP", 10000),

		RateLimit: src.getInt("RATE_LIMIT_PER_DESTINATION", 100),

		StreamBuffer:    src.getInt("SSE_BUFFER", 16),
		StreamHeartbeat: src.getDuration("SSE_HEARTBEAT", 15*time.Second),

		OTelEnabled:     src.getBool("OTEL_ENABLED", false),
		OTelEndpoint:    src.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: src.getFloat("OTEL_SAMPLING_RATIO", 1),
	}, nil
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	src := &source{file: map[string]string{}}
	if path == "" {
		return src, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	case ".toml":
		err = toml.Unmarshal(b, &raw)
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	for k, v := range raw {
		key := strings.ToUpper(k)
		switch val := v.(type) {
		case []any:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			src.file[key] = strings.Join(parts, ",")
		default:
			src.file[key] = fmt.Sprint(val)
		}
	}
	return src, nil
}

func (s *source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s *source) getEnv(key, defaultVal string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *source) getInt(key string, defaultVal int) int {
	if v := s.lookup(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *source) getBool(key string, defaultVal bool) bool {
	if v := s.lookup(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func (s *source) getFloat(key string, defaultVal float64) float64 {
	if v := s.lookup(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *source) getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := s.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
