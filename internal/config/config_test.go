package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notifyhub/ms-notification-kafka/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "KAFKA_BROKERS", "HTTP_PORT", "RATE_LIMIT_PER_DESTINATION", "KAFKA_WRITE_TIMEOUT", "OTEL_ENABLED", "LEDGER_MEMORY_CAP"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_RequiresBrokers(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when KAFKA_BROKERS is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.ServiceName != "ms_notification" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.KafkaRequiredAcks != -1 {
		t.Fatalf("expected acks=-1, got %d", cfg.KafkaRequiredAcks)
	}
	if cfg.DatabaseURL != "" {
		t.Fatal("expected no database by default")
	}
	if cfg.LedgerMemoryCap != 10000 {
		t.Fatalf("expected in-memory ledger cap 10000, got %d", cfg.LedgerMemoryCap)
	}
	if cfg.OTelEnabled {
		t.Fatal("expected tracing disabled by default")
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
kafka_brokers:
  - broker-a:9092
  - broker-b:9092
http_port: "9000"
rate_limit_per_destination: 5
kafka_write_timeout: 3s
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "broker-a:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.HTTPPort != "9100" {
		t.Fatalf("expected env to override file, got %s", cfg.HTTPPort)
	}
	if cfg.RateLimit != 5 {
		t.Fatalf("expected rate limit 5, got %d", cfg.RateLimit)
	}
	if cfg.KafkaWriteTimeout != 3*time.Second {
		t.Fatalf("expected 3s write timeout, got %s", cfg.KafkaWriteTimeout)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
kafka_brokers = "broker:9092"
otel_enabled = true
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.KafkaBrokers[0] != "broker:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.OTelEnabled {
		t.Fatal("expected tracing enabled from file")
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, "config.ini", "x=1"))
	t.Setenv("KAFKA_BROKERS", "b:9092")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
