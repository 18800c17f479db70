package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/fleetspot/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("fleetspot-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Backend != config.BackendPostgres {
		t.Errorf("storage.backend = %q, want postgres", cfg.Storage.Backend)
	}
	if cfg.Analytics.MaxClusterPoints != 20000 {
		t.Errorf("analytics.max_cluster_points = %d, want 20000", cfg.Analytics.MaxClusterPoints)
	}
	if cfg.Telemetry.ServiceName != "fleetspot-test" {
		t.Errorf("telemetry.service_name = %q", cfg.Telemetry.ServiceName)
	}
	if cfg.NATS.Durable != "fleetspot-test" {
		t.Errorf("nats.durable = %q", cfg.NATS.Durable)
	}
	want := "postgres://fleetspot:@localhost:5432/fleetspot?sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLEETSPOT_SERVER_PORT", "9090")
	t.Setenv("FLEETSPOT_STORAGE_BACKEND", "sqlite")
	t.Setenv("FLEETSPOT_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FLEETSPOT_ANALYTICS_TIMEZONE", "Europe/Madrid")

	cfg, err := config.Load("fleetspot-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Errorf("storage.backend = %q", cfg.Storage.Backend)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("kafka.brokers = %v", cfg.Kafka.Brokers)
	}
	loc, err := cfg.Analytics.Location()
	if err != nil || loc.String() != "Europe/Madrid" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func validConfig() config.Config {
	return config.Config{
		Server:    config.ServerConfig{Port: 8080, ReadTimeout: 15, WriteTimeout: 15, RateLimit: 300},
		Storage:   config.StorageConfig{Backend: config.BackendPostgres},
		Database:  config.DatabaseConfig{Host: "db", Port: 5432, User: "u", DBName: "d", MaxConns: 5},
		NATS:      config.NATSConfig{URL: "nats://nats:4222"},
		Kafka:     config.KafkaConfig{Brokers: []string{"kafka:9092"}, Topic: "fleet.locations"},
		Valkey:    config.ValkeyConfig{Addr: "valkey:6379"},
		Nominatim: config.NominatimConfig{URL: "http://nominatim"},
		MinIO:     config.MinIOConfig{Bucket: "b"},
		Temporal:  config.TemporalConfig{TaskQueue: "q"},
		Analytics: config.AnalyticsConfig{Timezone: "UTC", MaxClusterPoints: 100},
		Log:       config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "mongo" }, "storage.backend"},
		{"sqlite needs path", func(c *config.Config) { c.Storage.Backend = config.BackendSQLite }, "sqlite.path"},
		{"sqlite ignores database", func(c *config.Config) {
			c.Storage.Backend = config.BackendSQLite
			c.SQLite.Path = "x.db"
			c.Database = config.DatabaseConfig{}
		}, ""},
		{"dynamodb needs tables", func(c *config.Config) { c.Storage.Backend = config.BackendDynamoDB; c.DynamoDB.Region = "eu-west-1" }, "dynamodb.drivers_table"},
		{"bad timezone", func(c *config.Config) { c.Analytics.Timezone = "Mars/Olympus" }, "analytics.timezone"},
		{"zero ceiling", func(c *config.Config) { c.Analytics.MaxClusterPoints = 0 }, "max_cluster_points"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"no brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate: want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
