package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Similarity: SimilarityConfig{Threshold: 0.5, Maintenance: "full"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_ThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Similarity.Threshold = 1.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for threshold above 1")
	}
	expected := "similarity.threshold must be in (0, 1], got 1.5"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_InvalidMaintenanceStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Similarity.Maintenance = "adaptive"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid maintenance strategy")
	}
	expected := `similarity.maintenance must be "full" or "bucket", got "adaptive"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidMaintenanceStrategies(t *testing.T) {
	for _, strategy := range []string{"full", "bucket"} {
		t.Run("maintenance="+strategy, func(t *testing.T) {
			cfg := validConfig()
			cfg.Similarity.Maintenance = strategy

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for strategy %q: %v", strategy, err)
			}
		})
	}
}

func TestValidate_UserMissingFields(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Users = []UserConfig{{ID: "user-1", APIKey: ""}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for user without api_key")
	}
}

func TestValidate_DuplicateAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Users = []UserConfig{
		{ID: "user-1", APIKey: "same-key"},
		{ID: "user-2", APIKey: "same-key"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for duplicate api_key")
	}
	expected := `auth.users[1]: api_key already assigned to user "user-1"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "titledex:" {
		t.Errorf("expected KeyPrefix='titledex:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Similarity.Threshold != 0.5 {
		t.Errorf("expected Threshold=0.5, got %g", cfg.Similarity.Threshold)
	}
	if cfg.Similarity.Maintenance != "full" {
		t.Errorf("expected Maintenance='full', got %q", cfg.Similarity.Maintenance)
	}
	if cfg.Similarity.LockTTLSec != 30 {
		t.Errorf("expected LockTTLSec=30, got %d", cfg.Similarity.LockTTLSec)
	}
	if cfg.Listing.DefaultPageSize != 10 {
		t.Errorf("expected DefaultPageSize=10, got %d", cfg.Listing.DefaultPageSize)
	}
	if cfg.Listing.MaxPageSize != 100 {
		t.Errorf("expected MaxPageSize=100, got %d", cfg.Listing.MaxPageSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:   DatabaseConfig{ReadinessTimeout: 15},
		Storage:    StorageConfig{KeyPrefix: "custom:"},
		Similarity: SimilarityConfig{Threshold: 0.8, Maintenance: "bucket", LockTTLSec: 60},
		Listing:    ListingConfig{DefaultPageSize: 25, MaxPageSize: 250},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Similarity.Threshold != 0.8 {
		t.Errorf("expected Threshold=0.8, got %g", cfg.Similarity.Threshold)
	}
	if cfg.Similarity.Maintenance != "bucket" {
		t.Errorf("expected Maintenance='bucket', got %q", cfg.Similarity.Maintenance)
	}
	if cfg.Listing.DefaultPageSize != 25 {
		t.Errorf("expected DefaultPageSize=25, got %d", cfg.Listing.DefaultPageSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TITLEDEX_TEST_ADDR", "redis.internal:6379")

	got := string(expandEnvVars([]byte("addr: ${TITLEDEX_TEST_ADDR}")))
	if got != "addr: redis.internal:6379" {
		t.Errorf("unexpected expansion: %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${TITLEDEX_TEST_UNSET:-localhost:6379}")))
	if got != "addr: localhost:6379" {
		t.Errorf("unexpected default expansion: %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${TITLEDEX_TEST_UNSET}")))
	if got != "addr: " {
		t.Errorf("unexpected empty expansion: %q", got)
	}
}
