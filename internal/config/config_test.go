package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "rdhub_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
}

func TestLoadConfig_DOIDefaults(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	os.Unsetenv("DOI_PREFIX")
	os.Unsetenv("DOI_MAX_SUGGESTION_PROBES")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DOI.Prefix != "10.5880" {
		t.Fatalf("unexpected default DOI prefix: %q", cfg.DOI.Prefix)
	}
	if cfg.DOI.MaxSuggestionProbes != 10000 {
		t.Fatalf("unexpected default probe cap: %d", cfg.DOI.MaxSuggestionProbes)
	}
}
