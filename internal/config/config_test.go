package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBName != "feedback" || cfg.StoreDriver != DriverMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected durations: ttl=%v timeout=%v", cfg.TokenTTL, cfg.RequestTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if !cfg.MongoTransactions {
		t.Fatalf("mongo transactions must default to on")
	}
}

func TestNonTransactionalMongoIsDevOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_TRANSACTIONS", "false")

	t.Setenv("ENV", "production")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "MONGODB_TRANSACTIONS") {
		t.Fatalf("expected transactions error in production, got %v", err)
	}

	t.Setenv("ENV", "local")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MongoTransactions {
		t.Fatalf("explicit opt-out ignored")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("APP_URL", "http://app.test/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != DriverMemory || cfg.TokenTTL != 2*time.Hour || cfg.LoginLimit != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.AppURL != "http://app.test" {
		t.Fatalf("app url = %q", cfg.AppURL)
	}
}

func TestLoadReportsEveryProblem(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "2")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"JWT_SECRET", "MONGODB_URI", "TOKEN_TTL", "OTEL_TRACES_SAMPLER_ARG"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("expected driver error, got %v", err)
	}
}
