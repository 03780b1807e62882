package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Storage.UploadDir != "storage/foods" {
		t.Errorf("upload dir = %s, want storage/foods", cfg.Storage.UploadDir)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("db driver = %s, want postgres", cfg.Database.Driver)
	}
	if cfg.Messaging.Kafka.Topic != "orders.events" {
		t.Errorf("topic = %s, want orders.events", cfg.Messaging.Kafka.Topic)
	}
	if cfg.Cache.DefaultTTL != 5*time.Minute {
		t.Errorf("cache ttl = %s, want 5m", cfg.Cache.DefaultTTL)
	}
	if cfg.Debug {
		t.Error("debug should default to false")
	}
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AUTH_WAITER_TOKENS", "w1,w2")
	t.Setenv("AUTH_CASHIER_TOKENS", "c1")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if len(cfg.Auth.WaiterTokens) != 2 || cfg.Auth.WaiterTokens[0] != "w1" {
		t.Errorf("waiter tokens = %v", cfg.Auth.WaiterTokens)
	}
	if len(cfg.Auth.CashierTokens) != 1 {
		t.Errorf("cashier tokens = %v", cfg.Auth.CashierTokens)
	}
	if cfg.Cache.Driver != "noop" {
		t.Errorf("cache driver = %s, want noop when disabled", cfg.Cache.Driver)
	}
	if cfg.Messaging.Driver != "noop" {
		t.Errorf("messaging driver = %s, want noop when disabled", cfg.Messaging.Driver)
	}
	if !cfg.Debug {
		t.Error("debug should be enabled")
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "-1")
	if _, err := New(); err == nil {
		t.Error("negative port should be rejected")
	}
}

func TestNewRejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "memcached")
	if _, err := New(); err == nil {
		t.Error("unknown cache driver should be rejected")
	}
}
