package orathin

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Host: "db.example.com", ServiceName: "ORCL"}.withDefaults()

	if cfg.Port != defaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, defaultPort)
	}
	if cfg.ConnectTimeout != defaultConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want %v", cfg.ConnectTimeout, defaultConnectTimeout)
	}
	if cfg.SDU != defaultSDU {
		t.Errorf("SDU = %d, want %d", cfg.SDU, defaultSDU)
	}
	if cfg.PrefetchRows != defaultPrefetchRows {
		t.Errorf("PrefetchRows = %d, want %d", cfg.PrefetchRows, defaultPrefetchRows)
	}
	if cfg.Dialer == nil {
		t.Error("Dialer should default to a non-nil dialer")
	}
}

func TestConfigWithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Port:           1522,
		ConnectTimeout: 5 * time.Second,
		SDU:            65536,
		PrefetchRows:   10,
	}.withDefaults()

	if cfg.Port != 1522 {
		t.Errorf("Port = %d, want 1522 (explicit value should not be overwritten)", cfg.Port)
	}
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", cfg.ConnectTimeout)
	}
	if cfg.SDU != 65536 {
		t.Errorf("SDU = %d, want 65536", cfg.SDU)
	}
	if cfg.PrefetchRows != 10 {
		t.Errorf("PrefetchRows = %d, want 10", cfg.PrefetchRows)
	}
}
