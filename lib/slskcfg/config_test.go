package slskcfg

import (
	"testing"

	"github.com/nyatla/slsk-go/lib/protocol"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SOULSEEK_SERVER", "")
	t.Setenv("SOULSEEK_PORT", "")
	t.Setenv("SOULSEEK_ACCOUNT", "")
	t.Setenv("SOULSEEK_PASSWORD", "")
	cfg := FromEnv()
	if cfg.ServerHost != protocol.DefaultServerHost || cfg.ServerPort != protocol.DefaultServerPort {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to fail without credentials")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SOULSEEK_SERVER", "example.org")
	t.Setenv("SOULSEEK_PORT", "1234")
	t.Setenv("SOULSEEK_ACCOUNT", "alice")
	t.Setenv("SOULSEEK_PASSWORD", "hunter2")
	cfg := FromEnv()
	if cfg.ServerHost != "example.org" || cfg.ServerPort != 1234 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
