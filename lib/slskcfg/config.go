// Package slskcfg holds environment-driven configuration for the client:
// server address and account credentials, following the original's own
// std::env::var lookups (original_source/src/bin/debug.rs) rather than a
// config file, since the distilled spec carries no persistent config store.
package slskcfg

import (
	"os"
	"strconv"

	"github.com/nyatla/slsk-go/lib/protocol"
)

const (
	envServer   = "SOULSEEK_SERVER"
	envPort     = "SOULSEEK_PORT"
	envAccount  = "SOULSEEK_ACCOUNT"
	envPassword = "SOULSEEK_PASSWORD"
	envIndexDB  = "SLSK_INDEX_DB"
)

// Config is the resolved set of options the CLI and coordinator need to
// connect and log in.
type Config struct {
	ServerHost string
	ServerPort int
	Username   string
	Password   string
	IndexDBPath string
}

// FromEnv reads Config from the process environment, falling back to the
// protocol's documented defaults for host and port.
func FromEnv() Config {
	cfg := Config{
		ServerHost: protocol.DefaultServerHost,
		ServerPort: protocol.DefaultServerPort,
	}
	if v := os.Getenv(envServer); v != "" {
		cfg.ServerHost = v
	}
	if v := os.Getenv(envPort); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ServerPort = p
		}
	}
	cfg.Username = os.Getenv(envAccount)
	cfg.Password = os.Getenv(envPassword)
	cfg.IndexDBPath = os.Getenv(envIndexDB)
	return cfg
}

// Validate reports whether the minimum fields needed to log in are present.
func (c Config) Validate() error {
	if c.Username == "" {
		return errMissingEnv(envAccount)
	}
	if c.Password == "" {
		return errMissingEnv(envPassword)
	}
	return nil
}

type missingEnvError string

func (e missingEnvError) Error() string { return "slskcfg: " + string(e) + " is not set" }

func errMissingEnv(name string) error { return missingEnvError(name) }
