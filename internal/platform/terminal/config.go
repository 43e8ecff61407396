// Package terminal provides the adapter for the market-data terminal's
// local gateway. The terminal exposes snapshot and historical requests over
// a session-scoped JSON API on the workstation it runs on.
package terminal

import (
	"fmt"
	"os"
	"time"
)

// Config holds configuration for the terminal gateway client.
type Config struct {
	Host              string        // Gateway host (usually localhost)
	Port              string        // Gateway port
	Mode              string        // "fake" selects the offline stand-in provider
	SnapshotTimeout   time.Duration // Per-request deadline for snapshot calls
	HistoricalTimeout time.Duration // Per-request deadline for historical calls
}

// LoadConfig loads terminal configuration from environment variables.
func LoadConfig() Config {
	host := os.Getenv("TERMINAL_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("TERMINAL_PORT")
	if port == "" {
		port = "8194"
	}
	return Config{
		Host:              host,
		Port:              port,
		Mode:              os.Getenv("TERMINAL_MODE"),
		SnapshotTimeout:   5 * time.Second,
		HistoricalTimeout: 10 * time.Second,
	}
}

// BaseURL returns the gateway base URL.
func (c Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}
