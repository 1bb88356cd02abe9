// Package config loads the relay's process-wide configuration from the
// environment, the way the teacher's config layer does it but with
// viper's env-binding instead of a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-wide, immutable-after-construction state described
// in spec §3: the plaintext port, the bind address, the allowed mount base,
// and the ambient logging knobs.
type Config struct {
	// Port is the plaintext listener port. The TLS listener is always Port+1.
	Port int

	// Bind is the address both listeners bind to.
	Bind string

	// AllowedMountBase is the absolute directory prefix every mount point
	// must lie under (spec §4.G). Stored pre-tilde-expansion; callers use
	// ExpandedAllowedMountBase.
	AllowedMountBase string

	// LogFile, when non-empty, routes logs through lumberjack rotation
	// instead of stderr.
	LogFile string

	// LogLevel is one of "debug", "info", "warn", "error" (default "info").
	LogLevel string
}

// TLSPort is the TLS listener's port, always Port+1 per spec §6.
func (c *Config) TLSPort() int {
	return c.Port + 1
}

// ExpandedAllowedMountBase resolves a leading "~" to the user's home
// directory, matching the Rust prototype's expand_tilde.
func (c *Config) ExpandedAllowedMountBase() (string, error) {
	return ExpandTilde(c.AllowedMountBase)
}

// ExpandTilde expands a leading "~" to the current user's home directory.
// A bare "~" or "~/..." is expanded; any other leading character is
// returned unchanged.
func ExpandTilde(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	if path == "~" {
		return home, nil
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}

	// "~otheruser/..." is not supported; treat as a literal path like the
	// original prototype does (it only special-cases the bare prefix).
	return path, nil
}

// Load reads LJC_PORT, LJC_BIND, LJC_ALLOWED_MOUNT (spec §6) plus the
// ambient LJC_LOG_FILE/LJC_LOG_LEVEL via viper's AutomaticEnv binding.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 17200)
	v.SetDefault("bind", "0.0.0.0")
	v.SetDefault("allowed_mount", "~/Public/mount")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("ljc")
	v.AutomaticEnv()

	for _, key := range []string{"port", "bind", "allowed_mount", "log_file", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	port := v.GetInt("port")
	if port <= 0 || port > 65534 {
		return nil, fmt.Errorf("invalid LJC_PORT %d: must be between 1 and 65534 (TLS port is port+1)", port)
	}

	return &Config{
		Port:             port,
		Bind:             v.GetString("bind"),
		AllowedMountBase: v.GetString("allowed_mount"),
		LogFile:          v.GetString("log_file"),
		LogLevel:         v.GetString("log_level"),
	}, nil
}
