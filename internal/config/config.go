package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries the runtime settings shared by the CLI and the MCP server.
type Config struct {
	// CacheRoot is where cloned repositories are materialized.
	CacheRoot string
	// GitBinary, RipgrepBinary, GrepBinary name the backend executables.
	GitBinary     string
	RipgrepBinary string
	GrepBinary    string
	// CloneTimeout bounds a shallow clone; SearchTimeout bounds one search
	// backend invocation.
	CloneTimeout  time.Duration
	SearchTimeout time.Duration
	LogLevel      string
}

// Load reads configuration from an optional file, the environment
// (REPOSCOUT_* variables), and defaults, in ascending precedence of
// env over file over defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cache_root", defaultCacheRoot())
	v.SetDefault("git_binary", "git")
	v.SetDefault("ripgrep_binary", "rg")
	v.SetDefault("grep_binary", "grep")
	v.SetDefault("clone_timeout", "5m")
	v.SetDefault("search_timeout", "30s")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("REPOSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("reposcout")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".reposcout"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		CacheRoot:     v.GetString("cache_root"),
		GitBinary:     v.GetString("git_binary"),
		RipgrepBinary: v.GetString("ripgrep_binary"),
		GrepBinary:    v.GetString("grep_binary"),
		CloneTimeout:  v.GetDuration("clone_timeout"),
		SearchTimeout: v.GetDuration("search_timeout"),
		LogLevel:      v.GetString("log_level"),
	}
	return cfg, nil
}

func defaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "reposcout", "repos")
	}
	return filepath.Join(home, ".reposcout", "repos")
}
