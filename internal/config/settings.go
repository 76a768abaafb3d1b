package config

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/spachava753/cargo-install/internal/cachekey"
	"github.com/spachava753/cargo-install/internal/gitref"
	"github.com/spachava753/cargo-install/internal/models"
	"github.com/spachava753/cargo-install/internal/registry"
	"github.com/spachava753/cargo-install/internal/util"
)

// SettingsFile is the default settings file name.
const SettingsFile = "cargo-install.toml"

// DefaultSettings returns Settings with default values. home is the user's
// home directory, under which crates are installed and cached.
func DefaultSettings(home string) models.Settings {
	return models.Settings{
		Registry: models.RegistrySettings{
			Flavor:           string(registry.FlavorSparse),
			SparseURL:        registry.DefaultSparseURL,
			APIURL:           registry.DefaultAPIURL,
			UserAgent:        registry.DefaultUserAgent,
			TimeoutSec:       30.0,
			MaxResponseBytes: registry.DefaultMaxResponseBytes,
		},
		Git: models.GitSettings{
			Backend: string(gitref.BackendCLI),
			Binary:  "git",
		},
		Cache: models.CacheSettings{
			Dir:        filepath.Join(home, ".cache", "cargo-install"),
			KeyPrefix:  cachekey.DefaultPrefix,
			HashLength: cachekey.DefaultHashLength,
		},
		Install: models.InstallConfig{
			Root:        filepath.Join(home, ".cargo-install"),
			Cargo:       "cargo",
			Concurrency: 4,
		},
		Log: models.LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadSettings parses the settings file name from fsys over the defaults.
// An empty name returns the defaults.
func LoadSettings(fsys fs.FS, name, home string) (models.Settings, error) {
	cfg := DefaultSettings(home)
	if name == "" {
		return cfg, nil
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", name, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parsing %s: unknown key %s", name, undecoded[0])
	}

	// 'url' applies to the selected flavor unless its own URL is set
	if md.IsDefined("registry", "url") {
		switch registry.Flavor(cfg.Registry.Flavor) {
		case registry.FlavorAPI:
			if !md.IsDefined("registry", "api_url") {
				cfg.Registry.APIURL = cfg.Registry.URL
			}
		default:
			if !md.IsDefined("registry", "sparse_url") {
				cfg.Registry.SparseURL = cfg.Registry.URL
			}
		}
	}

	if md.IsDefined("registry", "max_response_size") {
		n, err := util.ParseSize(cfg.Registry.MaxResponseSize)
		if err != nil {
			return cfg, fmt.Errorf("parsing max_response_size %q: %w", cfg.Registry.MaxResponseSize, err)
		}
		cfg.Registry.MaxResponseBytes = n
	}

	if err := validateSettings(cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}

	// Apply defaults for values set to empty
	defaults := DefaultSettings(home)
	if cfg.Registry.UserAgent == "" {
		cfg.Registry.UserAgent = defaults.Registry.UserAgent
	}
	if cfg.Registry.MaxResponseBytes == 0 {
		cfg.Registry.MaxResponseBytes = defaults.Registry.MaxResponseBytes
	}
	if cfg.Git.Binary == "" {
		cfg.Git.Binary = defaults.Git.Binary
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaults.Cache.Dir
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = defaults.Cache.KeyPrefix
	}
	if cfg.Install.Root == "" {
		cfg.Install.Root = defaults.Install.Root
	}
	if cfg.Install.Cargo == "" {
		cfg.Install.Cargo = defaults.Install.Cargo
	}
	if cfg.Install.Concurrency <= 0 {
		cfg.Install.Concurrency = defaults.Install.Concurrency
	}

	return cfg, nil
}

func validateSettings(cfg models.Settings) error {
	switch registry.Flavor(cfg.Registry.Flavor) {
	case registry.FlavorSparse, registry.FlavorAPI:
	default:
		return fmt.Errorf("registry.flavor: must be %q or %q, got %q",
			registry.FlavorSparse, registry.FlavorAPI, cfg.Registry.Flavor)
	}

	switch gitref.Backend(cfg.Git.Backend) {
	case gitref.BackendCLI, gitref.BackendGoGit:
	default:
		return fmt.Errorf("git.backend: must be %q or %q, got %q",
			gitref.BackendCLI, gitref.BackendGoGit, cfg.Git.Backend)
	}

	if cfg.Cache.HashLength < 20 || cfg.Cache.HashLength > 24 {
		return fmt.Errorf("cache.hash_length: must be between 20 and 24, got %d", cfg.Cache.HashLength)
	}

	if cfg.Registry.TimeoutSec < 0 {
		return fmt.Errorf("registry.timeout_sec: must not be negative")
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be \"text\" or \"json\", got %q", cfg.Log.Format)
	}

	return nil
}
