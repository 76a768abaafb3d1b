package models

// Settings is the tool configuration read from cargo-install.toml.
type Settings struct {
	Registry RegistrySettings `toml:"registry"`
	Git      GitSettings      `toml:"git"`
	Cache    CacheSettings    `toml:"cache"`
	Install  InstallConfig    `toml:"install"`
	Log      LogSettings      `toml:"log"`
}

// RegistrySettings selects and tunes the package index client.
type RegistrySettings struct {
	// Flavor is "sparse" or "api".
	Flavor    string `toml:"flavor"`
	SparseURL string `toml:"sparse_url"`
	APIURL    string `toml:"api_url"`
	// URL is a shorthand for the URL of the selected flavor.
	URL        string  `toml:"url"`
	UserAgent  string  `toml:"user_agent"`
	TimeoutSec float64 `toml:"timeout_sec"`
	// MaxResponseSize is a size string such as "10M".
	MaxResponseSize  string `toml:"max_response_size"`
	MaxResponseBytes int64  `toml:"-"`
}

// GitSettings selects how remote refs are listed.
type GitSettings struct {
	// Backend is "cli" or "go-git".
	Backend string `toml:"backend"`
	Binary  string `toml:"binary"`
}

// CacheSettings configures the cache store and key derivation.
type CacheSettings struct {
	Dir        string `toml:"dir"`
	KeyPrefix  string `toml:"key_prefix"`
	HashLength int    `toml:"hash_length"`
}

// InstallConfig configures where crates are installed.
type InstallConfig struct {
	// Root is the directory holding one install directory per crate.
	Root  string `toml:"root"`
	Cargo string `toml:"cargo"`
	// Concurrency bounds parallel resolutions of a plan.
	Concurrency int `toml:"concurrency"`
}

// LogSettings are the defaults for the --loglevel and --logformat flags.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}
