package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/viper"

	"github.com/spachava753/cargo-install/internal/config"
	"github.com/spachava753/cargo-install/internal/models"
)

func TestLoadSettings(t *testing.T) {
	settingsToml := `[registry]
flavor = "api"
url = "https://mirror.example.com/"
timeout_sec = 10.0
max_response_size = "2M"

[git]
backend = "go-git"

[cache]
key_prefix = "tools"
hash_length = 24

[install]
root = "/opt/tools"
`

	fsys := fstest.MapFS{
		"cargo-install.toml": &fstest.MapFile{Data: []byte(settingsToml)},
	}

	cfg, err := config.LoadSettings(fsys, config.SettingsFile, "/home/runner")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if cfg.Registry.Flavor != "api" {
		t.Errorf("expected flavor api, got %s", cfg.Registry.Flavor)
	}

	if cfg.Registry.APIURL != "https://mirror.example.com/" {
		t.Errorf("expected api_url from url, got %s", cfg.Registry.APIURL)
	}

	if cfg.Registry.SparseURL != "https://index.crates.io/" {
		t.Errorf("expected default sparse_url, got %s", cfg.Registry.SparseURL)
	}

	if cfg.Registry.TimeoutSec != 10.0 {
		t.Errorf("expected timeout 10, got %f", cfg.Registry.TimeoutSec)
	}

	if cfg.Registry.MaxResponseBytes != 2<<20 {
		t.Errorf("expected max response bytes %d, got %d", 2<<20, cfg.Registry.MaxResponseBytes)
	}

	if cfg.Git.Backend != "go-git" {
		t.Errorf("expected git backend go-git, got %s", cfg.Git.Backend)
	}

	if cfg.Git.Binary != "git" {
		t.Errorf("expected default git binary, got %s", cfg.Git.Binary)
	}

	if cfg.Cache.KeyPrefix != "tools" {
		t.Errorf("expected key prefix tools, got %s", cfg.Cache.KeyPrefix)
	}

	if cfg.Cache.HashLength != 24 {
		t.Errorf("expected hash length 24, got %d", cfg.Cache.HashLength)
	}

	if cfg.Cache.Dir != filepath.Join("/home/runner", ".cache", "cargo-install") {
		t.Errorf("expected default cache dir, got %s", cfg.Cache.Dir)
	}

	if cfg.Install.Root != "/opt/tools" {
		t.Errorf("expected install root /opt/tools, got %s", cfg.Install.Root)
	}
}

func TestLoadSettings_ExplicitURLWins(t *testing.T) {
	fsys := fstest.MapFS{
		"s.toml": &fstest.MapFile{Data: []byte(`[registry]
url = "https://a.example.com/"
sparse_url = "https://b.example.com/"
`)},
	}

	cfg, err := config.LoadSettings(fsys, "s.toml", "/home/runner")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if cfg.Registry.SparseURL != "https://b.example.com/" {
		t.Errorf("expected explicit sparse_url, got %s", cfg.Registry.SparseURL)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad flavor", "[registry]\nflavor = \"git\"\n"},
		{"bad backend", "[git]\nbackend = \"svn\"\n"},
		{"short hash", "[cache]\nhash_length = 8\n"},
		{"long hash", "[cache]\nhash_length = 64\n"},
		{"bad size", "[registry]\nmax_response_size = \"lots\"\n"},
		{"bad log format", "[log]\nformat = \"xml\"\n"},
		{"unknown key", "[cache]\nttl = 5\n"},
		{"syntax", "[cache\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"s.toml": &fstest.MapFile{Data: []byte(tt.data)}}
			if _, err := config.LoadSettings(fsys, "s.toml", "/home/runner"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	if _, err := config.LoadSettings(fstest.MapFS{}, "nope.toml", "/home/runner"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultSettings(t *testing.T) {
	cfg, err := config.LoadSettings(nil, "", "/home/runner")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if cfg.Registry.Flavor != "sparse" {
		t.Errorf("expected default flavor sparse, got %s", cfg.Registry.Flavor)
	}

	if cfg.Install.Root != filepath.Join("/home/runner", ".cargo-install") {
		t.Errorf("expected default install root, got %s", cfg.Install.Root)
	}

	if cfg.Cache.KeyPrefix != "cargo-install" {
		t.Errorf("expected default key prefix cargo-install, got %s", cfg.Cache.KeyPrefix)
	}

	if cfg.Cache.HashLength != 20 {
		t.Errorf("expected default hash length 20, got %d", cfg.Cache.HashLength)
	}

	if cfg.Git.Backend != "cli" {
		t.Errorf("expected default git backend cli, got %s", cfg.Git.Backend)
	}
}

func TestLoadPlan(t *testing.T) {
	planYaml := `crates:
  - crate: ripgrep
    version: ^14
    features: [pcre2]
    locked: true
  - crate: cargo-nextest
  - crate: typos-cli
    git: https://github.com/crate-ci/typos
    tag: v1.23.0
    args: ["--profile", "release"]
    cache-key: nightly
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "plan.yaml")
	if err := os.WriteFile(tmpFile, []byte(planYaml), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	plan, err := config.LoadPlan(tmpFile)
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}

	if len(plan.Crates) != 3 {
		t.Fatalf("expected 3 crates, got %d", len(plan.Crates))
	}

	rg := plan.Crates[0]
	if rg.Crate != "ripgrep" || rg.Version != "^14" || !rg.Locked {
		t.Errorf("unexpected first crate: %+v", rg)
	}

	if !reflect.DeepEqual(rg.Features, []string{"pcre2"}) {
		t.Errorf("expected features [pcre2], got %v", rg.Features)
	}

	typos := plan.Crates[2]
	if typos.Git != "https://github.com/crate-ci/typos" || typos.Tag != "v1.23.0" {
		t.Errorf("unexpected git crate: %+v", typos)
	}

	if typos.CacheKey != "nightly" {
		t.Errorf("expected cache-key nightly, got %s", typos.CacheKey)
	}
}

func TestLoadPlan_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "crates: []\n", "no crates"},
		{"missing name", "crates:\n  - version: 1.0.0\n", "must specify 'crate'"},
		{"duplicate", "crates:\n  - crate: a\n  - crate: a\n", "already listed"},
		{"tag without git", "crates:\n  - crate: a\n    tag: v1\n", "require 'git'"},
		{"version and git", "crates:\n  - crate: a\n    version: 1.0.0\n    git: https://x\n", "both 'version' and 'git'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatalf("writing temp file: %v", err)
			}
			_, err := config.LoadPlan(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	v := viper.New()
	v.Set(config.KeyCrate, " ripgrep ")
	v.Set(config.KeyVersion, "^14")
	v.Set(config.KeyFeatures, "pcre2, simd-accel  serde")
	v.Set(config.KeyArgs, `--profile release --config 'build.rustflags=["-C", "target-cpu=native"]' --target-dir $TARGET`)
	v.Set(config.KeyLocked, "true")
	v.Set(config.KeyCacheKey, "v2")

	getenv := func(k string) string {
		if k == "TARGET" {
			return "/tmp/target"
		}
		return ""
	}

	spec, err := config.ReadInput(v, getenv)
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}

	want := models.CrateSpec{
		Crate:    "ripgrep",
		Version:  "^14",
		Features: []string{"pcre2", "simd-accel", "serde"},
		Args: []string{
			"--profile", "release",
			"--config", `build.rustflags=["-C", "target-cpu=native"]`,
			"--target-dir", "/tmp/target",
		},
		Locked:   true,
		CacheKey: "v2",
	}
	if !reflect.DeepEqual(spec, want) {
		t.Errorf("ReadInput mismatch:\n got %+v\nwant %+v", spec, want)
	}
}

func TestReadInput_Env(t *testing.T) {
	t.Setenv("INPUT_CRATE", "cargo-nextest")
	t.Setenv("INPUT_CACHE-KEY", "ci")

	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	spec, err := config.ReadInput(v, os.Getenv)
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}

	if spec.Crate != "cargo-nextest" {
		t.Errorf("expected crate from INPUT_CRATE, got %q", spec.Crate)
	}

	if spec.CacheKey != "ci" {
		t.Errorf("expected cache key from INPUT_CACHE-KEY, got %q", spec.CacheKey)
	}
}

func TestReadInput_BadArgs(t *testing.T) {
	v := viper.New()
	v.Set(config.KeyCrate, "ripgrep")
	v.Set(config.KeyArgs, `--features "unterminated`)

	_, err := config.ReadInput(v, os.Getenv)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestParseInput_Registry(t *testing.T) {
	in, notices, err := config.ParseInput(models.CrateSpec{
		Crate:    "ripgrep",
		Features: []string{"pcre2"},
		Args:     []string{"--profile", "release"},
		Locked:   true,
	})
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}

	if len(notices) != 0 {
		t.Errorf("expected no notices, got %v", notices)
	}

	src, ok := in.Source.(models.RegistrySource)
	if !ok {
		t.Fatalf("expected registry source, got %T", in.Source)
	}

	if src.Requirement != models.LatestVersion {
		t.Errorf("expected default requirement latest, got %s", src.Requirement)
	}

	if !reflect.DeepEqual(in.Args, []string{"--profile", "release", "--locked"}) {
		t.Errorf("expected --locked appended, got %v", in.Args)
	}
}

func TestParseInput_Git(t *testing.T) {
	in, notices, err := config.ParseInput(models.CrateSpec{
		Crate:   "typos-cli",
		Version: "1.0.0",
		Git:     "https://github.com/crate-ci/typos",
		Tag:     "v1.23.0",
		Branch:  "master",
	})
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}

	want := models.GitSelector{
		Repository: "https://github.com/crate-ci/typos",
		Branch:     "master",
		Tag:        "v1.23.0",
	}
	if in.Source != want {
		t.Errorf("expected %+v, got %+v", want, in.Source)
	}

	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %v", notices)
	}

	for _, n := range notices {
		if n.Kind != models.NoticeIgnoredInput {
			t.Errorf("expected ignored-input notice, got %s", n.Kind)
		}
	}
}

func TestParseInput_IgnoredGitFields(t *testing.T) {
	_, notices, err := config.ParseInput(models.CrateSpec{Crate: "ripgrep", Tag: "v1"})
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}

	if len(notices) != 1 || !strings.Contains(notices[0].Message, "no git repository") {
		t.Errorf("expected one ignored tag notice, got %v", notices)
	}
}

func TestParseInput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec models.CrateSpec
	}{
		{"missing crate", models.CrateSpec{}},
		{"bad crate name", models.CrateSpec{Crate: "../etc"}},
		{"bad version", models.CrateSpec{Crate: "ripgrep", Version: "fourteen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := config.ParseInput(tt.spec)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("expected invalid input error, got %v", err)
			}
		})
	}
}

func TestSplitFeatures(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{"a, b  c,,d", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		if got := config.SplitFeatures(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitFeatures(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
