package executor

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/cargo-install/internal/models"
)

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name    string
		input   models.InstallInput
		version models.ResolvedVersion
		want    []string
	}{
		{
			name:    "registry",
			input:   models.InstallInput{Crate: "ripgrep"},
			version: models.RegistryVersion{Version: "14.1.0"},
			want:    []string{"install", "ripgrep", "--force", "--root", "/root", "--version", "14.1.0"},
		},
		{
			name:    "git with features and args",
			input:   models.InstallInput{Crate: "typos-cli", Features: []string{"a", "b"}, Args: []string{"--locked"}},
			version: models.GitCommit{Repository: "https://github.com/crate-ci/typos", Commit: "abcdef0123456789"},
			want: []string{
				"install", "typos-cli", "--force", "--root", "/root",
				"--git", "https://github.com/crate-ci/typos", "--rev", "abcdef0123456789",
				"--features", "a,b",
				"--locked",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstallArgs(tt.input, tt.version, "/root"))
		})
	}
}

func TestReadManifest(t *testing.T) {
	manifest := `[v1]
"ripgrep 14.1.0 (registry+https://github.com/rust-lang/crates.io-index)" = ["rg"]
"typos-cli 1.23.0 (git+https://github.com/crate-ci/typos?tag=v1.23.0#abcdef01)" = ["typos"]
`
	fsys := fstest.MapFS{ManifestFile: {Data: []byte(manifest)}}

	pkgs, err := ReadManifest(fsys)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, InstalledPackage{
		Name:     "ripgrep",
		Version:  "14.1.0",
		Source:   "registry+https://github.com/rust-lang/crates.io-index",
		Binaries: []string{"rg"},
	}, pkgs[0])
	assert.Equal(t, "typos-cli", pkgs[1].Name)
	assert.Equal(t, []string{"typos"}, pkgs[1].Binaries)
}

func TestReadManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"missing", fstest.MapFS{}},
		{"empty", fstest.MapFS{ManifestFile: {Data: []byte("[v1]\n")}}},
		{"malformed", fstest.MapFS{ManifestFile: {Data: []byte("[v1\n")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadManifest(tt.fsys)
			assert.Error(t, err)
		})
	}
}
