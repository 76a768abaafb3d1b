package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the file cargo install writes into the install root to
// record what it installed.
const ManifestFile = ".crates.toml"

// cratesManifest is the v1 format of .crates.toml: a map from package id
// ("name version (source)") to installed binaries.
type cratesManifest struct {
	V1 map[string][]string `toml:"v1"`
}

// InstalledPackage is one entry of the install manifest.
type InstalledPackage struct {
	Name     string
	Version  string
	Source   string
	Binaries []string
}

// ReadManifest parses the install manifest in fsys.
func ReadManifest(fsys fs.FS) ([]InstalledPackage, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}

	var m cratesManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	if len(m.V1) == 0 {
		return nil, errors.New(ManifestFile + " lists no packages")
	}

	pkgs := make([]InstalledPackage, 0, len(m.V1))
	for id, bins := range m.V1 {
		pkg := parsePackageID(id)
		pkg.Binaries = bins
		pkgs = append(pkgs, pkg)
	}
	slices.SortFunc(pkgs, func(a, b InstalledPackage) int { return strings.Compare(a.Name, b.Name) })

	return pkgs, nil
}

// parsePackageID splits "ripgrep 14.1.0 (registry+https://...)".
func parsePackageID(id string) InstalledPackage {
	var pkg InstalledPackage
	rest := id
	if i := strings.Index(rest, " ("); i >= 0 && strings.HasSuffix(rest, ")") {
		pkg.Source = rest[i+2 : len(rest)-1]
		rest = rest[:i]
	}
	pkg.Name, pkg.Version, _ = strings.Cut(rest, " ")
	return pkg
}
