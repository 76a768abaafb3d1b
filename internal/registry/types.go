package registry

import (
	"github.com/Masterminds/semver/v3"

	"github.com/spachava753/cargo-install/internal/models"
)

// Entry is one published version of a crate.
type Entry struct {
	Version *semver.Version
	Yanked  bool
}

// Stable reports whether the entry is neither yanked nor a pre-release.
func (e Entry) Stable() bool {
	return !e.Yanked && e.Version.Prerelease() == ""
}

// Listing is every published version of a crate as reported by an index.
type Listing struct {
	Entries []Entry
	// MaxStable is the index's own newest stable version. Only the API flavor
	// reports it; nil otherwise.
	MaxStable *semver.Version
}

// Resolution is the outcome of resolving a requirement against a listing.
type Resolution struct {
	Version *semver.Version
	Yanked  bool
	// Latest is the newest stable version of the crate, nil if it has none.
	Latest  *semver.Version
	Notices []models.Notice
}

// sparseRecord is one line of a sparse index file. Other fields (deps,
// features, cksum) are ignored.
type sparseRecord struct {
	Vers   *string `json:"vers"`
	Yanked *bool   `json:"yanked"`
}

// apiResponse is the subset of the crates.io API crate document we need.
type apiResponse struct {
	Crate *struct {
		MaxStableVersion *string `json:"max_stable_version"`
	} `json:"crate"`
	Versions []apiVersion `json:"versions"`
}

type apiVersion struct {
	Num    *string `json:"num"`
	Yanked *bool   `json:"yanked"`
}
