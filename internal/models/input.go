package models

// LatestVersion is the requirement literal selecting the newest stable version.
const LatestVersion = "latest"

// CrateSpec is one crate to install, as declared by the user before
// validation. It is both the plan.yaml entry format and the target of the
// CLI/CI input parser.
type CrateSpec struct {
	Crate    string   `yaml:"crate" json:"crate"`
	Version  string   `yaml:"version,omitempty" json:"version,omitempty"`
	Git      string   `yaml:"git,omitempty" json:"git,omitempty"`
	Branch   string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	Tag      string   `yaml:"tag,omitempty" json:"tag,omitempty"`
	Rev      string   `yaml:"rev,omitempty" json:"rev,omitempty"`
	Features []string `yaml:"features,omitempty" json:"features,omitempty"`
	Args     []string `yaml:"args,omitempty" json:"args,omitempty"`
	Locked   bool     `yaml:"locked,omitempty" json:"locked,omitempty"`
	CacheKey string   `yaml:"cache-key,omitempty" json:"cache-key,omitempty"`
}

// Plan is a list of crates resolved together.
type Plan struct {
	Crates []CrateSpec `yaml:"crates" json:"crates"`
}

// Source is where a crate is built from: a RegistrySource or a GitSelector.
type Source interface {
	source()
}

// RegistrySource installs from the package index.
type RegistrySource struct {
	// Requirement is "latest", an exact version or a semver range.
	Requirement string
}

func (RegistrySource) source() {}

// GitSelector installs from a Git repository. At most one of Commit, Tag and
// Branch is used, in that priority order; none means the remote HEAD.
type GitSelector struct {
	Repository string
	Branch     string
	Tag        string
	Commit     string
}

func (GitSelector) source() {}

// InstallInput is a validated installation request.
type InstallInput struct {
	Crate    string
	Source   Source
	Features []string
	Args     []string
	// CacheKey is the user supplied disambiguator.
	CacheKey string
}
