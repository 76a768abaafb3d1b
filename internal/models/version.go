package models

// ShortCommitLength is the conventional abbreviated commit length.
const ShortCommitLength = 7

// ResolvedVersion is the concrete build target of a crate. It is either a
// RegistryVersion or a GitCommit.
type ResolvedVersion interface {
	// Display returns the readable form used in cache keys and summaries.
	Display() string
	// Output returns the value published as the "version" output.
	Output() string

	resolved()
}

// RegistryVersion is a version published to the package index.
type RegistryVersion struct {
	Version string `json:"version" yaml:"version"`
}

func (RegistryVersion) resolved() {}

// Display returns the version unchanged.
func (v RegistryVersion) Display() string { return v.Version }

// Output returns the version unchanged.
func (v RegistryVersion) Output() string { return v.Version }

// GitCommit is a commit in a remote Git repository.
type GitCommit struct {
	Repository string `json:"repository" yaml:"repository"`
	Commit     string `json:"commit" yaml:"commit"`
}

func (GitCommit) resolved() {}

// Display returns the abbreviated commit. The full commit is what gets built.
func (c GitCommit) Display() string { return ShortCommit(c.Commit) }

// Output returns the full commit.
func (c GitCommit) Output() string { return c.Commit }

// ShortCommit truncates a commit id to ShortCommitLength characters.
func ShortCommit(commit string) string {
	if len(commit) > ShortCommitLength {
		return commit[:ShortCommitLength]
	}
	return commit
}
