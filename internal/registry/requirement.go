package registry

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/spachava753/cargo-install/internal/models"
)

// prereleaseOperand finds comparator operands that carry a pre-release.
var prereleaseOperand = regexp.MustCompile(`v?\d+(?:\.\d+){0,2}-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*`)

// RequirementKind discriminates the three forms of a version requirement.
type RequirementKind int

const (
	RequirementLatest RequirementKind = iota
	RequirementExact
	RequirementRange
)

func (k RequirementKind) String() string {
	switch k {
	case RequirementLatest:
		return "latest"
	case RequirementExact:
		return "exact"
	case RequirementRange:
		return "range"
	default:
		return "unknown"
	}
}

// Requirement is a parsed version requirement. The zero value is Latest.
type Requirement struct {
	Kind RequirementKind

	raw        string
	exact      *semver.Version
	constraint *semver.Constraints
	// prereleases are the operands of constraint that name a pre-release.
	prereleases []*semver.Version
}

// Latest returns the requirement selecting the newest stable version.
func Latest() Requirement {
	return Requirement{Kind: RequirementLatest, raw: models.LatestVersion}
}

// ParseRequirement parses "latest", a full semver version (exact match) or a
// semver range such as "^1.2", "~0.9.1", ">=1.0, <2.0" or "1.x || 2.x".
// It performs no I/O so invalid input is rejected before any fetch.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{}, models.NewError(models.KindInvalidInput, "", "empty version requirement")
	}

	if s == models.LatestVersion {
		return Latest(), nil
	}

	if v, err := semver.StrictNewVersion(s); err == nil {
		return Requirement{Kind: RequirementExact, raw: s, exact: v}, nil
	}

	c, err := semver.NewConstraint(s)
	if err != nil {
		return Requirement{}, models.WrapError(models.KindInvalidInput, "", err,
			"invalid version %q: must be a valid semver range or %q", s, models.LatestVersion)
	}
	req := Requirement{Kind: RequirementRange, raw: s, constraint: c}
	for _, op := range prereleaseOperand.FindAllString(s, -1) {
		if v, err := semver.NewVersion(op); err == nil && v.Prerelease() != "" {
			req.prereleases = append(req.prereleases, v)
		}
	}
	return req, nil
}

// Matches reports whether v satisfies the requirement. Latest matches every
// version; selecting among them is the resolver's job.
//
// A pre-release only satisfies a range when some operand of the range is a
// pre-release of the same major.minor.patch, as npm and cargo require.
func (r Requirement) Matches(v *semver.Version) bool {
	switch r.Kind {
	case RequirementExact:
		return v.Equal(r.exact)
	case RequirementRange:
		if !r.constraint.Check(v) {
			return false
		}
		if v.Prerelease() == "" {
			return true
		}
		return slices.ContainsFunc(r.prereleases, func(p *semver.Version) bool {
			return p.Major() == v.Major() && p.Minor() == v.Minor() && p.Patch() == v.Patch()
		})
	default:
		return true
	}
}

func (r Requirement) String() string {
	if r.Kind == RequirementLatest {
		return models.LatestVersion
	}
	return r.raw
}
