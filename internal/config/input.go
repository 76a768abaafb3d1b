package config

import (
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"

	"github.com/spachava753/cargo-install/internal/models"
	"github.com/spachava753/cargo-install/internal/registry"
)

// Input keys, shared by the command line flags and the INPUT_* environment
// variables of the CI action.
const (
	KeyCrate    = "crate"
	KeyVersion  = "version"
	KeyGit      = "git"
	KeyBranch   = "branch"
	KeyTag      = "tag"
	KeyRev      = "rev"
	KeyFeatures = "features"
	KeyArgs     = "args"
	KeyLocked   = "locked"
	KeyCacheKey = "cache-key"
)

// EnvPrefix is the prefix of action input environment variables, as in
// INPUT_CACHE-KEY.
const EnvPrefix = "INPUT"

var featureSeparator = regexp.MustCompile(`[ ,]+`)

// crateName matches the names cargo accepts for published crates.
var crateName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ReadInput reads the crate inputs from v. Features are split on commas and
// spaces; args are split with shell word rules, expanding variables with
// getenv.
func ReadInput(v *viper.Viper, getenv func(string) string) (models.CrateSpec, error) {
	spec := models.CrateSpec{
		Crate:    strings.TrimSpace(v.GetString(KeyCrate)),
		Version:  strings.TrimSpace(v.GetString(KeyVersion)),
		Git:      strings.TrimSpace(v.GetString(KeyGit)),
		Branch:   strings.TrimSpace(v.GetString(KeyBranch)),
		Tag:      strings.TrimSpace(v.GetString(KeyTag)),
		Rev:      strings.TrimSpace(v.GetString(KeyRev)),
		Features: SplitFeatures(v.GetString(KeyFeatures)),
		Locked:   v.GetBool(KeyLocked),
		CacheKey: strings.TrimSpace(v.GetString(KeyCacheKey)),
	}

	args, err := SplitArgs(v.GetString(KeyArgs), getenv)
	if err != nil {
		return spec, err
	}
	spec.Args = args

	return spec, nil
}

// SplitFeatures splits a feature list separated by commas and/or spaces.
func SplitFeatures(s string) []string {
	var features []string
	for _, f := range featureSeparator.Split(strings.TrimSpace(s), -1) {
		if f != "" {
			features = append(features, f)
		}
	}
	return features
}

// SplitArgs splits s into words the way a POSIX shell would.
func SplitArgs(s string, getenv func(string) string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	args, err := shell.Fields(s, getenv)
	if err != nil {
		return nil, models.WrapError(models.KindInvalidInput, "args", err, "invalid args %q", s)
	}
	return args, nil
}

// ParseInput validates spec and converts it into an install request. Git
// fields take precedence over the version; inputs that are ignored as a
// result are reported as notices.
func ParseInput(spec models.CrateSpec) (models.InstallInput, []models.Notice, error) {
	var notices []models.Notice

	if spec.Crate == "" {
		return models.InstallInput{}, nil, models.NewError(models.KindInvalidInput, "crate", "crate name is required")
	}
	if !crateName.MatchString(spec.Crate) {
		return models.InstallInput{}, nil, models.NewError(models.KindInvalidInput, spec.Crate,
			"invalid crate name %q", spec.Crate)
	}

	in := models.InstallInput{
		Crate:    spec.Crate,
		Features: spec.Features,
		Args:     append([]string(nil), spec.Args...),
		CacheKey: spec.CacheKey,
	}
	if spec.Locked {
		in.Args = append(in.Args, "--locked")
	}

	if spec.Git != "" {
		if spec.Version != "" && spec.Version != models.LatestVersion {
			notices = append(notices, models.Noticef(models.NoticeIgnoredInput,
				"Ignoring version %s for %s: installing from git repository %s", spec.Version, spec.Crate, spec.Git))
		}
		in.Source = models.GitSelector{
			Repository: spec.Git,
			Branch:     spec.Branch,
			Tag:        spec.Tag,
			Commit:     spec.Rev,
		}
		notices = append(notices, shadowedRefs(spec)...)
		return in, notices, nil
	}

	ignored := []struct{ name, value string }{
		{KeyBranch, spec.Branch},
		{KeyTag, spec.Tag},
		{KeyRev, spec.Rev},
	}
	for _, field := range ignored {
		if field.value != "" {
			notices = append(notices, models.Noticef(models.NoticeIgnoredInput,
				"Ignoring %s %s for %s: no git repository given", field.name, field.value, spec.Crate))
		}
	}

	version := spec.Version
	if version == "" {
		version = models.LatestVersion
	}
	if _, err := registry.ParseRequirement(version); err != nil {
		return models.InstallInput{}, nil, err
	}
	in.Source = models.RegistrySource{Requirement: version}

	return in, notices, nil
}

// shadowedRefs reports git selectors that lose to a higher priority one.
func shadowedRefs(spec models.CrateSpec) []models.Notice {
	var notices []models.Notice
	switch {
	case spec.Rev != "":
		if spec.Tag != "" {
			notices = append(notices, models.Noticef(models.NoticeIgnoredInput,
				"Ignoring tag %s for %s: rev %s takes precedence", spec.Tag, spec.Crate, spec.Rev))
		}
		if spec.Branch != "" {
			notices = append(notices, models.Noticef(models.NoticeIgnoredInput,
				"Ignoring branch %s for %s: rev %s takes precedence", spec.Branch, spec.Crate, spec.Rev))
		}
	case spec.Tag != "" && spec.Branch != "":
		notices = append(notices, models.Noticef(models.NoticeIgnoredInput,
			"Ignoring branch %s for %s: tag %s takes precedence", spec.Branch, spec.Crate, spec.Tag))
	}
	return notices
}
