package executor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spachava753/cargo-install/internal/cachekey"
	"github.com/spachava753/cargo-install/internal/models"
	"github.com/spachava753/cargo-install/internal/platform"
	"github.com/spachava753/cargo-install/internal/registry"
)

// RegistryResolver resolves a version requirement against the package index.
type RegistryResolver interface {
	Resolve(ctx context.Context, crate string, req registry.Requirement) (*registry.Resolution, error)
}

// GitResolver resolves a Git selector to a commit.
type GitResolver interface {
	Resolve(ctx context.Context, sel models.GitSelector) (models.GitCommit, error)
}

// OSProber determines the version of the runner OS.
type OSProber interface {
	OSVersion(ctx context.Context, osName string) (string, []models.Notice)
}

// Resolved is a crate whose version and cache key are fully determined.
type Resolved struct {
	Input    models.InstallInput
	Version  models.ResolvedVersion
	Identity models.BuildIdentity
	Settings models.InstallSettings
	Notices  []models.Notice
}

// Resolver turns install inputs into build identities. Registry and Git
// are mutually exclusive per input.
type Resolver struct {
	Registry RegistryResolver
	Git      GitResolver
	Keys     *cachekey.Builder
	Platform models.Platform
	// Root holds one install directory per crate.
	Root string
}

// DetectPlatform returns the runner platform including its OS version.
func DetectPlatform(ctx context.Context, getenv func(string) string, prober OSProber) (models.Platform, []models.Notice) {
	p := platform.Detect(getenv)

	var notices []models.Notice
	p.OSVersion, notices = prober.OSVersion(ctx, p.OS)

	slog.Debug("detected platform", "os", p.OS, "arch", p.Arch, "os_version", p.OSVersion, "job", getenv("GITHUB_JOB"))
	return p, notices
}

// Resolve resolves the version of in and derives its install settings.
func (r *Resolver) Resolve(ctx context.Context, in models.InstallInput) (*Resolved, error) {
	res := &Resolved{Input: in}

	switch src := in.Source.(type) {
	case models.RegistrySource:
		req, err := registry.ParseRequirement(src.Requirement)
		if err != nil {
			return nil, err
		}
		resolution, err := r.Registry.Resolve(ctx, in.Crate, req)
		if err != nil {
			return nil, err
		}
		res.Version = models.RegistryVersion{Version: resolution.Version.Original()}
		res.Notices = append(res.Notices, resolution.Notices...)

	case models.GitSelector:
		commit, err := r.Git.Resolve(ctx, src)
		if err != nil {
			return nil, err
		}
		res.Version = commit

	default:
		return nil, fmt.Errorf("unsupported source %T for %s", in.Source, in.Crate)
	}

	res.Identity = models.BuildIdentity{
		Crate:         in.Crate,
		Version:       res.Version,
		Features:      in.Features,
		Args:          in.Args,
		Platform:      r.Platform,
		Disambiguator: in.CacheKey,
	}

	key, err := r.Keys.Key(res.Identity)
	if err != nil {
		return nil, fmt.Errorf("computing cache key: %w", err)
	}

	path := filepath.Join(r.Root, in.Crate)
	res.Settings = models.InstallSettings{
		Path:     path,
		CacheKey: key,
		Args:     InstallArgs(in, res.Version, path),
	}

	return res, nil
}
