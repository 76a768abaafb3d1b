package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-githubactions"

	"github.com/spachava753/cargo-install/internal/cache"
	"github.com/spachava753/cargo-install/internal/models"
)

// Installer installs one crate: it resolves the version, restores a cached
// build when one exists and runs cargo otherwise.
type Installer struct {
	Resolver *Resolver
	Store    cache.Store
	Cargo    Builder
	Action   *githubactions.Action
	// Stdout and Stderr receive cargo output.
	Stdout io.Writer
	Stderr io.Writer
}

// Run installs the crate described by in. notices are reported alongside
// those raised during resolution.
func (i *Installer) Run(ctx context.Context, in models.InstallInput, notices []models.Notice) (*models.InstallResult, error) {
	result := &models.InstallResult{
		Crate:     in.Crate,
		StartedAt: time.Now(),
	}
	defer func() {
		result.EndedAt = time.Now()
		result.Durations.TotalSec = result.EndedAt.Sub(result.StartedAt).Seconds()
	}()

	// Phase 1: Resolve
	i.Action.Group(fmt.Sprintf("Installing %s...", in.Crate))
	resolveStart := time.Now()
	resolved, err := i.Resolver.Resolve(ctx, in)
	result.Durations.ResolveSec = time.Since(resolveStart).Seconds()
	if err != nil {
		i.Action.EndGroup()
		return result, fmt.Errorf("resolving %s: %w", in.Crate, err)
	}

	result.Version = resolved.Version
	result.Settings = resolved.Settings
	result.Notices = append(append(result.Notices, notices...), resolved.Notices...)
	i.reportNotices(result.Notices)
	i.logSettings(resolved)

	// Phase 2: Restore
	restoreStart := time.Now()
	hit, err := i.Store.Restore(ctx, resolved.Settings.CacheKey, resolved.Settings.Path)
	result.Durations.RestoreSec = time.Since(restoreStart).Seconds()
	if err != nil {
		slog.Warn("cache restore failed", "key", resolved.Settings.CacheKey, "error", err)
		i.Action.Warningf("Failed to restore cache: %s", err)
		hit = false
	}
	i.Action.EndGroup()
	result.CacheHit = hit

	// Phase 3: Build and save
	if hit {
		i.Action.Infof("Restored %s from cache.", in.Crate)
	} else {
		if err := i.build(ctx, resolved, result); err != nil {
			return result, err
		}
	}

	result.Binaries = i.checkManifest(resolved.Settings.Path)

	binDir := filepath.Join(resolved.Settings.Path, "bin")
	i.Action.AddPath(binDir)
	i.Action.Infof("Added %s to PATH.", binDir)

	switch v := resolved.Version.(type) {
	case models.GitCommit:
		i.Action.Infof("Installed %s from %s at %s.", in.Crate, v.Repository, v.Display())
	default:
		i.Action.Infof("Installed %s %s.", in.Crate, v.Display())
	}

	i.Action.SetOutput("version", resolved.Version.Output())
	i.Action.SetOutput("cache-hit", strconv.FormatBool(hit))

	slog.Info("crate installed",
		"crate", in.Crate,
		"version", resolved.Version.Output(),
		"cache_hit", hit,
		"duration_sec", time.Since(result.StartedAt).Seconds())

	return result, nil
}

func (i *Installer) build(ctx context.Context, resolved *Resolved, result *models.InstallResult) error {
	settings := resolved.Settings

	i.Action.Group(fmt.Sprintf("No cached version found, installing %s using cargo...", resolved.Input.Crate))
	defer i.Action.EndGroup()

	if err := os.MkdirAll(settings.Path, 0755); err != nil {
		return fmt.Errorf("creating install directory: %w", err)
	}

	buildStart := time.Now()
	err := i.Cargo.Build(ctx, settings.Args, i.Stdout, i.Stderr)
	buildDur := time.Since(buildStart).Seconds()
	result.Durations.BuildSec = &buildDur
	if err != nil {
		return fmt.Errorf("installing %s: %w", resolved.Input.Crate, err)
	}

	if err := i.Store.Save(ctx, settings.CacheKey, settings.Path); err != nil {
		slog.Warn("cache save failed", "key", settings.CacheKey, "error", err)
		i.Action.Warningf("%s", err)
	}
	return nil
}

func (i *Installer) reportNotices(notices []models.Notice) {
	for _, n := range notices {
		slog.Warn(n.Message, "kind", n.Kind)
		i.Action.Warningf("%s", n.Message)
	}
}

func (i *Installer) logSettings(resolved *Resolved) {
	i.Action.Infof("Installation settings:")
	switch v := resolved.Version.(type) {
	case models.GitCommit:
		i.Action.Infof("   repository: %s", v.Repository)
		i.Action.Infof("   commit: %s", v.Commit)
	default:
		i.Action.Infof("   version: %s", v.Output())
	}
	i.Action.Infof("   path: %s", resolved.Settings.Path)
	i.Action.Infof("   key: %s", resolved.Settings.CacheKey)
	i.Action.Infof("   command: cargo %s", strings.Join(resolved.Settings.Args, " "))
}

// checkManifest logs the binaries cargo recorded for path. A missing or
// unreadable manifest is only a warning.
func (i *Installer) checkManifest(path string) []string {
	pkgs, err := ReadManifest(os.DirFS(path))
	if err != nil {
		slog.Warn("could not read install manifest", "path", path, "error", err)
		return nil
	}

	var bins []string
	for _, pkg := range pkgs {
		slog.Debug("installed package", "name", pkg.Name, "version", pkg.Version, "source", pkg.Source, "binaries", pkg.Binaries)
		bins = append(bins, pkg.Binaries...)
	}
	return bins
}
