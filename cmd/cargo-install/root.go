package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spachava753/cargo-install/internal/cache"
	"github.com/spachava753/cargo-install/internal/cachekey"
	"github.com/spachava753/cargo-install/internal/config"
	"github.com/spachava753/cargo-install/internal/executor"
	"github.com/spachava753/cargo-install/internal/gitref"
	"github.com/spachava753/cargo-install/internal/models"
	"github.com/spachava753/cargo-install/internal/platform"
	"github.com/spachava753/cargo-install/internal/registry"
)

// app is the state shared by the commands, set up before any of them runs.
type app struct {
	getenv   func(string) string
	viper    *viper.Viper
	settings models.Settings
	home     string
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv, viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "cargo-install",
		Short: "Install a Rust binary crate, reusing a cached build when possible",
		Long: `Resolves the crate version or git commit to install, derives a cache key
from everything that affects the build, and runs "cargo install" only when no
cached build exists for that key.

Every input flag can also be given as an INPUT_<NAME> environment variable,
as GitHub Actions does for action inputs (e.g. INPUT_CACHE-KEY).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.install(cmd.Context())
		},
	}

	cmd.PersistentFlags().String("config", "", "path to a settings file (default ./"+config.SettingsFile+" if present)")
	registerLoggingFlags(cmd)
	registerInputFlags(cmd.PersistentFlags())

	cmd.AddCommand(newResolveCmd(a))

	return cmd
}

func registerInputFlags(flags *pflag.FlagSet) {
	flags.String(config.KeyCrate, "", "name of the crate to install")
	flags.String(config.KeyVersion, "", `version requirement: "latest", an exact version or a semver range`)
	flags.String(config.KeyGit, "", "git repository to install from")
	flags.String(config.KeyBranch, "", "git branch to install from")
	flags.String(config.KeyTag, "", "git tag to install from")
	flags.String(config.KeyRev, "", "git commit to install from")
	flags.String(config.KeyFeatures, "", "features to enable, separated by commas or spaces")
	flags.String(config.KeyArgs, "", "extra arguments for cargo install")
	flags.Bool(config.KeyLocked, false, "pass --locked to cargo install")
	flags.String(config.KeyCacheKey, "", "additional string mixed into the cache key")
}

func (a *app) setup(cmd *cobra.Command) error {
	home := a.getenv("HOME")
	if home == "" {
		home = a.getenv("USERPROFILE")
	}
	if home == "" {
		return errors.New("could not determine home directory (missing HOME and USERPROFILE environment variables)")
	}
	a.home = home

	settings, err := a.loadSettings(cmd)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := newLogger(cmd, settings.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.viper.SetEnvPrefix(config.EnvPrefix)
	a.viper.AutomaticEnv()
	if err := a.viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

func (a *app) loadSettings(cmd *cobra.Command) (models.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(config.SettingsFile); errors.Is(err, fs.ErrNotExist) {
			return config.LoadSettings(nil, "", a.home)
		}
		path = config.SettingsFile
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Settings{}, fmt.Errorf("resolving settings path: %w", err)
	}
	return config.LoadSettings(os.DirFS(filepath.Dir(abs)), filepath.Base(abs), a.home)
}

// newResolver wires the resolvers and key builder described by the settings.
func (a *app) newResolver(ctx context.Context) (*executor.Resolver, []models.Notice, error) {
	s := a.settings

	client := &http.Client{Timeout: time.Duration(s.Registry.TimeoutSec * float64(time.Second))}
	baseURL := s.Registry.SparseURL
	if registry.Flavor(s.Registry.Flavor) == registry.FlavorAPI {
		baseURL = s.Registry.APIURL
	}
	index, err := registry.NewIndex(registry.Flavor(s.Registry.Flavor), baseURL, client, s.Registry.MaxResponseBytes)
	if err != nil {
		return nil, nil, err
	}
	switch idx := index.(type) {
	case *registry.SparseIndex:
		idx.UserAgent = s.Registry.UserAgent
	case *registry.APIIndex:
		idx.UserAgent = s.Registry.UserAgent
	}

	lister, err := gitref.NewLister(gitref.Backend(s.Git.Backend), s.Git.Binary)
	if err != nil {
		return nil, nil, err
	}

	plat, notices := executor.DetectPlatform(ctx, a.getenv, platform.NewProber())

	return &executor.Resolver{
		Registry: registry.NewResolver(index),
		Git:      gitref.NewResolver(lister),
		Keys:     &cachekey.Builder{Prefix: s.Cache.KeyPrefix, HashLength: s.Cache.HashLength},
		Platform: plat,
		Root:     s.Install.Root,
	}, notices, nil
}

func (a *app) readInput() (models.InstallInput, []models.Notice, error) {
	spec, err := config.ReadInput(a.viper, a.getenv)
	if err != nil {
		return models.InstallInput{}, nil, err
	}
	return config.ParseInput(spec)
}

func (a *app) install(ctx context.Context) error {
	in, notices, err := a.readInput()
	if err != nil {
		return err
	}

	resolver, platformNotices, err := a.newResolver(ctx)
	if err != nil {
		return err
	}

	installer := &executor.Installer{
		Resolver: resolver,
		Store:    cache.NewDirStore(a.settings.Cache.Dir),
		Cargo:    &executor.CargoBuilder{Cargo: a.settings.Install.Cargo},
		Action:   githubactions.New(githubactions.WithGetenv(a.getenv)),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	_, err = installer.Run(ctx, in, append(notices, platformNotices...))
	return err
}
