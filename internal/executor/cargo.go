package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spachava753/cargo-install/internal/models"
)

// Builder runs the build tool.
type Builder interface {
	Build(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

// CargoBuilder runs cargo as a subprocess.
type CargoBuilder struct {
	// Cargo is the cargo executable; "cargo" when empty.
	Cargo string
	// Env is appended to the current environment.
	Env []string
}

// Build runs cargo with args.
func (b *CargoBuilder) Build(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cargo := b.Cargo
	if cargo == "" {
		cargo = "cargo"
	}

	slog.Debug("running cargo", "cargo", cargo, "args", args)
	cmd := exec.CommandContext(ctx, cargo, args...)
	cmd.Env = append(os.Environ(), b.Env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", cargo, strings.Join(args, " "), err)
	}
	return nil
}

// InstallArgs returns the cargo arguments installing version into path.
func InstallArgs(in models.InstallInput, version models.ResolvedVersion, path string) []string {
	args := []string{"install", in.Crate, "--force", "--root", path}

	switch v := version.(type) {
	case models.RegistryVersion:
		args = append(args, "--version", v.Version)
	case models.GitCommit:
		args = append(args, "--git", v.Repository, "--rev", v.Commit)
	}

	if len(in.Features) > 0 {
		args = append(args, "--features", strings.Join(in.Features, ","))
	}

	return append(args, in.Args...)
}
