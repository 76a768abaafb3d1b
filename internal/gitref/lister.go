package gitref

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/spachava753/cargo-install/internal/models"
)

// Backend selects how remote refs are listed.
type Backend string

const (
	// BackendCLI runs git ls-remote.
	BackendCLI Backend = "cli"
	// BackendGoGit lists refs in-process with go-git.
	BackendGoGit Backend = "go-git"
)

// Lister lists the refs advertised by a remote repository without cloning it.
type Lister interface {
	ListRefs(ctx context.Context, repository string) (*RefSet, error)
}

// NewLister returns the Lister for backend. gitBinary only applies to the
// CLI backend.
func NewLister(backend Backend, gitBinary string) (Lister, error) {
	switch backend {
	case BackendCLI, "":
		return &CommandLister{Git: gitBinary}, nil
	case BackendGoGit:
		return &RemoteLister{}, nil
	default:
		return nil, fmt.Errorf("unsupported git backend: %s", backend)
	}
}

// CommandLister runs "git ls-remote" and parses its output.
type CommandLister struct {
	// Git is the git executable; "git" when empty.
	Git string
}

// ListRefs runs git ls-remote against repository.
func (l *CommandLister) ListRefs(ctx context.Context, repository string) (*RefSet, error) {
	if strings.HasPrefix(repository, "-") {
		return nil, models.NewError(models.KindInvalidInput, repository, "invalid repository %q", repository)
	}

	gitBin := l.Git
	if gitBin == "" {
		gitBin = "git"
	}

	slog.Debug("listing remote refs", "repository", repository, "git", gitBin)
	cmd := exec.CommandContext(ctx, gitBin, "ls-remote", repository)
	// Never block on a credential prompt in CI.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, models.WrapError(models.KindFetch, repository, err,
			"git ls-remote %s: %s", repository, strings.TrimSpace(stderr.String()))
	}

	return ParseRefs(repository, &stdout)
}

// RemoteLister lists refs with an in-memory go-git remote.
type RemoteLister struct{}

// ListRefs lists the refs of repository, including peeled tags.
func (l *RemoteLister) ListRefs(ctx context.Context, repository string) (*RefSet, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{repository},
	})

	slog.Debug("listing remote refs with go-git", "repository", repository)
	refs, err := remote.ListContext(ctx, &git.ListOptions{
		PeelingOption: git.AppendPeeled,
	})
	if err != nil {
		return nil, models.WrapError(models.KindFetch, repository, err, "listing refs of %s", repository)
	}

	set := newRefSet()
	var headTarget plumbing.ReferenceName
	for _, ref := range refs {
		switch ref.Type() {
		case plumbing.SymbolicReference:
			if ref.Name() == plumbing.HEAD {
				headTarget = ref.Target()
			}
		case plumbing.HashReference:
			set.add(ref.Hash().String(), ref.Name().String())
		}
	}

	// Servers advertising the symref capability report HEAD symbolically.
	if set.Head == "" && headTarget != "" {
		for _, ref := range refs {
			if ref.Name() == headTarget && ref.Type() == plumbing.HashReference {
				set.Head = ref.Hash().String()
				break
			}
		}
	}

	if err := set.validate(repository); err != nil {
		return nil, err
	}
	return set, nil
}
