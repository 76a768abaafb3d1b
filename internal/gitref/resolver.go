package gitref

import (
	"context"
	"log/slog"

	"github.com/spachava753/cargo-install/internal/models"
)

// Resolver dereferences a Git selector to a commit.
type Resolver struct {
	lister Lister
}

// NewResolver creates a Resolver that lists refs with lister.
func NewResolver(lister Lister) *Resolver {
	return &Resolver{lister: lister}
}

// Resolve returns the commit selected by sel. Priority is explicit commit,
// then tag, then branch, then the remote HEAD.
//
// An explicit commit is returned as given, without contacting the remote and
// without checking that it exists.
func (r *Resolver) Resolve(ctx context.Context, sel models.GitSelector) (models.GitCommit, error) {
	if sel.Commit != "" {
		slog.Info("using explicit commit", "repository", sel.Repository, "commit", sel.Commit)
		return models.GitCommit{Repository: sel.Repository, Commit: sel.Commit}, nil
	}

	slog.Info("fetching git refs", "repository", sel.Repository)
	refs, err := r.lister.ListRefs(ctx, sel.Repository)
	if err != nil {
		return models.GitCommit{}, err
	}

	return Select(sel, refs)
}

// Select resolves sel against an already listed RefSet.
func Select(sel models.GitSelector, refs *RefSet) (models.GitCommit, error) {
	switch {
	case sel.Commit != "":
		return models.GitCommit{Repository: sel.Repository, Commit: sel.Commit}, nil

	case sel.Tag != "":
		commit, ok := refs.Tags[sel.Tag]
		if !ok {
			return models.GitCommit{}, models.NewError(models.KindNotFound, sel.Repository,
				"failed to resolve tag %s for %s: tag not found", sel.Tag, sel.Repository)
		}
		slog.Info("resolved tag", "tag", sel.Tag, "commit", commit)
		return models.GitCommit{Repository: sel.Repository, Commit: commit}, nil

	case sel.Branch != "":
		commit, ok := refs.Branches[sel.Branch]
		if !ok {
			return models.GitCommit{}, models.NewError(models.KindNotFound, sel.Repository,
				"failed to resolve branch %s for %s: branch not found", sel.Branch, sel.Repository)
		}
		slog.Info("resolved branch", "branch", sel.Branch, "commit", commit)
		return models.GitCommit{Repository: sel.Repository, Commit: commit}, nil

	default:
		slog.Info("resolved HEAD", "commit", refs.Head)
		return models.GitCommit{Repository: sel.Repository, Commit: refs.Head}, nil
	}
}
