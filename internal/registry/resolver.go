package registry

import (
	"context"
	"log/slog"
	"slices"

	"github.com/spachava753/cargo-install/internal/models"
)

// Resolver resolves version requirements against a package index.
type Resolver struct {
	index Index
}

// NewResolver creates a Resolver backed by index.
func NewResolver(index Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve fetches the published versions of crate and selects the one that
// best satisfies req. Every failure is terminal; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, crate string, req Requirement) (*Resolution, error) {
	slog.Info("fetching crate versions from index", "crate", crate, "requirement", req.String())

	listing, err := r.index.Versions(ctx, crate)
	if err != nil {
		return nil, err
	}

	res, err := Select(crate, listing, req)
	if err != nil {
		return nil, err
	}

	slog.Info("resolved crate version", "crate", crate, "requirement", req.String(), "version", res.Version.Original())
	return res, nil
}

// Select picks a version from listing. It is the pure part of Resolve.
//
// For Latest it returns the newest stable (not yanked, not pre-release)
// version, falling back to the newest version overall when every version is
// yanked or a pre-release. Otherwise it returns
// the newest non-yanked match, falling back to the newest yanked match.
func Select(crate string, listing *Listing, req Requirement) (*Resolution, error) {
	if listing == nil || len(listing.Entries) == 0 {
		return nil, models.NewError(models.KindNotFound, crate, "crate %s has no published versions", crate)
	}

	sorted := sortDescending(listing.Entries)
	stable := slices.IndexFunc(sorted, Entry.Stable)

	latest := listing.MaxStable
	if latest == nil && stable >= 0 {
		latest = sorted[stable].Version
	}

	var candidates []Entry
	if req.Kind == RequirementLatest {
		candidates = sorted[:1]
		if stable >= 0 {
			candidates = sorted[stable : stable+1]
		}
	} else {
		for _, e := range sorted {
			if req.Matches(e.Version) {
				candidates = append(candidates, e)
			}
		}
	}

	if len(candidates) == 0 {
		available := make([]string, 0, len(sorted))
		for i := len(sorted) - 1; i >= 0; i-- {
			available = append(available, sorted[i].Version.Original())
		}
		return nil, &models.Error{
			Kind:        models.KindNoSatisfyingVersion,
			Subject:     crate,
			Message:     "no version found for " + crate + " that satisfies " + req.String(),
			Requirement: req.String(),
			Available:   available,
		}
	}

	chosen := candidates[0]
	if i := slices.IndexFunc(candidates, func(e Entry) bool { return !e.Yanked }); i >= 0 {
		chosen = candidates[i]
	}

	res := &Resolution{
		Version: chosen.Version,
		Yanked:  chosen.Yanked,
		Latest:  latest,
	}

	switch {
	case chosen.Yanked:
		res.Notices = append(res.Notices, models.Noticef(models.NoticeYankedVersion,
			"Using yanked version %s for %s", chosen.Version.Original(), crate))
	case req.Kind != RequirementLatest && latest != nil && chosen.Version.LessThan(latest):
		res.Notices = append(res.Notices, models.Noticef(models.NoticeUpdateAvailable,
			"New version for %s available: %s", crate, latest.Original()))
	}

	return res, nil
}

// sortDescending returns the entries ordered newest first. Duplicate
// versions keep the last record, matching how the index appends updates.
func sortDescending(entries []Entry) []Entry {
	byVersion := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := e.Version.String()
		if i, ok := byVersion[key]; ok {
			out[i] = e
			continue
		}
		byVersion[key] = len(out)
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		return b.Version.Compare(a.Version)
	})
	return out
}
