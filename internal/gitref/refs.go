package gitref

import (
	"bufio"
	"io"
	"strings"

	"github.com/spachava753/cargo-install/internal/models"
)

const (
	headRef      = "HEAD"
	tagPrefix    = "refs/tags/"
	branchPrefix = "refs/heads/"
	peeledSuffix = "^{}"
)

// RefSet is a snapshot of the refs a remote advertises. It is built fresh
// for every resolution because branches and tags move.
type RefSet struct {
	Head     string
	Tags     map[string]string
	Branches map[string]string

	// peeled records tags whose entry came from a "^{}" line.
	peeled map[string]bool
}

func newRefSet() *RefSet {
	return &RefSet{
		Tags:     make(map[string]string),
		Branches: make(map[string]string),
		peeled:   make(map[string]bool),
	}
}

// add records one advertised ref. A peeled tag ("refs/tags/v1^{}") names
// the commit an annotated tag points to and wins over the tag object id.
func (s *RefSet) add(commit, ref string) {
	switch {
	case ref == headRef:
		s.Head = commit
	case strings.HasPrefix(ref, tagPrefix):
		tag := strings.TrimPrefix(ref, tagPrefix)
		if base, ok := strings.CutSuffix(tag, peeledSuffix); ok {
			s.Tags[base] = commit
			s.peeled[base] = true
			return
		}
		if !s.peeled[tag] {
			s.Tags[tag] = commit
		}
	case strings.HasPrefix(ref, branchPrefix):
		s.Branches[strings.TrimPrefix(ref, branchPrefix)] = commit
	}
}

func (s *RefSet) validate(repository string) error {
	if s.Head == "" {
		return models.NewError(models.KindHeadUnavailable, repository,
			"failed to fetch HEAD commit for %s", repository)
	}
	return nil
}

// ParseRefs parses ref advertisement lines of the form "<commit>\t<ref>", as
// printed by git ls-remote. Blank and malformed lines are skipped. It fails
// with ErrHeadUnavailable when no HEAD line is present.
func ParseRefs(repository string, r io.Reader) (*RefSet, error) {
	set := newRefSet()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		commit, ref, ok := strings.Cut(strings.TrimRight(scanner.Text(), "\r"), "\t")
		commit = strings.TrimSpace(commit)
		ref = strings.TrimSpace(ref)
		if !ok || commit == "" || ref == "" {
			continue
		}
		set.add(commit, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, models.WrapError(models.KindFetch, repository, err, "reading refs of %s", repository)
	}

	if err := set.validate(repository); err != nil {
		return nil, err
	}
	return set, nil
}
