// Package cachekey derives the deterministic cache key of a build.
package cachekey

import (
	_ "crypto/sha256"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/spachava753/cargo-install/internal/models"
)

const (
	// DefaultPrefix is the first segment of every key.
	DefaultPrefix = "cargo-install"
	// DefaultHashLength is the number of hex characters of the digest kept.
	DefaultHashLength = 20

	minHashLength = 20
	maxHashLength = 24
)

// Builder computes cache keys of the form
// <prefix>-<crate>-<version|short commit>-<hash>.
type Builder struct {
	Prefix     string
	HashLength int
}

// NewBuilder returns a Builder with the default prefix and hash length.
func NewBuilder() *Builder {
	return &Builder{Prefix: DefaultPrefix, HashLength: DefaultHashLength}
}

// Key returns the cache key of id. It is a pure function of id.
func (b *Builder) Key(id models.BuildIdentity) (string, error) {
	if id.Crate == "" {
		return "", fmt.Errorf("crate name is required")
	}
	if id.Version == nil {
		return "", fmt.Errorf("resolved version is required for %s", id.Crate)
	}

	prefix := b.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return strings.Join([]string{prefix, id.Crate, id.Version.Display(), b.Hash(id)}, "-"), nil
}

// Hash returns the truncated hex SHA-256 digest of the identity.
func (b *Builder) Hash(id models.BuildIdentity) string {
	return digest.SHA256.FromBytes(preHash(id)).Encoded()[:b.hashLength()]
}

func (b *Builder) hashLength() int {
	return min(max(b.HashLength, minHashLength), maxHashLength)
}

// preHash serializes every build-affecting dimension in a fixed order. Each
// field is length prefixed so that adjacent values cannot run together.
//
// Order: os, arch, os version, args (count then each, in order), features
// (count then each, sorted and unique), disambiguator, crate, source kind,
// then version or repository and full commit.
func preHash(id models.BuildIdentity) []byte {
	var buf []byte
	field := func(s string) {
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	list := func(items []string) {
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(items)))
		for _, item := range items {
			field(item)
		}
	}

	field(id.Platform.OS)
	field(id.Platform.Arch)
	field(id.Platform.OSVersion)
	list(id.Args)
	list(normalizeFeatures(id.Features))
	field(id.Disambiguator)
	field(id.Crate)

	switch v := id.Version.(type) {
	case models.RegistryVersion:
		field("registry")
		field(v.Version)
	case models.GitCommit:
		field("git")
		field(v.Repository)
		field(v.Commit)
	}

	return buf
}

// normalizeFeatures returns the sorted, de-duplicated, non-empty features.
func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
