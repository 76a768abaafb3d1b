package registry

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/spachava753/cargo-install/internal/models"
)

const (
	// DefaultSparseURL is the crates.io sparse index.
	DefaultSparseURL = "https://index.crates.io/"
	// DefaultAPIURL is the crates.io web API.
	DefaultAPIURL = "https://crates.io/"

	// DefaultUserAgent identifies requests to the index. crates.io rejects
	// API requests without one.
	DefaultUserAgent = "cargo-install-action"

	// DefaultMaxResponseBytes bounds the size of an index response.
	DefaultMaxResponseBytes = 10 << 20
)

// Flavor selects the index protocol.
type Flavor string

const (
	FlavorSparse Flavor = "sparse"
	FlavorAPI    Flavor = "api"
)

// Index lists the published versions of a crate.
type Index interface {
	Versions(ctx context.Context, crate string) (*Listing, error)
}

// NewIndex returns the index client for flavor. An empty baseURL selects the
// crates.io default for that flavor; a nil client uses http.DefaultClient and
// a zero maxBytes uses DefaultMaxResponseBytes.
func NewIndex(flavor Flavor, baseURL string, client *http.Client, maxBytes int64) (Index, error) {
	switch flavor {
	case FlavorSparse, "":
		if baseURL == "" {
			baseURL = DefaultSparseURL
		}
		return &SparseIndex{BaseURL: baseURL, Client: client, MaxBytes: maxBytes}, nil
	case FlavorAPI:
		if baseURL == "" {
			baseURL = DefaultAPIURL
		}
		return &APIIndex{BaseURL: baseURL, Client: client, MaxBytes: maxBytes}, nil
	default:
		return nil, fmt.Errorf("unsupported index flavor: %s", flavor)
	}
}

// SparseIndex reads newline-delimited JSON records from a sparse index.
type SparseIndex struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

// Versions fetches and parses the index file of crate.
func (s *SparseIndex) Versions(ctx context.Context, crate string) (*Listing, error) {
	u := strings.TrimSuffix(s.BaseURL, "/") + "/" + IndexPath(crate)
	slog.Debug("fetching sparse index file", "crate", crate, "url", u)

	data, err := fetch(ctx, s.Client, s.UserAgent, s.MaxBytes, u, crate)
	if err != nil {
		return nil, err
	}

	entries, err := ParseSparse(crate, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Listing{Entries: entries}, nil
}

// APIIndex reads the crate document of the crates.io web API.
type APIIndex struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

// Versions fetches and parses the API document of crate.
func (a *APIIndex) Versions(ctx context.Context, crate string) (*Listing, error) {
	u := strings.TrimSuffix(a.BaseURL, "/") + "/api/v1/crates/" + url.PathEscape(crate)
	slog.Debug("fetching crate document", "crate", crate, "url", u)

	data, err := fetch(ctx, a.Client, a.UserAgent, a.MaxBytes, u, crate)
	if err != nil {
		return nil, err
	}
	return ParseAPI(crate, data)
}

// ParseSparse parses sparse index records. Blank lines are skipped; every
// other line must carry a semver "vers" and a boolean "yanked".
func ParseSparse(crate string, r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultMaxResponseBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var rec sparseRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, models.WrapError(models.KindParse, crate, err,
				"parsing index record %d for crate %s", line, crate)
		}

		entry, err := newEntry(crate, rec.Vers, rec.Yanked)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, models.WrapError(models.KindParse, crate, err, "reading index file for crate %s", crate)
	}

	return entries, nil
}

// ParseAPI parses a crates.io API crate document.
func ParseAPI(crate string, data []byte) (*Listing, error) {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, models.WrapError(models.KindParse, crate, err, "parsing API response for crate %s", crate)
	}
	if resp.Crate == nil || resp.Versions == nil {
		return nil, models.NewError(models.KindParse, crate,
			"parsing API response for crate %s: missing crate or versions", crate)
	}

	listing := &Listing{Entries: make([]Entry, 0, len(resp.Versions))}
	for _, v := range resp.Versions {
		entry, err := newEntry(crate, v.Num, v.Yanked)
		if err != nil {
			return nil, err
		}
		listing.Entries = append(listing.Entries, entry)
	}

	// crates.io reports null for crates that only have pre-releases.
	if mv := resp.Crate.MaxStableVersion; mv != nil {
		v, err := semver.StrictNewVersion(*mv)
		if err != nil {
			return nil, models.WrapError(models.KindParse, crate, err,
				"invalid max_stable_version %q for crate %s", *mv, crate)
		}
		listing.MaxStable = v
	}

	return listing, nil
}

func newEntry(crate string, vers *string, yanked *bool) (Entry, error) {
	if vers == nil {
		return Entry{}, models.NewError(models.KindParse, crate, "index record for crate %s has no version", crate)
	}
	if yanked == nil {
		return Entry{}, models.NewError(models.KindParse, crate,
			"index record %s for crate %s has no yanked flag", *vers, crate)
	}

	v, err := semver.StrictNewVersion(*vers)
	if err != nil {
		return Entry{}, models.WrapError(models.KindParse, crate, err,
			"invalid semver version %q for crate %s", *vers, crate)
	}
	return Entry{Version: v, Yanked: *yanked}, nil
}

func fetch(ctx context.Context, client *http.Client, userAgent string, maxBytes int64, u, crate string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}
	maxBytes = min(maxBytes, math.MaxInt64-1)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, models.WrapError(models.KindFetch, crate, err, "creating request for crate %s", crate)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, models.WrapError(models.KindFetch, crate, err, "fetching crate %s", crate)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.NewError(models.KindNotFound, crate, "crate %s not found in index", crate)
	case resp.StatusCode != http.StatusOK:
		return nil, models.NewError(models.KindFetch, crate, "fetching crate %s: HTTP %d", crate, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, models.WrapError(models.KindFetch, crate, err, "reading response body for crate %s", crate)
	}
	if int64(len(data)) > maxBytes {
		return nil, models.NewError(models.KindFetch, crate,
			"response for crate %s exceeds %d bytes", crate, maxBytes)
	}

	return data, nil
}
