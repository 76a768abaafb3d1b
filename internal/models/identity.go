package models

import "time"

// Platform describes the machine a binary is built for.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
	// OSVersion is best effort; empty when it could not be determined.
	OSVersion string `json:"os_version"`
}

// BuildIdentity is everything that affects the output of a build.
type BuildIdentity struct {
	Crate   string
	Version ResolvedVersion
	// Features is a set; order is irrelevant.
	Features []string
	// Args are passed to the build command in order.
	Args          []string
	Platform      Platform
	Disambiguator string
}

// InstallSettings is where and how a crate gets installed.
type InstallSettings struct {
	Path     string   `json:"path"`
	CacheKey string   `json:"cache_key"`
	Args     []string `json:"args"`
}

// InstallResult is the outcome of one installation.
type InstallResult struct {
	Crate    string          `json:"crate"`
	Version  ResolvedVersion `json:"-"`
	Settings InstallSettings `json:"settings"`
	CacheHit bool            `json:"cache_hit"`
	Binaries []string        `json:"binaries"`
	Notices  []Notice        `json:"notices"`

	StartedAt time.Time        `json:"started_at"`
	EndedAt   time.Time        `json:"ended_at"`
	Durations InstallDurations `json:"durations"`
}

// InstallDurations are the phase durations of an installation in seconds.
// BuildSec is nil on a cache hit.
type InstallDurations struct {
	ResolveSec float64  `json:"resolve_sec"`
	RestoreSec float64  `json:"restore_sec"`
	BuildSec   *float64 `json:"build_sec,omitempty"`
	TotalSec   float64  `json:"total_sec"`
}
