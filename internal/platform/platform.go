// Package platform identifies the machine a crate is built on.
package platform

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spachava753/cargo-install/internal/models"
)

// Runner OS names, as reported by RUNNER_OS.
const (
	Linux   = "Linux"
	MacOS   = "macOS"
	Windows = "Windows"
)

var goosNames = map[string]string{
	"linux":   Linux,
	"darwin":  MacOS,
	"windows": Windows,
}

var goarchNames = map[string]string{
	"amd64": "X64",
	"386":   "X86",
	"arm64": "ARM64",
	"arm":   "ARM",
}

// Detect returns the OS and architecture of the runner. RUNNER_OS and
// RUNNER_ARCH take precedence over the values the binary was compiled for.
// OSVersion is left empty; see Prober.
func Detect(getenv func(string) string) models.Platform {
	p := models.Platform{
		OS:   getenv("RUNNER_OS"),
		Arch: getenv("RUNNER_ARCH"),
	}
	if p.OS == "" {
		p.OS = goosNames[runtime.GOOS]
		if p.OS == "" {
			p.OS = runtime.GOOS
		}
	}
	if p.Arch == "" {
		p.Arch = goarchNames[runtime.GOARCH]
		if p.Arch == "" {
			p.Arch = strings.ToUpper(runtime.GOARCH)
		}
	}
	return p
}

// RunFunc runs a command and returns its standard output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober determines the OS version string of a platform.
type Prober struct {
	// FS is the root filesystem, used to read os-release on Linux.
	FS fs.FS
	// Run executes version query commands.
	Run RunFunc
}

// NewProber returns a Prober over the real root filesystem and processes.
func NewProber() *Prober {
	return &Prober{
		FS:  os.DirFS("/"),
		Run: runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// OSVersion returns the OS version of osName, e.g. "ubuntu-24.04", "14.5" or
// "10.0.20348.0". It never fails: when the version cannot be determined it
// returns "" and a notice.
func (p *Prober) OSVersion(ctx context.Context, osName string) (string, []models.Notice) {
	version, err := p.probe(ctx, osName)
	if err == nil && version == "" {
		err = errors.New("empty version")
	}
	if err != nil {
		slog.Debug("could not determine OS version", "os", osName, "error", err)
		return "", []models.Notice{
			models.Noticef(models.NoticeOSVersionUnknown, "Could not determine %s version: %v", osName, err),
		}
	}

	slog.Debug("detected OS version", "os", osName, "version", version)
	return version, nil
}

func (p *Prober) probe(ctx context.Context, osName string) (string, error) {
	switch osName {
	case Linux:
		return p.linuxVersion()
	case MacOS:
		out, err := p.Run(ctx, "sw_vers", "-productVersion")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(out)), nil
	case Windows:
		out, err := p.Run(ctx, "powershell", "-NoProfile", "-Command",
			"[System.Environment]::OSVersion.Version.ToString()")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(out)), nil
	default:
		return "", fmt.Errorf("unsupported OS %q", osName)
	}
}

func (p *Prober) linuxVersion() (string, error) {
	var errs []error
	for _, name := range []string{"etc/os-release", "usr/lib/os-release"} {
		data, err := fs.ReadFile(p.FS, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return ParseOSRelease(data)
	}
	return "", errors.Join(errs...)
}

// ParseOSRelease extracts "<ID>-<VERSION_ID>" from an os-release file.
// VERSION_ID is optional, as on rolling releases.
func ParseOSRelease(data []byte) (string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	id := fields["ID"]
	if id == "" {
		return "", errors.New("os-release has no ID")
	}
	if v := fields["VERSION_ID"]; v != "" {
		return id + "-" + v, nil
	}
	return id, nil
}
