// Package config resolves run settings from defaults, environment variables
// and command-line arguments.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/StinkyLord/spdx-update/internal/fetch"
	"github.com/StinkyLord/spdx-update/internal/output"
)

// FloatingRef is the branch used when no tag is given. Its content changes
// over time, so pinned tags are preferred for reproducible output.
const FloatingRef = "main"

// ErrUsage matches every command-line usage error.
var ErrUsage = errors.New("usage error")

// Config holds the settings for one run.
type Config struct {
	// Ref is the upstream tag (e.g. "v3.24") or FloatingRef.
	Ref string
	// Floating is true when Ref was not pinned by the caller.
	Floating bool

	// MirrorURL is the base URL of the license-list-data mirror.
	// Env: SPDX_MIRROR_URL. Defaults to fetch.DefaultBaseURL.
	MirrorURL string

	// Timeout bounds each document request. Env: SPDX_FETCH_TIMEOUT. Defaults to 30s.
	Timeout time.Duration

	// Output is the artifact path, "-" for stdout. Env: SPDX_UPDATE_OUTPUT.
	// Defaults to "identifiers.go".
	Output string

	// Format is output.FormatGo or output.FormatJSON.
	Format string

	// Package is the package clause of the generated Go file.
	Package string

	// AliasesFile replaces the embedded imprecise-name table when set.
	AliasesFile string

	Debug bool
}

// Defaults returns the built-in settings, before the environment is applied.
func Defaults() Config {
	return Config{
		Ref:       FloatingRef,
		Floating:  true,
		MirrorURL: fetch.DefaultBaseURL,
		Timeout:   30 * time.Second,
		Output:    "identifiers.go",
		Format:    output.FormatGo,
		Package:   "spdx",
	}
}

// Load returns Defaults with environment overrides applied.
func Load() (Config, error) {
	cfg := Defaults()
	cfg.MirrorURL = getEnv("SPDX_MIRROR_URL", cfg.MirrorURL)
	cfg.Output = getEnv("SPDX_UPDATE_OUTPUT", cfg.Output)

	if v := os.Getenv("SPDX_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SPDX_FETCH_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid SPDX_FETCH_TIMEOUT %q: must be positive", v)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Validate checks settings that flags or the environment may have broken.
func (c Config) Validate() error {
	switch c.Format {
	case output.FormatGo, output.FormatJSON:
	default:
		return fmt.Errorf("%w: unsupported format %q (supported: %s, %s)", ErrUsage, c.Format, output.FormatGo, output.FormatJSON)
	}
	if c.MirrorURL == "" {
		return fmt.Errorf("%w: mirror URL must not be empty", ErrUsage)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output path must not be empty", ErrUsage)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrUsage)
	}
	return nil
}

var tagPattern = regexp.MustCompile(`^v[0-9][0-9A-Za-z.\-]*$`)

// ParseRef interprets the positional arguments: none selects FloatingRef,
// a single v<version> tag pins it. Anything else is a usage error.
func ParseRef(args []string) (ref string, floating bool, err error) {
	switch len(args) {
	case 0:
		return FloatingRef, true, nil
	case 1:
		if !tagPattern.MatchString(args[0]) {
			return "", false, fmt.Errorf("%w: unknown argument %q (expected a tag like v3.24)", ErrUsage, args[0])
		}
		return args[0], false, nil
	default:
		return "", false, fmt.Errorf("%w: unexpected arguments %q", ErrUsage, args[1:])
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
