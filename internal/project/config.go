// Package project locates and loads mergelint.toml, the per-project
// configuration for the template analyzer.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the manifest file looked up from the working directory
// upwards.
const ConfigFileName = "mergelint.toml"

// Config carries the analyzer settings from mergelint.toml. Zero or missing
// fields fall back to the defaults.
type Config struct {
	// ContextPadding is the number of context bytes shown on each side of a
	// warning location.
	ContextPadding int `toml:"context_padding"`
	// Gated skips directive checks on files whose braces do not balance.
	Gated bool `toml:"gated"`
	// Extensions lists the template file extensions picked up when a
	// directory is analyzed.
	Extensions []string `toml:"extensions"`
	// MaxDiagnostics caps the number of diagnostics collected per run.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// DefaultConfig returns the settings used when no mergelint.toml exists.
func DefaultConfig() Config {
	return Config{
		ContextPadding: 35,
		Gated:          false,
		Extensions:     []string{".tpl", ".mrg", ".txt"},
		MaxDiagnostics: 100,
	}
}

// Load parses a mergelint.toml file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return normalize(cfg, path)
}

func normalize(cfg Config, path string) (Config, error) {
	def := DefaultConfig()
	if cfg.ContextPadding < 0 {
		return Config{}, fmt.Errorf("%s: context_padding must not be negative", path)
	}
	if cfg.ContextPadding == 0 {
		cfg.ContextPadding = def.ContextPadding
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = def.MaxDiagnostics
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return Config{}, fmt.Errorf("%s: empty entry in extensions", path)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	return cfg, nil
}

// MatchesExtension reports whether path has one of the configured template
// extensions.
func (c Config) MatchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range c.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FindConfig walks up from startDir to locate mergelint.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing mergelint.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// Resolve loads the configuration governing startDir: the nearest
// mergelint.toml up the directory tree, or the defaults when none exists.
func Resolve(startDir string) (Config, string, error) {
	manifestPath, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(manifestPath)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, manifestPath, nil
}

// StarterConfig is the mergelint.toml written by the init command.
const StarterConfig = `# mergelint configuration

# Bytes of context shown on each side of a warning location.
context_padding = 35

# Skip directive checks when braces do not balance.
gated = false

# Template extensions picked up when analyzing a directory.
extensions = [".tpl", ".mrg", ".txt"]

# Cap on diagnostics collected per run.
max_diagnostics = 100
`
