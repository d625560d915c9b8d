package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "gated = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if !cfg.Gated {
		t.Error("gated not applied")
	}
	if cfg.ContextPadding != def.ContextPadding {
		t.Errorf("context_padding = %d, want default %d", cfg.ContextPadding, def.ContextPadding)
	}
	if cfg.MaxDiagnostics != def.MaxDiagnostics {
		t.Errorf("max_diagnostics = %d, want default %d", cfg.MaxDiagnostics, def.MaxDiagnostics)
	}
	if len(cfg.Extensions) != len(def.Extensions) {
		t.Errorf("extensions = %v, want defaults", cfg.Extensions)
	}
}

func TestLoadNormalizesExtensions(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "extensions = [\"TPL\", \".Doc\"]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Extensions[0] != ".tpl" || cfg.Extensions[1] != ".doc" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
	if !cfg.MatchesExtension("letter.TPL") {
		t.Error("extension match should be case-insensitive")
	}
	if cfg.MatchesExtension("letter.rtf") {
		t.Error("unconfigured extension matched")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "contextpadding = 10\n")
	if _, err := Load(path); err == nil {
		t.Error("unknown key must be rejected")
	}
}

func TestLoadRejectsNegativePadding(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "context_padding = -1\n")
	if _, err := Load(path); err == nil {
		t.Error("negative context_padding must be rejected")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "gated = true\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("FindConfig: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %s, want file under %s", path, root)
	}

	projRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || projRoot != root {
		t.Errorf("FindProjectRoot = %q ok=%v err=%v, want %q", projRoot, ok, err, root)
	}
}

func TestResolveWithoutManifest(t *testing.T) {
	cfg, manifest, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if manifest != "" {
		t.Errorf("manifest = %q, want none", manifest)
	}
	if cfg.ContextPadding != DefaultConfig().ContextPadding {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestStarterConfigParses(t *testing.T) {
	path := writeConfig(t, t.TempDir(), StarterConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ContextPadding != 35 || cfg.Gated || cfg.MaxDiagnostics != 100 {
		t.Errorf("starter config = %+v", cfg)
	}
}

func TestCombineDeterministic(t *testing.T) {
	var a, b Digest
	a[0], b[0] = 1, 2
	first := Combine(a, b)
	second := Combine(a, b)
	if first != second {
		t.Error("Combine must be deterministic")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Error("argument order must matter")
	}
}
