package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yieldc/internal/config"
	"yieldc/internal/iterlower"
)

func write(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, root, `
[project]
name = "demo"

[lower]
jobs = 3
emit_dispose = "always"

[run]
entry = "Program.Main"
max_steps = 5000
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Project.Name != "demo" || cfg.Lower.Jobs != 3 || cfg.Run.Entry != "Program.Main" || cfg.Run.MaxSteps != 5000 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Dispose() != iterlower.DisposeAlways {
		t.Fatalf("dispose = %v", cfg.Dispose())
	}
	// значения по умолчанию сохраняются для ключей, которых нет в файле
	if cfg.Lower.MaxDiagnostics != 100 || cfg.Lower.IndentWidth != 4 {
		t.Fatalf("defaults lost: %+v", cfg.Lower)
	}
	if want, _ := filepath.Abs(root); cfg.Root != want {
		t.Fatalf("root = %s, want %s", cfg.Root, want)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := config.Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Dispose() != iterlower.DisposeAuto {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"syntax", "[lower\n", "failed to parse TOML"},
		{"unknown key", "[lower]\nthreads = 2\n", "unknown keys: lower.threads"},
		{"dispose", "[lower]\nemit_dispose = \"never\"\n", "emit_dispose"},
		{"jobs", "[lower]\njobs = -1\n", "jobs must not be negative"},
		{"entry", "[run]\nentry = \"Main\"\n", "Class.Method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := write(t, t.TempDir(), tt.content)
			_, err := config.Load(p)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
