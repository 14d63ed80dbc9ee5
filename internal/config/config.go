// Package config loads yieldc.toml, the optional project file that supplies
// defaults for the command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"yieldc/internal/iterlower"
)

// FileName is looked up in the start directory and its parents.
const FileName = "yieldc.toml"

// Config is the decoded project file. Path and Root are empty when no file
// was found.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Project ProjectSection `toml:"project"`
	Lower   LowerSection   `toml:"lower"`
	Run     RunSection     `toml:"run"`
}

type ProjectSection struct {
	Name string `toml:"name"`
}

type LowerSection struct {
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	EmitDispose    string `toml:"emit_dispose"` // auto | always
	IndentWidth    int    `toml:"indent_width"`
	UseTabs        bool   `toml:"use_tabs"`
}

type RunSection struct {
	Entry    string `toml:"entry"` // Class.Method
	MaxSteps int    `toml:"max_steps"`
}

// Default is the configuration used without a project file.
func Default() *Config {
	return &Config{
		Lower: LowerSection{MaxDiagnostics: 100, EmitDispose: "auto", IndentWidth: 4},
		Run:   RunSection{MaxSteps: 10_000_000},
	}
}

// Dispose returns the parsed emit_dispose mode.
func (c *Config) Dispose() iterlower.DisposeMode {
	mode, err := iterlower.ParseDisposeMode(c.Lower.EmitDispose)
	if err != nil {
		return iterlower.DisposeAuto
	}
	return mode
}

// Find walks up from startDir to locate yieldc.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
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

// Load decodes path over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Discover loads the nearest yieldc.toml above startDir, or the defaults.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if _, err := iterlower.ParseDisposeMode(c.Lower.EmitDispose); err != nil {
		return fmt.Errorf("[lower].emit_dispose: %w", err)
	}
	switch {
	case c.Lower.Jobs < 0:
		return errors.New("[lower].jobs must not be negative")
	case c.Lower.MaxDiagnostics < 0:
		return errors.New("[lower].max_diagnostics must not be negative")
	case c.Lower.IndentWidth < 0 || c.Lower.IndentWidth > 16:
		return errors.New("[lower].indent_width must be between 0 and 16")
	case c.Run.MaxSteps < 0:
		return errors.New("[run].max_steps must not be negative")
	}
	if e := c.Run.Entry; e != "" && !strings.Contains(e, ".") {
		return fmt.Errorf("[run].entry %q must look like Class.Method", e)
	}
	return nil
}
