package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a decoded opp.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// Config mirrors the sections of opp.toml. Every key is optional.
type Config struct {
	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
	Build  BuildConfig  `toml:"build"`
}

type CheckConfig struct {
	MaxDiagnostics int  `toml:"max_diagnostics"`
	RequireEntry   bool `toml:"require_entry"`
	Validate       bool `toml:"validate"`
}

type OutputConfig struct {
	Format  string `toml:"format"` // pretty|plain|short|json
	Color   string `toml:"color"`  // auto|on|off
	Context int    `toml:"context"`
	Notes   bool   `toml:"notes"`
	Sort    bool   `toml:"sort"`
}

type BuildConfig struct {
	Jobs     int    `toml:"jobs"`
	Cache    bool   `toml:"cache"`
	CacheDir string `toml:"cache_dir"`
}

// Load finds and decodes the manifest governing start. ok is false when
// no opp.toml exists above start.
func Load(start string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(start)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = LoadFile(path)
	return m, true, err
}

// LoadFile decodes and validates the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
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
	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// IsSet reports whether the manifest defines the key, e.g. IsSet("build", "jobs").
func (m *Manifest) IsSet(key ...string) bool {
	return m != nil && m.meta.IsDefined(key...)
}

// CacheDir resolves [build].cache_dir relative to the project root.
func (m *Manifest) CacheDir() string {
	dir := strings.TrimSpace(m.Config.Build.CacheDir)
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

func (m *Manifest) validate() error {
	var errs []error
	c := m.Config
	if m.IsSet("check", "max_diagnostics") && c.Check.MaxDiagnostics <= 0 {
		errs = append(errs, fmt.Errorf("[check].max_diagnostics must be positive, got %d", c.Check.MaxDiagnostics))
	}
	if m.IsSet("output", "format") {
		switch c.Output.Format {
		case "pretty", "plain", "short", "json":
		default:
			errs = append(errs, fmt.Errorf("[output].format must be pretty|plain|short|json, got %q", c.Output.Format))
		}
	}
	if m.IsSet("output", "color") {
		switch c.Output.Color {
		case "auto", "on", "off":
		default:
			errs = append(errs, fmt.Errorf("[output].color must be auto|on|off, got %q", c.Output.Color))
		}
	}
	if m.IsSet("output", "context") && (c.Output.Context < 0 || c.Output.Context > 10) {
		errs = append(errs, fmt.Errorf("[output].context must be in 0..10, got %d", c.Output.Context))
	}
	if m.IsSet("build", "jobs") && c.Build.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[build].jobs must not be negative, got %d", c.Build.Jobs))
	}
	return errors.Join(errs...)
}
