package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"opp/internal/diagfmt"
	"opp/internal/project"
)

// settings are the effective options of one invocation: opp.toml values
// overridden by flags that were set explicitly.
type settings struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	format         diagfmt.Format
	context        int8
	notes          bool
	jobs           int
	cache          bool
	cacheDir       string
	ui             switchMode
	requireEntry   bool
	validate       bool
	sortDiags      bool
}

func (s settings) diagOptions() diagfmt.Options {
	return diagfmt.Options{
		Format:    s.format,
		Color:     s.color,
		Context:   s.context,
		ShowNotes: s.notes,
	}
}

// loadSettings reads the manifest governing start and layers the root
// persistent flags over it.
func loadSettings(cmd *cobra.Command, start string) (settings, error) {
	manifest, _, err := project.Load(start)
	if err != nil {
		return settings{}, err
	}
	return resolveSettings(cmd.Root().PersistentFlags(), manifest, isTerminal(os.Stdout))
}

func resolveSettings(flags *pflag.FlagSet, m *project.Manifest, tty bool) (settings, error) {
	var errs []string
	getString := func(name string) string {
		v, err := flags.GetString(name)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	getInt := func(name string) int {
		v, err := flags.GetInt(name)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	getBool := func(name string) bool {
		v, err := flags.GetBool(name)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	// флаг, заданный явно, важнее манифеста
	useManifest := func(flag string, key ...string) bool {
		return !flags.Changed(flag) && m.IsSet(key...)
	}

	st := settings{
		quiet:          getBool("quiet"),
		timings:        getBool("timings"),
		maxDiagnostics: getInt("max-diagnostics"),
		notes:          getBool("notes"),
		jobs:           getInt("jobs"),
		cache:          getBool("cache"),
		cacheDir:       getString("cache-dir"),
		requireEntry:   getBool("require-entry"),
		validate:       getBool("validate"),
		sortDiags:      getBool("sort-diagnostics"),
	}
	colorMode := getString("color")
	format := getString("format")
	context := getInt("context")
	ui := getString("ui")
	noCache := getBool("no-cache")
	if len(errs) > 0 {
		return settings{}, fmt.Errorf("failed to read flags: %s", strings.Join(errs, "; "))
	}

	if m != nil {
		c := m.Config
		if useManifest("max-diagnostics", "check", "max_diagnostics") {
			st.maxDiagnostics = c.Check.MaxDiagnostics
		}
		if useManifest("require-entry", "check", "require_entry") {
			st.requireEntry = c.Check.RequireEntry
		}
		if useManifest("validate", "check", "validate") {
			st.validate = c.Check.Validate
		}
		if useManifest("format", "output", "format") {
			format = c.Output.Format
		}
		if useManifest("color", "output", "color") {
			colorMode = c.Output.Color
		}
		if useManifest("context", "output", "context") {
			context = c.Output.Context
		}
		if useManifest("sort-diagnostics", "output", "sort") {
			st.sortDiags = c.Output.Sort
		}
		if useManifest("notes", "output", "notes") {
			st.notes = c.Output.Notes
		}
		if useManifest("jobs", "build", "jobs") {
			st.jobs = c.Build.Jobs
		}
		if useManifest("cache", "build", "cache") {
			st.cache = c.Build.Cache
		}
		if useManifest("cache-dir", "build", "cache_dir") {
			st.cacheDir = m.CacheDir()
		}
	}
	if noCache {
		st.cache = false
	}

	var err error
	if st.format, err = diagfmt.ParseFormat(format); err != nil {
		return settings{}, err
	}
	if st.color, err = colorEnabled(colorMode, tty); err != nil {
		return settings{}, err
	}
	if st.ui, err = parseSwitch("ui", ui); err != nil {
		return settings{}, err
	}
	if context < 0 || context > 10 {
		return settings{}, fmt.Errorf("invalid --context %d (expected 0..10)", context)
	}
	st.context = int8(context)
	if st.maxDiagnostics <= 0 {
		return settings{}, fmt.Errorf("invalid --max-diagnostics %d (must be positive)", st.maxDiagnostics)
	}
	return st, nil
}

// switchMode is the auto|on|off value of --color and --ui.
type switchMode uint8

const (
	switchAuto switchMode = iota
	switchOn
	switchOff
)

func parseSwitch(flag, value string) (switchMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on":
		return switchOn, nil
	case "off":
		return switchOff, nil
	default:
		return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// resolve asks detect only in auto mode.
func (m switchMode) resolve(detect func() bool) bool {
	switch m {
	case switchOn:
		return true
	case switchOff:
		return false
	default:
		return detect()
	}
}

// colorEnabled applies --color; auto honours NO_COLOR.
func colorEnabled(mode string, tty bool) (bool, error) {
	m, err := parseSwitch("color", mode)
	if err != nil {
		return false, err
	}
	return m.resolve(func() bool { return tty && os.Getenv("NO_COLOR") == "" }), nil
}

// useTUI reports whether progress goes to the interactive view.
func (s settings) useTUI() bool {
	return s.ui.resolve(func() bool { return isTerminal(os.Stdout) && isTerminal(os.Stderr) })
}
