package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yieldc/internal/config"
	"yieldc/internal/driver"
	"yieldc/internal/format"
	"yieldc/internal/iterlower"
	"yieldc/internal/logging"
	"yieldc/internal/observ"
	"yieldc/internal/prof"
)

// settings merges yieldc.toml with the command line; flags win.
type settings struct {
	cfg            *config.Config
	color          bool
	quiet          bool
	timings        bool
	noCache        bool
	maxDiagnostics int
	jobs           int
	dispose        iterlower.DisposeMode
	timer          *observ.Timer
	profile        *prof.Session
}

var current *settings

func setup(cmd *cobra.Command, _ []string) error {
	pf := cmd.Root().PersistentFlags()

	cfg, err := config.Discover(".")
	if err != nil {
		return err
	}
	st := &settings{cfg: cfg, jobs: cfg.Lower.Jobs, maxDiagnostics: cfg.Lower.MaxDiagnostics, dispose: cfg.Dispose()}

	colorFlag, err := pf.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		st.color = true
	case "off":
	case "auto":
		st.color = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	default:
		return fmt.Errorf("invalid --color %q (want auto, on or off)", colorFlag)
	}
	color.NoColor = !st.color

	if st.quiet, err = pf.GetBool("quiet"); err != nil {
		return err
	}
	if st.timings, err = pf.GetBool("timings"); err != nil {
		return err
	}
	if st.noCache, err = pf.GetBool("no-cache"); err != nil {
		return err
	}
	if pf.Changed("max-diagnostics") {
		if st.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	if pf.Changed("jobs") {
		if st.jobs, err = pf.GetInt("jobs"); err != nil {
			return err
		}
	}
	if pf.Changed("dispose") {
		raw, err := pf.GetString("dispose")
		if err != nil {
			return err
		}
		if st.dispose, err = iterlower.ParseDisposeMode(raw); err != nil {
			return err
		}
	}
	if st.timings {
		st.timer = observ.NewTimer()
	}

	level, err := pf.GetString("log-level")
	if err != nil {
		return err
	}
	if level != "" {
		l, err := logging.New(os.Stderr, level)
		if err != nil {
			return err
		}
		logging.SetLogger(l.Named("yieldc"))
	}
	var popts prof.Options
	if popts.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if popts.Mem, err = pf.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if popts.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if popts.Enabled() {
		if st.profile, err = prof.Start(popts); err != nil {
			return err
		}
	}
	current = st
	return nil
}

func stopProfiling() error {
	if current == nil {
		return nil
	}
	return current.profile.Stop()
}

// driverOptions: textOnly разрешает кэш (команды, которым не нужен AST).
func (st *settings) driverOptions(textOnly bool) driver.Options {
	opts := driver.Options{
		Jobs:           st.jobs,
		MaxDiagnostics: st.maxDiagnostics,
		Dispose:        st.dispose,
		Format:         format.Options{IndentWidth: st.cfg.Lower.IndentWidth, UseTabs: st.cfg.Lower.UseTabs},
		TextOnly:       textOnly,
		Timer:          st.timer,
	}
	if textOnly && !st.noCache {
		cache, err := driver.OpenDiskCache("yieldc")
		if err != nil {
			logging.Logger().Warn("disk cache unavailable: " + err.Error())
		} else {
			opts.Cache = cache
		}
	}
	return opts
}

// sources defaults to the project root (or the working directory).
func (st *settings) sources(args []string) ([]string, error) {
	if len(args) == 0 {
		root := st.cfg.Root
		if root == "" {
			root = "."
		}
		args = []string{root}
	}
	paths, err := driver.ListSources(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found", driver.SourceExt)
	}
	return paths, nil
}

func (st *settings) printTimings(cmd *cobra.Command) {
	if st.timer != nil && !st.quiet {
		fmt.Fprint(cmd.ErrOrStderr(), st.timer.Summary())
	}
}
