package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"yieldc/internal/driver"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] [file.ys|directory]...",
	Short: "Print source with iterator methods lowered to enumerator classes",
	Long: `Lower every iterator method of the given files (default: the project root).
The lowered units go to stdout, or to DIR/<name>.lowered.ys with --out`,
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("out", "", "write <name>.lowered.ys files into this directory")
}

func runLower(cmd *cobra.Command, args []string) error {
	st := current
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	paths, err := st.sources(args)
	if err != nil {
		return err
	}
	sess, err := driver.Lower(cmd.Context(), paths, st.driverOptions(true))
	if err != nil {
		return err
	}
	hasErrors, err := printDiagnostics(cmd.ErrOrStderr(), sess, st, diagOutput{withNotes: true})
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", outDir, err)
		}
	}
	stdout := cmd.OutOrStdout()
	for i, u := range sess.Units {
		if u.Text == nil {
			continue
		}
		if outDir == "" {
			if len(sess.Units) > 1 {
				if i > 0 {
					fmt.Fprintln(stdout)
				}
				fmt.Fprintf(stdout, "// %s\n", u.Path)
			}
			if _, err := stdout.Write(u.Text); err != nil {
				return err
			}
			continue
		}
		name := strings.TrimSuffix(filepath.Base(u.Path), driver.SourceExt) + ".lowered" + driver.SourceExt
		dst := filepath.Join(outDir, name)
		if err := os.WriteFile(dst, u.Text, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		if !st.quiet {
			note := ""
			if u.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s%s\n", dst, note)
		}
	}
	st.printTimings(cmd)
	if hasErrors {
		return exitCodeError{code: 1}
	}
	return nil
}
