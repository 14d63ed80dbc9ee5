package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yieldc/internal/diagfmt"
	"yieldc/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.ys|directory]...",
	Short: "Report diagnostics without printing lowered code",
	Long:  `Parse, check and lower the given files (default: the project root) and print only the diagnostics`,
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runDiag(cmd *cobra.Command, args []string) error {
	st := current
	rawFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	out := diagOutput{}
	if out.format, err = diagfmt.ParseFormat(rawFormat); err != nil {
		return err
	}
	if out.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return err
	}
	if out.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return err
	}

	paths, err := st.sources(args)
	if err != nil {
		return err
	}
	sess, err := driver.Lower(cmd.Context(), paths, st.driverOptions(true))
	if err != nil {
		return err
	}
	hasErrors, err := printDiagnostics(cmd.OutOrStdout(), sess, st, out)
	if err != nil {
		return err
	}
	if !st.quiet && out.format == diagfmt.FormatPretty {
		iters, failed := 0, 0
		for _, u := range sess.Units {
			iters += u.Iterators
			failed += u.Failed
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %d iterators, %d not lowered\n", len(sess.Units), iters, failed)
	}
	st.printTimings(cmd)
	if hasErrors {
		return exitCodeError{code: 1}
	}
	return nil
}
