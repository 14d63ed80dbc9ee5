package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yieldc/internal/driver"
	"yieldc/internal/ui"
)

var statesCmd = &cobra.Command{
	Use:   "states [flags] <file.ys>",
	Short: "Show the state graph of every iterator in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStates,
}

func init() {
	statesCmd.Flags().String("method", "", "only show iterators whose Class.Method matches")
}

func runStates(cmd *cobra.Command, args []string) error {
	st := current
	only, err := cmd.Flags().GetString("method")
	if err != nil {
		return fmt.Errorf("failed to get method flag: %w", err)
	}
	sess, err := driver.Lower(cmd.Context(), args, st.driverOptions(false))
	if err != nil {
		return err
	}
	hasErrors, err := printDiagnostics(cmd.ErrOrStderr(), sess, st, diagOutput{withNotes: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	shown := 0
	for _, u := range sess.Units {
		if u.Lowering == nil {
			continue
		}
		for _, l := range u.Lowering.Lowered {
			if only != "" && l.Method.QualifiedName() != only {
				continue
			}
			if shown > 0 {
				fmt.Fprintln(out)
			}
			if err := ui.WriteStates(out, l, st.color); err != nil {
				return err
			}
			shown++
		}
	}
	if shown == 0 && !st.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "no lowered iterators")
	}
	st.printTimings(cmd)
	if hasErrors {
		return exitCodeError{code: 1}
	}
	return nil
}
