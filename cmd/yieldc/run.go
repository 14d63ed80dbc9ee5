package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"yieldc/internal/driver"
	"yieldc/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.ys>",
	Short: "Lower a file and execute a static entry method",
	Long:  `Lower the file, then run the entry method (Class.Method) on the reference interpreter`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().String("entry", "", "entry method as Class.Method (default: [run].entry or Program.Main)")
	runCmd.Flags().Int("max-steps", 0, "statement budget for the interpreter (default: [run].max_steps)")
	runCmd.Flags().Bool("eager", false, "do not lower; evaluate iterators eagerly")
}

func runExecution(cmd *cobra.Command, args []string) error {
	st := current
	entry, err := cmd.Flags().GetString("entry")
	if err != nil {
		return fmt.Errorf("failed to get entry flag: %w", err)
	}
	if entry == "" {
		entry = st.cfg.Run.Entry
	}
	if entry == "" {
		entry = "Program.Main"
	}
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}
	if maxSteps == 0 {
		maxSteps = st.cfg.Run.MaxSteps
	}
	eager, err := cmd.Flags().GetBool("eager")
	if err != nil {
		return err
	}

	opts := st.driverOptions(false)
	opts.NoLower = eager
	sess, err := driver.Lower(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	hasErrors, err := printDiagnostics(cmd.ErrOrStderr(), sess, st, diagOutput{withNotes: true})
	if err != nil {
		return err
	}
	if hasErrors {
		return exitCodeError{code: 1}
	}
	done := st.timer.Track("run")
	machine, err := vm.New(sess.Units[0].AST, vm.Options{Stdout: cmd.OutOrStdout(), MaxSteps: maxSteps, Eager: eager})
	if err != nil {
		return err
	}
	err = machine.Run(cmd.Context(), entry)
	done(fmt.Sprintf("%d steps", machine.Steps()))
	st.printTimings(cmd)

	var vmErr *vm.VMError
	if errors.As(err, &vmErr) {
		fmt.Fprint(cmd.ErrOrStderr(), vmErr.FormatWithFiles(sess.FileSet))
		return exitCodeError{code: 2}
	}
	return err
}
