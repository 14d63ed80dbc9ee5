package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"yieldc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "yieldc",
	Short: "Iterator state-machine lowering",
	Long: `yieldc rewrites iterator methods (methods using yield return / yield break)
into explicit enumerator classes and can run the result on a reference interpreter`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return stopProfiling()
	},
}

// exitCodeError завершает процесс с кодом без печати сообщения:
// диагностики к этому моменту уже выведены.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.Int("jobs", 0, "max parallel workers (0=auto)")
	pf.String("log-level", "", "enable debug logging to stderr (debug|info|warn|error)")
	pf.Bool("no-cache", false, "disable the on-disk cache of lowered output")
	pf.String("dispose", "", "Dispose emission for iterators without cleanup (auto|always)")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write runtime trace to file")
}

func main() {
	err := rootCmd.Execute()
	// PostRun не вызывается, если команда вернула ошибку
	if stopErr := stopProfiling(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "profiling:", stopErr)
	}
	if err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
