package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const program = `class Program {
    static IEnumerable<int> Evens(int n) {
        for (int i = 0; i < n; i++) {
            if (i % 2 == 0) yield return i;
        }
    }

    static void Main() {
        foreach (var e in Evens(5)) Console.WriteLine(e);
    }
}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--color", "off", "--no-cache"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags возвращает флаги к значениям по умолчанию: rootCmd общий для всех тестов.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLowerCommand(t *testing.T) {
	src := writeSource(t, "prog.ys", program)
	out, _, err := execute(t, "lower", src)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, want := range []string{"class YieldEnumerator$Program$Evens$int : System.YieldIterator<int>", "return new YieldEnumerator$Program$Evens$int(n);"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	dir := t.TempDir()
	if _, _, err := execute(t, "lower", "--out", dir, "--quiet", src); err != nil {
		t.Fatalf("lower --out: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "prog.lowered.ys")); err != nil {
		t.Fatalf("lowered file not written: %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	src := writeSource(t, "prog.ys", program)
	for _, extra := range [][]string{nil, {"--eager"}} {
		args := append([]string{"run", "--entry", "Program.Main"}, extra...)
		out, _, err := execute(t, append(args, src)...)
		if err != nil {
			t.Fatalf("run %v: %v", extra, err)
		}
		if out != "0\n2\n4\n" {
			t.Fatalf("run %v output = %q", extra, out)
		}
	}
}

func TestDiagCommandExitCode(t *testing.T) {
	src := writeSource(t, "bad.ys", "class B { static IEnumerable<int> M(ref int x) { yield return x; } }\n")
	out, _, err := execute(t, "diag", "--format", "short", src)
	var exit exitCodeError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("err = %v, want exit code 1", err)
	}
	if !strings.HasPrefix(out, "bad.ys:1:") || !strings.Contains(out, "ERROR ITR5001:") {
		t.Fatalf("output = %q", out)
	}
}

func TestStatesCommand(t *testing.T) {
	src := writeSource(t, "prog.ys", program)
	out, _, err := execute(t, "states", src)
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	if !strings.Contains(out, "Program.Evens -> YieldEnumerator$Program$Evens$int") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if payload.Tool != "yieldc" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestProfilingFlags(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.out")
	mem := filepath.Join(dir, "mem.out")
	src := writeSource(t, "prog.ys", program)
	if _, _, err := execute(t, "--cpu-profile", cpu, "--mem-profile", mem, "lower", src); err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, p := range []string{cpu, mem} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Fatalf("profile %s not written: %v", filepath.Base(p), err)
		}
	}
}
