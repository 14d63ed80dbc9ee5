package iterlower_test

import (
	"context"
	"slices"
	"testing"

	"yieldc/internal/vm"
)

const programs = `
namespace Demo;

class Seq {
    static List<int> log = new List<int>();

    static string Log() {
        var s = "";
        foreach (var x in log) { s = s + x + ","; }
        return s;
    }

    static IEnumerable<int> Squares(int n) {
        for (int i = 0; i < n; i++) yield return i * i;
    }

    static IEnumerable<int> Filter(int n) {
        int i = 0;
        while (true) {
            i++;
            if (i > n) break;
            if (i % 3 == 0) continue;
            yield return i;
        }
        yield return -1;
    }

    static IEnumerable<string> Pairs(int n) {
        var xs = new List<string>();
        xs.Add("a");
        xs.Add("b");
        for (int i = 0; i < n; i++) {
            foreach (var s in xs) {
                if (s == "b" && i == 1) continue;
                yield return s + i;
            }
        }
    }

    static IEnumerable<int> Guard(int n) {
        try {
            for (int i = 0; i < 10; i++) {
                if (i == n) yield break;
                yield return i;
            }
        } finally {
            log.Add(100);
        }
    }

    static IEnumerable<int> Collatz(int n) {
        do {
            yield return n;
            if (n % 2 == 0) { n = n / 2; } else if (n == 1) { yield break; } else { n = 3 * n + 1; }
        } while (n != 1);
        yield return n;
    }

    static IEnumerable<int> Mixed(int n) {
        for (int i = 0; i < n; i++) {
            int kind = i % 3;
            switch (kind) {
                case 0: kind = 10; break;
                case 1: continue;
                default: kind = 20; break;
            }
            if (kind == 10) yield return i; else { int j = i * kind; yield return j; }
        }
    }

    static IEnumerable<int> Nested() {
        try {
            yield return 1;
            try { yield return 2; } finally { log.Add(2); }
            yield return 3;
        } finally {
            log.Add(1);
        }
    }

    static IEnumerable<int> Twice(int n) {
        int offset = 10;
        for (int i = 0; i < n; i++) yield return i + offset;
        for (int j = 0; j < n; j++) yield return j * offset;
    }

    static IEnumerable<int> Nothing(bool stop) {
        if (stop) yield break;
        log.Add(7);
    }

    static IEnumerable<int> Boom() {
        try {
            yield return 1;
            throw new Exception("boom");
        } finally {
            log.Add(9);
        }
    }

    static IEnumerable<int> Chain(int n) {
        foreach (var x in Squares(n)) {
            if (x % 2 == 0) yield return x;
        }
        foreach (var y in Twice(1)) yield return y;
    }
}

class Counter {
    int step = 3;
    int Scale(int v) { return v * step; }
    IEnumerable<int> Multiples(int n) {
        for (var i = 1; i <= n; i++) yield return Scale(i) + this.step - step;
    }
}

class Gen<T> {
    static IEnumerable<U> Repeat<U>(U v, int n) {
        while (n > 0) { n--; yield return v; }
    }
}
`

func TestLoweredSequencesMatchEagerOracle(t *testing.T) {
	tests := []struct {
		method string
		args   []vm.Value
		want   []string
	}{
		{"Squares", []vm.Value{vm.MakeInt(3)}, []string{"0", "1", "4"}},
		{"Squares", []vm.Value{vm.MakeInt(0)}, []string{}},
		{"Filter", []vm.Value{vm.MakeInt(7)}, []string{"1", "2", "4", "5", "7", "-1"}},
		{"Pairs", []vm.Value{vm.MakeInt(2)}, []string{"a0", "b0", "a1"}},
		{"Guard", []vm.Value{vm.MakeInt(3)}, []string{"0", "1", "2"}},
		{"Collatz", []vm.Value{vm.MakeInt(6)}, []string{"6", "3", "10", "5", "16", "8", "4", "2", "1"}},
		{"Mixed", []vm.Value{vm.MakeInt(6)}, []string{"0", "40", "3", "100"}},
		{"Nested", nil, []string{"1", "2", "3"}},
		{"Twice", []vm.Value{vm.MakeInt(2)}, []string{"10", "11", "0", "10"}},
		{"Nothing", []vm.Value{vm.MakeBool(true)}, []string{}},
		{"Nothing", []vm.Value{vm.MakeBool(false)}, []string{}},
		{"Chain", []vm.Value{vm.MakeInt(4)}, []string{"0", "4", "10", "0"}},
	}
	low, _ := lowered(t, programs)
	oracle := eager(t, programs)
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := collect(t, low, "Seq", tt.method, tt.args...)
			want := collect(t, oracle, "Seq", tt.method, tt.args...)
			if !slices.Equal(got, want) {
				t.Fatalf("lowered %v, eager %v", got, want)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

const exits = `
class Exit {
    static List<int> log = new List<int>();

    static string Log() {
        var s = "";
        foreach (var x in log) { s = s + x + ","; }
        return s;
    }

    static IEnumerable<int> Source(int n) {
        try {
            for (int i = 0; i < n; i++) yield return i;
        } finally {
            log.Add(100);
        }
    }

    static IEnumerable<int> StopInside() {
        try {
            yield return 1;
            try { yield break; } finally { log.Add(1); }
        } finally {
            log.Add(2);
        }
    }

    static IEnumerable<int> StopTwoDeep() {
        try {
            yield return 1;
            try {
                try { yield break; } finally { log.Add(1); }
            } finally {
                log.Add(2);
            }
        } finally {
            log.Add(3);
        }
    }

    static IEnumerable<int> BreakInside(int n) {
        for (int i = 0; i < n; i++) {
            try {
                yield return i;
                try { if (i == 1) break; } finally { log.Add(10 + i); }
            } finally {
                log.Add(20 + i);
            }
        }
        log.Add(50);
    }

    static IEnumerable<int> ContinueInside(int n) {
        for (int i = 0; i < n; i++) {
            try {
                yield return i;
                try { if (i % 2 == 0) continue; } finally { log.Add(10 + i); }
                yield return -i;
            } finally {
                log.Add(20 + i);
            }
        }
    }

    static IEnumerable<int> StopInLoop() {
        try {
            yield return 0;
            int k = 0;
            while (true) {
                try {
                    k++;
                    if (k == 2) yield break;
                } finally {
                    log.Add(k);
                }
            }
        } finally {
            log.Add(9);
        }
    }

    static IEnumerable<int> StopWithCatch() {
        try {
            yield return 1;
            try {
                yield break;
            } catch (Exception e) {
                log.Add(-1);
            } finally {
                log.Add(1);
            }
        } finally {
            log.Add(2);
        }
    }

    static IEnumerable<int> StopInForeach() {
        try {
            foreach (var x in Source(5)) {
                try { if (x == 2) yield break; } finally { log.Add(10 + x); }
                yield return x;
            }
        } finally {
            log.Add(7);
        }
    }
}
`

func TestEarlyExitRunsCleanupInnermostFirst(t *testing.T) {
	tests := []struct {
		method string
		args   []vm.Value
		want   []string
		log    string
	}{
		{"StopInside", nil, []string{"1"}, "1,2,"},
		{"StopTwoDeep", nil, []string{"1"}, "1,2,3,"},
		{"BreakInside", []vm.Value{vm.MakeInt(3)}, []string{"0", "1"}, "10,20,11,21,50,"},
		{"ContinueInside", []vm.Value{vm.MakeInt(2)}, []string{"0", "1", "-1"}, "10,20,11,21,"},
		{"StopInLoop", nil, []string{"0"}, "1,2,9,"},
		{"StopWithCatch", nil, []string{"1"}, "1,2,"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			// свежие машины: журнал общий для всех методов класса
			low, _ := lowered(t, exits)
			oracle := eager(t, exits)
			got := collect(t, low, "Exit", tt.method, tt.args...)
			want := collect(t, oracle, "Exit", tt.method, tt.args...)
			if !slices.Equal(got, want) || !slices.Equal(got, tt.want) {
				t.Fatalf("lowered %v, eager %v, want %v", got, want, tt.want)
			}
			gotLog := staticCall(t, low, "Exit", "Log").String()
			wantLog := staticCall(t, oracle, "Exit", "Log").String()
			if gotLog != wantLog || gotLog != tt.log {
				t.Fatalf("lowered log %q, eager log %q, want %q", gotLog, wantLog, tt.log)
			}
		})
	}
}

// The eager oracle runs Source to completion when it is called, so the
// order of its cleanup is checked against the lazy order directly.
func TestEarlyExitDisposesForeachSource(t *testing.T) {
	machine, _ := lowered(t, exits)
	got := collect(t, machine, "Exit", "StopInForeach")
	if !slices.Equal(got, []string{"0", "1"}) {
		t.Fatalf("got %v", got)
	}
	if log := staticCall(t, machine, "Exit", "Log").String(); log != "10,11,12,100,7," {
		t.Fatalf("log = %q, want inner finally, source dispose, outer finally", log)
	}
}

func TestConstructionRunsNoSourceCode(t *testing.T) {
	machine, _ := lowered(t, programs)
	seq := staticCall(t, machine, "Seq", "Nothing", vm.MakeBool(false))
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "" {
		t.Fatalf("body ran before MoveNext: log=%q", got)
	}
	en := call(t, machine, seq, "GetEnumerator")
	if moveNext(t, machine, en) {
		t.Fatalf("Nothing produced a value")
	}
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "7," {
		t.Fatalf("log = %q, want 7,", got)
	}
}

func TestDisposeRunsCleanupOnce(t *testing.T) {
	machine, _ := lowered(t, programs)
	en := call(t, machine, staticCall(t, machine, "Seq", "Guard", vm.MakeInt(5)), "GetEnumerator")
	if !moveNext(t, machine, en) || current(t, machine, en) != "0" {
		t.Fatalf("first MoveNext should produce 0")
	}
	call(t, machine, en, "Dispose")
	call(t, machine, en, "Dispose")
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "100," {
		t.Fatalf("log = %q, want the finally block exactly once", got)
	}
	if moveNext(t, machine, en) {
		t.Fatalf("MoveNext after Dispose must return false")
	}
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "100," {
		t.Fatalf("MoveNext after Dispose ran code: log = %q", got)
	}
}

func TestDisposeRunsNestedFinallyInnermostFirst(t *testing.T) {
	machine, _ := lowered(t, programs)
	en := call(t, machine, staticCall(t, machine, "Seq", "Nested"), "GetEnumerator")
	moveNext(t, machine, en)
	moveNext(t, machine, en)
	if current(t, machine, en) != "2" {
		t.Fatalf("expected to be suspended at 2")
	}
	call(t, machine, en, "Dispose")
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "2,1," {
		t.Fatalf("log = %q, want 2,1,", got)
	}
}

func TestDisposeBeforeStartAndAfterExhaustion(t *testing.T) {
	machine, _ := lowered(t, programs)
	fresh := call(t, machine, staticCall(t, machine, "Seq", "Guard", vm.MakeInt(1)), "GetEnumerator")
	call(t, machine, fresh, "Dispose")
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "" {
		t.Fatalf("Dispose before start ran cleanup: %q", got)
	}

	en := call(t, machine, staticCall(t, machine, "Seq", "Guard", vm.MakeInt(1)), "GetEnumerator")
	for moveNext(t, machine, en) {
	}
	for i := 0; i < 3; i++ {
		if moveNext(t, machine, en) {
			t.Fatalf("MoveNext after exhaustion returned true")
		}
	}
	call(t, machine, en, "Dispose")
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "100," {
		t.Fatalf("log = %q, want exactly one cleanup", got)
	}
}

func TestExceptionInsideRegionDisposesAndPropagates(t *testing.T) {
	machine, _ := lowered(t, programs)
	seq := staticCall(t, machine, "Seq", "Boom")
	_, err := machine.Collect(context.Background(), seq, 0)
	vmErr, ok := err.(*vm.VMError)
	if !ok || !vmErr.IsThrow() || vmErr.Thrown.Message() != "boom" {
		t.Fatalf("expected thrown boom, got %v", err)
	}
	if got := staticCall(t, machine, "Seq", "Log").String(); got != "9," {
		t.Fatalf("log = %q, want the finally block exactly once", got)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	machine, _ := lowered(t, programs)
	a := call(t, machine, staticCall(t, machine, "Seq", "Squares", vm.MakeInt(4)), "GetEnumerator")
	b := call(t, machine, staticCall(t, machine, "Seq", "Squares", vm.MakeInt(4)), "GetEnumerator")
	moveNext(t, machine, a)
	moveNext(t, machine, a)
	moveNext(t, machine, a)
	moveNext(t, machine, b)
	if current(t, machine, a) != "4" || current(t, machine, b) != "0" {
		t.Fatalf("instances share state: a=%s b=%s", current(t, machine, a), current(t, machine, b))
	}
}

func TestInstanceIteratorUsesEnclosingObject(t *testing.T) {
	machine, _ := lowered(t, programs)
	ctx := context.Background()
	obj, err := machine.NewObject(ctx, "Counter")
	if err != nil {
		t.Fatalf("new Counter: %v", err)
	}
	seq := call(t, machine, obj, "Multiples", vm.MakeInt(3))
	vals, err := machine.Collect(ctx, seq, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var got []string
	for _, v := range vals {
		got = append(got, v.String())
	}
	if !slices.Equal(got, []string{"3", "6", "9"}) {
		t.Fatalf("got %v", got)
	}
}

func TestGenericIterator(t *testing.T) {
	machine, _ := lowered(t, programs)
	got := collect(t, machine, "Gen", "Repeat", vm.MakeString("x"), vm.MakeInt(2))
	if !slices.Equal(got, []string{"x", "x"}) {
		t.Fatalf("got %v", got)
	}
}

func TestForeachOverLoweredIteratorInSourceCode(t *testing.T) {
	machine, out := lowered(t, `
class P {
    static IEnumerable<int> Evens(int n) {
        for (int i = 0; i < n; i++) { if (i % 2 == 0) yield return i; }
    }
    static void Main() {
        int total = 0;
        foreach (var e in Evens(7)) { total += e; Console.WriteLine(e); }
        Console.WriteLine("total " + total);
    }
}`)
	if err := machine.Run(context.Background(), "P.Main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "0\n2\n4\n6\ntotal 12\n" {
		t.Fatalf("output = %q", out.String())
	}
}
