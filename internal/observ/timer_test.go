package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	done := tm.Track("parse")
	done("2 files")
	idx := tm.Begin("lower")
	tm.End(idx, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].Note != "2 files" || r.Phases[0].DurationMS != 1 {
		t.Fatalf("unexpected first phase %+v", r.Phases[0])
	}
	if r.TotalMS != 2 {
		t.Fatalf("total = %v", r.TotalMS)
	}
	s := tm.Summary()
	for _, want := range []string{"timings:", "parse", "// 2 files", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q:\n%s", want, s)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("y")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer recorded phases")
	}
}
