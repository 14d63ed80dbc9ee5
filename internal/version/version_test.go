package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = v, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
		color.NoColor = origNoColor
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestBanner(t *testing.T) {
	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "yieldc 0.1.0-dev"},
		{"1.2.3", "abc123", "", "yieldc 1.2.3 (commit abc123)"},
		{"1.2.3-rc.1+build.123", "abc123", "2024-01-15", "yieldc 1.2.3-rc.1+build.123 (commit abc123) built 2024-01-15"},
		{"weird", "", "", "yieldc weird"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			withVersion(t, tt.version, tt.commit, tt.date)
			if got := Banner(); got != tt.want {
				t.Errorf("Banner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColoredKeepsDigits(t *testing.T) {
	withVersion(t, "2.0.0-alpha", "", "")
	color.NoColor = false
	got := Colored()
	if got == "2.0.0-alpha" {
		t.Fatalf("expected escape sequences when colour is on")
	}
	for _, want := range []string{"2", "0", "-alpha"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q lacks %q", got, want)
		}
	}
}
