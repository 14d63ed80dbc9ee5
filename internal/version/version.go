package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the yieldc CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI. It also keys the lowering cache.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored раскрашивает major.minor.patch; суффикс после '-' или '+' остаётся как есть.
// Подчиняется color.NoColor.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(Version, "-+"); i >= 0 {
		core, suffix = Version[:i], Version[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Banner is the text printed by `yieldc version`.
func Banner() string {
	var sb strings.Builder
	sb.WriteString("yieldc ")
	sb.WriteString(Colored())
	if GitCommit != "" {
		sb.WriteString(" (commit ")
		sb.WriteString(GitCommit)
		sb.WriteByte(')')
	}
	if BuildDate != "" {
		sb.WriteString(" built ")
		sb.WriteString(BuildDate)
	}
	return sb.String()
}
