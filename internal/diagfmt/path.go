package diagfmt

import (
	"path/filepath"
	"strings"

	"yieldc/internal/source"
)

// autoPathLimit: длиннее этого абсолютные пути сокращаются до basename.
const autoPathLimit = 40

func displayPath(f *source.File, mode PathMode, baseDir string) string {
	p := f.Path
	switch mode {
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual == 0 {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
		}
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, p); err == nil && !strings.HasPrefix(rel, "..") {
				p = rel
			}
		}
	case PathModeBasename:
		p = filepath.Base(p)
	case PathModeAuto:
		if filepath.IsAbs(p) && len(p) > autoPathLimit {
			p = filepath.Base(p)
		}
	}
	return filepath.ToSlash(p)
}
