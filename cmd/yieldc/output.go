package main

import (
	"fmt"
	"io"

	"yieldc/internal/diagfmt"
	"yieldc/internal/driver"
)

type diagOutput struct {
	format    diagfmt.Format
	withNotes bool
	fullPath  bool
}

// printDiagnostics выводит диагностики сессии и возвращает, были ли ошибки.
func printDiagnostics(w io.Writer, sess *driver.Session, st *settings, out diagOutput) (bool, error) {
	bag := sess.Diagnostics(st.maxDiagnostics)
	pathMode := diagfmt.PathModeAuto
	if out.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch out.format {
	case diagfmt.FormatJSON:
		err := diagfmt.JSON(w, bag, sess.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     out.withNotes,
		})
		if err != nil {
			return false, fmt.Errorf("encode diagnostics: %w", err)
		}
	case diagfmt.FormatShort:
		diagfmt.Short(w, bag, sess.FileSet, pathMode, "")
	default:
		diagfmt.Pretty(w, bag, sess.FileSet, diagfmt.PrettyOpts{
			Color:     st.color,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: out.withNotes,
		})
	}
	return sess.HasErrors(), nil
}
