package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"yieldc/internal/ast"
	"yieldc/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed unit:
// 1) every source class span is non-empty, points at sf and ends within its content
// 2) every member span is non-empty and contained in its class span
// 3) every non-empty statement span inside a body is contained in the member span
//
// Generated classes and statements with empty spans are synthesized and skipped.
func CheckSpanInvariants(u *ast.Unit, sf *source.File) error {
	if u == nil || sf == nil {
		return fmt.Errorf("nil unit or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	for _, c := range u.Types {
		if c.Generated {
			continue
		}
		if c.Span.End <= c.Span.Start {
			return fmt.Errorf("class %s: empty span %v", c.Name, c.Span)
		}
		if c.Span.File != sf.ID {
			return fmt.Errorf("class %s: span points to different file id: got=%d want=%d", c.Name, c.Span.File, sf.ID)
		}
		if c.Span.End > lenContent {
			return fmt.Errorf("class %s: span end beyond content: %d > %d", c.Name, c.Span.End, lenContent)
		}

		for _, f := range c.Fields {
			if err := member(c, "field "+f.Name, f.Span); err != nil {
				return err
			}
		}
		for i, ctor := range c.Ctors {
			name := fmt.Sprintf("ctor #%d", i)
			if err := member(c, name, ctor.Span); err != nil {
				return err
			}
			if err := body(c, name, ctor.Span, ctor.Body); err != nil {
				return err
			}
		}
		for _, m := range c.Methods {
			if err := member(c, "method "+m.Name, m.Span); err != nil {
				return err
			}
			if err := body(c, "method "+m.Name, m.Span, m.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func member(c *ast.ClassDecl, what string, sp source.Span) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("class %s: %s has empty span %v", c.Name, what, sp)
	}
	if !contains(c.Span, sp) {
		return fmt.Errorf("class %s: %s span %v escapes class span %v", c.Name, what, sp, c.Span)
	}
	return nil
}

func body(c *ast.ClassDecl, what string, outer source.Span, s *ast.Stmt) error {
	var bad *ast.Stmt
	ast.Inspect(s, ast.Visitor{OnStmt: func(st *ast.Stmt) bool {
		if bad != nil {
			return false
		}
		if st.Span.Empty() {
			return true
		}
		if !contains(outer, st.Span) {
			bad = st
			return false
		}
		return true
	}})
	if bad != nil {
		return fmt.Errorf("class %s: %s statement %s span %v escapes %v", c.Name, what, bad.Kind, bad.Span, outer)
	}
	return nil
}

func contains(outer, inner source.Span) bool {
	return inner.File == outer.File && inner.Start >= outer.Start && inner.End <= outer.End
}
