package sema

import (
	"fmt"

	"fortio.org/safecast"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/source"
)

// scopeStack — стек лексических областей тела метода.
type scopeStack []map[string]ast.LocalID

func (s *scopeStack) push() {
	*s = append(*s, make(map[string]ast.LocalID))
}

func (s *scopeStack) pop() {
	*s = (*s)[:len(*s)-1]
}

// lookup ищет имя от внутренней области к внешней.
func (s scopeStack) lookup(name string) (ast.LocalID, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if id, ok := s[i][name]; ok {
			return id, true
		}
	}
	return ast.NoLocalID, false
}

func (tc *typeChecker) enterBody(params []*ast.Param, static bool) {
	tc.params = params
	tc.static = static
	tc.scopes = tc.scopes[:0]
	tc.loops = tc.loops[:0]
	tc.locals = nil
	tc.scopes.push()
}

func (tc *typeChecker) leaveBody() {
	tc.scopes = tc.scopes[:0]
	tc.params = nil
	tc.static = false
	tc.locals = nil
}

// declare allocates a LocalID for name in the innermost scope.
func (tc *typeChecker) declare(name string, typ *ast.TypeRef, sp source.Span) ast.LocalID {
	top := tc.scopes[len(tc.scopes)-1]
	if _, dup := top[name]; dup {
		tc.report(diag.SemaDuplicateLocal, sp, "a local named '"+name+"' is already declared in this scope")
	} else if tc.paramIndex(name) >= 0 {
		tc.report(diag.SemaDuplicateLocal, sp, "local '"+name+"' conflicts with a parameter")
	}
	value, err := safecast.Conv[uint32](len(tc.locals) + 1)
	if err != nil {
		panic(fmt.Errorf("local index overflow: %w", err))
	}
	id := ast.LocalID(value)
	tc.locals = append(tc.locals, LocalInfo{ID: id, Name: name, Type: typ, Span: sp})
	top[name] = id
	return id
}

func (tc *typeChecker) localType(id ast.LocalID) *ast.TypeRef {
	if id == ast.NoLocalID || int(id) > len(tc.locals) {
		return nil
	}
	return tc.locals[id-1].Type
}

func (tc *typeChecker) paramIndex(name string) int {
	for i, p := range tc.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
