package vm

import (
	"yieldc/internal/ast"
)

type ctrlKind uint8

const (
	ctrlNormal ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// ctrl is the completion of a statement other than an error.
type ctrl struct {
	kind  ctrlKind
	label string
}

var normal = ctrl{}

// loopCtrl decides what a loop labelled label does with the completion of
// its body: exit the loop, go on iterating, or propagate c outward.
func loopCtrl(c ctrl, label string) (exit, propagate bool) {
	switch c.kind {
	case ctrlBreak:
		if c.label == "" || c.label == label {
			return true, false
		}
		return true, true
	case ctrlContinue:
		if c.label == "" || c.label == label {
			return false, false
		}
		return true, true
	case ctrlReturn:
		return true, true
	}
	return false, false
}

func (vm *VM) exec(f *frame, s *ast.Stmt) (ctrl, *VMError) {
	if s == nil {
		return normal, nil
	}
	if vmErr := vm.step(); vmErr != nil {
		return normal, vmErr
	}
	vm.span = s.Span

	switch d := s.Data.(type) {
	case *ast.BlockData:
		for _, c := range d.Stmts {
			r, vmErr := vm.exec(f, c)
			if vmErr != nil || r.kind != ctrlNormal {
				return r, vmErr
			}
		}
	case *ast.LocalData:
		v := zeroValue(d.Type)
		if d.Init != nil {
			var vmErr *VMError
			if v, vmErr = vm.eval(f, d.Init); vmErr != nil {
				return normal, vmErr
			}
		}
		f.locals[d.Local] = v
	case *ast.ExprStmtData:
		_, vmErr := vm.eval(f, d.X)
		return normal, vmErr
	case *ast.IfData:
		cond, vmErr := vm.evalBool(f, d.Cond)
		if vmErr != nil {
			return normal, vmErr
		}
		if cond {
			return vm.exec(f, d.Then)
		}
		return vm.exec(f, d.Else)
	case *ast.WhileData:
		for {
			cond, vmErr := vm.evalBool(f, d.Cond)
			if vmErr != nil || !cond {
				return normal, vmErr
			}
			r, vmErr := vm.exec(f, d.Body)
			if vmErr != nil {
				return normal, vmErr
			}
			if exit, prop := loopCtrl(r, d.Label); exit {
				if prop {
					return r, nil
				}
				return normal, nil
			}
		}
	case *ast.DoData:
		for {
			r, vmErr := vm.exec(f, d.Body)
			if vmErr != nil {
				return normal, vmErr
			}
			if exit, prop := loopCtrl(r, ""); exit {
				if prop {
					return r, nil
				}
				return normal, nil
			}
			cond, vmErr := vm.evalBool(f, d.Cond)
			if vmErr != nil || !cond {
				return normal, vmErr
			}
		}
	case *ast.ForData:
		return vm.execFor(f, d)
	case *ast.ForeachData:
		return vm.execForeach(f, d)
	case *ast.BranchData:
		if s.Kind == ast.StmtBreak {
			return ctrl{kind: ctrlBreak, label: d.Label}, nil
		}
		return ctrl{kind: ctrlContinue, label: d.Label}, nil
	case *ast.ReturnData:
		f.ret = Value{}
		if d.Value != nil {
			v, vmErr := vm.eval(f, d.Value)
			if vmErr != nil {
				return normal, vmErr
			}
			f.ret = v
		}
		return ctrl{kind: ctrlReturn}, nil
	case *ast.YieldData:
		if f.yields == nil {
			return normal, vm.eb.makeError(PanicNotLowered, "yield outside an eagerly evaluated iterator")
		}
		if s.Kind == ast.StmtYieldBreak {
			return ctrl{kind: ctrlReturn}, nil
		}
		v, vmErr := vm.eval(f, d.Value)
		if vmErr != nil {
			return normal, vmErr
		}
		*f.yields = append(*f.yields, v)
	case *ast.TryData:
		return vm.execTry(f, d)
	case *ast.ThrowData:
		v, vmErr := vm.eval(f, d.Value)
		if vmErr != nil {
			return normal, vmErr
		}
		if v.Kind == VKNull {
			return normal, vm.eb.nullReference("throw")
		}
		return normal, vm.eb.throw(v)
	case *ast.SwitchData:
		return vm.execSwitch(f, d)
	default:
		return normal, vm.eb.unimplemented("statement " + s.Kind.String())
	}
	return normal, nil
}

func (vm *VM) execFor(f *frame, d *ast.ForData) (ctrl, *VMError) {
	for _, s := range d.Init {
		if _, vmErr := vm.exec(f, s); vmErr != nil {
			return normal, vmErr
		}
	}
	for {
		if d.Cond != nil {
			cond, vmErr := vm.evalBool(f, d.Cond)
			if vmErr != nil || !cond {
				return normal, vmErr
			}
		}
		r, vmErr := vm.exec(f, d.Body)
		if vmErr != nil {
			return normal, vmErr
		}
		if exit, prop := loopCtrl(r, ""); exit {
			if prop {
				return r, nil
			}
			return normal, nil
		}
		for _, p := range d.Post {
			if _, vmErr := vm.eval(f, p); vmErr != nil {
				return normal, vmErr
			}
		}
	}
}

func (vm *VM) execForeach(f *frame, d *ast.ForeachData) (ctrl, *VMError) {
	seq, vmErr := vm.eval(f, d.Iterable)
	if vmErr != nil {
		return normal, vmErr
	}
	out := normal
	vmErr = vm.forEach(seq, func(v Value) (bool, *VMError) {
		f.locals[d.Local] = v
		r, err := vm.exec(f, d.Body)
		if err != nil {
			return false, err
		}
		exit, prop := loopCtrl(r, "")
		if prop {
			out = r
		}
		return !exit, nil
	})
	return out, vmErr
}

// execTry runs the guarded block, the first matching catch clause for a
// thrown value, and the finally block. A completion or error of the finally
// block replaces the pending one.
func (vm *VM) execTry(f *frame, d *ast.TryData) (ctrl, *VMError) {
	r, vmErr := vm.exec(f, d.Body)
	if vmErr.IsThrow() {
		for _, c := range d.Catches {
			if !vm.catches(c, *vmErr.Thrown) {
				continue
			}
			if c.Name != "" {
				f.locals[c.Local] = *vmErr.Thrown
			}
			r, vmErr = vm.exec(f, c.Body)
			break
		}
	}
	if d.Finally == nil {
		return r, vmErr
	}
	fr, fErr := vm.exec(f, d.Finally)
	if fErr != nil || fr.kind != ctrlNormal {
		return fr, fErr
	}
	return r, vmErr
}

func (vm *VM) catches(c *ast.CatchClause, thrown Value) bool {
	if c.Type == nil {
		return true
	}
	name := lastSegment(c.Type.Name)
	if name == "Exception" || name == "object" {
		return true
	}
	if thrown.Kind == VKObject {
		return vm.derivesFrom(thrown.Obj.Class, name)
	}
	return thrown.TypeName() == name
}

func (vm *VM) execSwitch(f *frame, d *ast.SwitchData) (ctrl, *VMError) {
	tag, vmErr := vm.eval(f, d.Tag)
	if vmErr != nil {
		return normal, vmErr
	}
	var match *ast.SwitchCase
	for _, c := range d.Cases {
		if len(c.Values) == 0 {
			if match == nil {
				match = c
			}
			continue
		}
		hit := false
		for _, v := range c.Values {
			cv, vmErr := vm.eval(f, v)
			if vmErr != nil {
				return normal, vmErr
			}
			if cv.Equal(tag) {
				hit = true
				break
			}
		}
		if hit {
			match = c
			break
		}
	}
	if match == nil {
		return normal, nil
	}
	for _, s := range match.Body {
		r, vmErr := vm.exec(f, s)
		if vmErr != nil {
			return normal, vmErr
		}
		if r.kind == ctrlBreak && r.label == "" {
			return normal, nil
		}
		if r.kind != ctrlNormal {
			return r, nil
		}
	}
	return normal, nil
}
