package vm

import (
	"yieldc/internal/ast"
)

func (vm *VM) evalBool(f *frame, e *ast.Expr) (bool, *VMError) {
	v, vmErr := vm.eval(f, e)
	if vmErr != nil {
		return false, vmErr
	}
	if v.Kind != VKBool {
		return false, vm.eb.typeMismatch("bool", v.Kind.String())
	}
	return v.Bool, nil
}

func (vm *VM) evalArgs(f *frame, args []*ast.Expr) ([]Value, *VMError) {
	out := make([]Value, len(args))
	for i, a := range args {
		v, vmErr := vm.eval(f, a)
		if vmErr != nil {
			return nil, vmErr
		}
		out[i] = v
	}
	return out, nil
}

func (vm *VM) eval(f *frame, e *ast.Expr) (Value, *VMError) {
	switch d := e.Data.(type) {
	case *ast.IntData:
		return MakeInt(d.Value), nil
	case *ast.StringData:
		return MakeString(d.Value), nil
	case *ast.BoolData:
		return MakeBool(d.Value), nil
	case *ast.NameData:
		return vm.loadName(f, d)
	case *ast.MemberData:
		recv, vmErr := vm.eval(f, d.X)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return vm.getMember(recv, d.Name)
	case *ast.IndexData:
		return vm.evalIndex(f, d)
	case *ast.CallData:
		return vm.evalCall(f, d)
	case *ast.NewData:
		args, vmErr := vm.evalArgs(f, d.Args)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if c := vm.classes[d.Type.Name]; c != nil {
			return vm.construct(c, args)
		}
		v, ok, vmErr := vm.newBuiltin(d.Type, args)
		if !ok {
			return Value{}, vm.eb.unknownMember("unit", "type "+d.Type.Name)
		}
		return v, vmErr
	case *ast.UnaryData:
		x, vmErr := vm.eval(f, d.X)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if d.Op == ast.OpNot {
			if x.Kind != VKBool {
				return Value{}, vm.eb.typeMismatch("bool", x.Kind.String())
			}
			return MakeBool(!x.Bool), nil
		}
		if x.Kind != VKInt {
			return Value{}, vm.eb.typeMismatch("int", x.Kind.String())
		}
		return MakeInt(-x.Int), nil
	case *ast.BinaryData:
		return vm.evalBinary(f, d)
	case *ast.AssignData:
		v, vmErr := vm.eval(f, d.Value)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if d.Op != ast.OpNone {
			cur, vmErr := vm.eval(f, d.Target)
			if vmErr != nil {
				return Value{}, vmErr
			}
			if v, vmErr = vm.arith(d.Op, cur, v); vmErr != nil {
				return Value{}, vmErr
			}
		}
		return v, vm.store(f, d.Target, v)
	case *ast.IncDecData:
		cur, vmErr := vm.eval(f, d.Target)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if cur.Kind != VKInt {
			return Value{}, vm.eb.typeMismatch("int", cur.Kind.String())
		}
		delta := int64(1)
		if d.Dec {
			delta = -1
		}
		return cur, vm.store(f, d.Target, MakeInt(cur.Int+delta))
	default:
		switch e.Kind {
		case ast.ExprNull:
			return Value{}, nil
		case ast.ExprThis:
			if f.this.Kind == VKNull {
				return Value{}, vm.eb.nullReference("this")
			}
			return f.this, nil
		}
		return Value{}, vm.eb.unimplemented("expression " + e.Kind.String())
	}
}

func (vm *VM) loadName(f *frame, d *ast.NameData) (Value, *VMError) {
	switch d.Ref.Kind {
	case ast.RefLocal:
		return f.locals[d.Ref.Local], nil
	case ast.RefParam:
		if d.Ref.Param < 0 || d.Ref.Param >= len(f.params) {
			return Value{}, vm.eb.unknownMember(f.name, "parameter "+d.Name)
		}
		return f.params[d.Ref.Param], nil
	case ast.RefField:
		if d.Ref.Static {
			return vm.getMember(makeType(d.Ref.Owner), d.Name)
		}
		return vm.getMember(f.this, d.Name)
	case ast.RefType:
		return makeType(d.Name), nil
	default:
		return Value{}, vm.eb.unknownMember(f.name, d.Name)
	}
}

func (vm *VM) store(f *frame, target *ast.Expr, v Value) *VMError {
	switch d := target.Data.(type) {
	case *ast.NameData:
		switch d.Ref.Kind {
		case ast.RefLocal:
			f.locals[d.Ref.Local] = v
			return nil
		case ast.RefParam:
			if d.Ref.Param < 0 || d.Ref.Param >= len(f.params) {
				return vm.eb.unknownMember(f.name, "parameter "+d.Name)
			}
			f.params[d.Ref.Param] = v
			return nil
		case ast.RefField:
			if d.Ref.Static {
				return vm.setMember(makeType(d.Ref.Owner), d.Name, v)
			}
			return vm.setMember(f.this, d.Name, v)
		}
		return vm.eb.unknownMember(f.name, d.Name)
	case *ast.MemberData:
		recv, vmErr := vm.eval(f, d.X)
		if vmErr != nil {
			return vmErr
		}
		return vm.setMember(recv, d.Name, v)
	case *ast.IndexData:
		recv, vmErr := vm.eval(f, d.X)
		if vmErr != nil {
			return vmErr
		}
		idx, vmErr := vm.eval(f, d.Index)
		if vmErr != nil {
			return vmErr
		}
		l, ok := recv.Native.(*List)
		if recv.Kind != VKNative || !ok {
			return vm.eb.typeMismatch("List", recv.TypeName())
		}
		i, vmErr := l.index(vm, idx)
		if vmErr != nil {
			return vmErr
		}
		l.Items[i] = v
		return nil
	}
	return vm.eb.unimplemented("assignment target " + target.Kind.String())
}

func (vm *VM) evalIndex(f *frame, d *ast.IndexData) (Value, *VMError) {
	recv, vmErr := vm.eval(f, d.X)
	if vmErr != nil {
		return Value{}, vmErr
	}
	idx, vmErr := vm.eval(f, d.Index)
	if vmErr != nil {
		return Value{}, vmErr
	}
	l, ok := recv.Native.(*List)
	if recv.Kind != VKNative || !ok {
		return Value{}, vm.eb.typeMismatch("List", recv.TypeName())
	}
	i, vmErr := l.index(vm, idx)
	if vmErr != nil {
		return Value{}, vmErr
	}
	return l.Items[i], nil
}

func (vm *VM) evalCall(f *frame, d *ast.CallData) (Value, *VMError) {
	switch fn := d.Fn.Data.(type) {
	case *ast.NameData:
		args, vmErr := vm.evalArgs(f, d.Args)
		if vmErr != nil {
			return Value{}, vmErr
		}
		if fn.Ref.Kind != ast.RefMethod {
			return Value{}, vm.eb.unknownMember(f.name, "method "+fn.Name)
		}
		if fn.Ref.Static || f.this.Kind == VKNull {
			return vm.callMethod(makeType(fn.Ref.Owner), fn.Name, args)
		}
		return vm.callMethod(f.this, fn.Name, args)
	case *ast.MemberData:
		recv, vmErr := vm.eval(f, fn.X)
		if vmErr != nil {
			return Value{}, vmErr
		}
		args, vmErr := vm.evalArgs(f, d.Args)
		if vmErr != nil {
			return Value{}, vmErr
		}
		return vm.callMethod(recv, fn.Name, args)
	}
	return Value{}, vm.eb.unimplemented("call of " + d.Fn.Kind.String())
}

func (vm *VM) evalBinary(f *frame, d *ast.BinaryData) (Value, *VMError) {
	x, vmErr := vm.eval(f, d.X)
	if vmErr != nil {
		return Value{}, vmErr
	}
	switch d.Op {
	case ast.OpAnd, ast.OpOr:
		if x.Kind != VKBool {
			return Value{}, vm.eb.typeMismatch("bool", x.Kind.String())
		}
		if x.Bool == (d.Op == ast.OpOr) {
			return x, nil
		}
		y, vmErr := vm.evalBool(f, d.Y)
		return MakeBool(y), vmErr
	}
	y, vmErr := vm.eval(f, d.Y)
	if vmErr != nil {
		return Value{}, vmErr
	}
	switch d.Op {
	case ast.OpEq:
		return MakeBool(x.Equal(y)), nil
	case ast.OpNe:
		return MakeBool(!x.Equal(y)), nil
	}
	return vm.arith(d.Op, x, y)
}

// arith covers arithmetic, comparison and string concatenation.
func (vm *VM) arith(op ast.Op, x, y Value) (Value, *VMError) {
	if op == ast.OpAdd && (x.Kind == VKString || y.Kind == VKString) {
		return MakeString(x.String() + y.String()), nil
	}
	if x.Kind != VKInt {
		return Value{}, vm.eb.typeMismatch("int", x.Kind.String())
	}
	if y.Kind != VKInt {
		return Value{}, vm.eb.typeMismatch("int", y.Kind.String())
	}
	a, b := x.Int, y.Int
	switch op {
	case ast.OpAdd:
		return MakeInt(a + b), nil
	case ast.OpSub:
		return MakeInt(a - b), nil
	case ast.OpMul:
		return MakeInt(a * b), nil
	case ast.OpDiv, ast.OpMod:
		if b == 0 {
			return Value{}, vm.eb.throw(MakeNative(&Exception{Msg: "Attempted to divide by zero."}))
		}
		if op == ast.OpDiv {
			return MakeInt(a / b), nil
		}
		return MakeInt(a % b), nil
	case ast.OpLt:
		return MakeBool(a < b), nil
	case ast.OpLe:
		return MakeBool(a <= b), nil
	case ast.OpGt:
		return MakeBool(a > b), nil
	case ast.OpGe:
		return MakeBool(a >= b), nil
	}
	return Value{}, vm.eb.unimplemented("operator " + op.String())
}
