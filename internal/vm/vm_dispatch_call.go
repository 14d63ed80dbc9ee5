package vm

import (
	"fmt"

	"yieldc/internal/ast"
)

const yieldIteratorBase = "YieldIterator"

func (vm *VM) baseOf(c *ast.ClassDecl) *ast.ClassDecl {
	if c.Base == nil {
		return nil
	}
	return vm.classes[c.Base.Name]
}

// chain lists c and its in-unit bases, most derived first.
func (vm *VM) chain(c *ast.ClassDecl) []*ast.ClassDecl {
	var out []*ast.ClassDecl
	for cur := c; cur != nil && len(out) < 32; cur = vm.baseOf(cur) {
		out = append(out, cur)
	}
	return out
}

// derivesYieldIterator reports whether the root of c's chain is System.YieldIterator.
func (vm *VM) derivesYieldIterator(c *ast.ClassDecl) bool {
	ch := vm.chain(c)
	root := ch[len(ch)-1]
	return root.Base != nil && lastSegment(root.Base.Name) == yieldIteratorBase
}

// derivesFrom reports whether c is name or has it as an ancestor, including
// the builtin root of the chain.
func (vm *VM) derivesFrom(c *ast.ClassDecl, name string) bool {
	for _, cur := range vm.chain(c) {
		if cur.Name == name || (cur.Base != nil && lastSegment(cur.Base.Name) == name) {
			return true
		}
	}
	return false
}

// findMethod resolves name against the chain by arity, preferring overloads
// whose scalar parameter types match the arguments.
func (vm *VM) findMethod(c *ast.ClassDecl, name string, args []Value, wantStatic bool) (*ast.ClassDecl, *ast.MethodDecl) {
	var fallbackC *ast.ClassDecl
	var fallback *ast.MethodDecl
	for _, cur := range vm.chain(c) {
		for _, m := range cur.MethodsNamed(name) {
			if len(m.Params) != len(args) || (wantStatic && !m.Static && !cur.Static) {
				continue
			}
			if paramsAccept(m.Params, args) {
				return cur, m
			}
			if fallback == nil {
				fallbackC, fallback = cur, m
			}
		}
	}
	return fallbackC, fallback
}

func paramsAccept(params []*ast.Param, args []Value) bool {
	for i, p := range params {
		if !typeAccepts(p.Type, args[i]) {
			return false
		}
	}
	return true
}

func typeAccepts(t *ast.TypeRef, v Value) bool {
	if t == nil || t.Array || len(t.Args) > 0 {
		return true
	}
	switch t.Name {
	case "int":
		return v.Kind == VKInt
	case "bool":
		return v.Kind == VKBool
	case "string":
		return v.Kind == VKString || v.Kind == VKNull
	default:
		return true
	}
}

func (vm *VM) isIterator(m *ast.MethodDecl) bool {
	it, ok := vm.iterators[m]
	if !ok {
		it = ast.ContainsKind(m.Body, ast.StmtYieldReturn) || ast.ContainsKind(m.Body, ast.StmtYieldBreak)
		vm.iterators[m] = it
	}
	return it
}

// invoke runs m with a fresh frame.
func (vm *VM) invoke(c *ast.ClassDecl, m *ast.MethodDecl, this Value, args []Value) (Value, *VMError) {
	f := &frame{
		name:   c.Name + "." + m.Name,
		span:   vm.span,
		class:  c,
		this:   this,
		params: args,
		locals: make(map[ast.LocalID]Value),
	}
	iter := vm.isIterator(m)
	if iter {
		if !vm.opts.Eager {
			return Value{}, vm.eb.makeError(PanicNotLowered, "iterator "+f.name+" has not been lowered")
		}
		f.yields = new([]Value)
	}
	return vm.withFrame(f, func() (Value, *VMError) {
		if _, vmErr := vm.exec(f, m.Body); vmErr != nil {
			return Value{}, vmErr
		}
		if iter {
			return MakeNative(&Sequence{Items: *f.yields}), nil
		}
		return f.ret, nil
	})
}

// construct allocates an instance, runs field initializers from the root
// class down, then the constructor matching the arguments.
func (vm *VM) construct(c *ast.ClassDecl, args []Value) (Value, *VMError) {
	obj := &Object{Class: c, Fields: make(map[string]Value), yieldIterator: vm.derivesYieldIterator(c)}
	if obj.yieldIterator {
		obj.Fields["$current"] = Value{}
	}
	self := Value{Kind: VKObject, Obj: obj}
	ch := vm.chain(c)
	for i := len(ch) - 1; i >= 0; i-- {
		for _, fd := range ch[i].Fields {
			if !fd.Static {
				obj.Fields[fd.Name] = zeroValue(fd.Type)
			}
		}
	}
	for i := len(ch) - 1; i >= 0; i-- {
		cur := ch[i]
		for _, fd := range cur.Fields {
			if fd.Static || fd.Init == nil {
				continue
			}
			f := &frame{name: cur.Name + ".<init>", span: vm.span, class: cur, this: self, locals: map[ast.LocalID]Value{}}
			v, vmErr := vm.withFrame(f, func() (Value, *VMError) { return vm.eval(f, fd.Init) })
			if vmErr != nil {
				return Value{}, vmErr
			}
			obj.Fields[fd.Name] = v
		}
	}

	var ctor *ast.CtorDecl
	for _, k := range c.Ctors {
		if len(k.Params) == len(args) {
			ctor = k
			if paramsAccept(k.Params, args) {
				break
			}
		}
	}
	if ctor == nil {
		if len(args) == 0 {
			return self, nil
		}
		return Value{}, vm.eb.makeError(PanicUnknownMember, fmt.Sprintf("%s has no constructor taking %d arguments", c.Name, len(args)))
	}
	f := &frame{name: c.Name + ".ctor", span: vm.span, class: c, this: self, params: args, locals: map[ast.LocalID]Value{}}
	_, vmErr := vm.withFrame(f, func() (Value, *VMError) {
		_, err := vm.exec(f, ctor.Body)
		return Value{}, err
	})
	if vmErr != nil {
		return Value{}, vmErr
	}
	return self, nil
}

// newBuiltin handles `new` on runtime-provided types.
func (vm *VM) newBuiltin(t *ast.TypeRef, args []Value) (Value, bool, *VMError) {
	switch lastSegment(t.Name) {
	case "List":
		return MakeNative(&List{}), true, nil
	case "HashSet":
		return MakeNative(NewHashSet()), true, nil
	case "Exception":
		msg := ""
		if len(args) > 0 {
			msg = args[0].String()
		}
		return MakeNative(&Exception{Msg: msg}), true, nil
	}
	return Value{}, false, nil
}

// callMethod dispatches name on recv. Type receivers select static methods.
func (vm *VM) callMethod(recv Value, name string, args []Value) (Value, *VMError) {
	switch recv.Kind {
	case VKObject:
		if c, m := vm.findMethod(recv.Obj.Class, name, args, false); m != nil {
			if m.Static || c.Static {
				return vm.invoke(c, m, Value{}, args)
			}
			return vm.invoke(c, m, recv, args)
		}
		if recv.Obj.yieldIterator {
			switch {
			case name == "Dispose" && len(args) == 0:
				return Value{}, nil
			case name == "GetEnumerator" && len(args) == 0:
				return recv, nil
			}
		}
		return Value{}, vm.eb.unknownMember(recv.Obj.Class.Name, name)
	case VKNative:
		v, ok, vmErr := recv.Native.Call(vm, name, args)
		if !ok {
			return Value{}, vm.eb.unknownMember(recv.Native.TypeName(), name)
		}
		return v, vmErr
	case VKType:
		if c := vm.classes[recv.Str]; c != nil {
			if owner, m := vm.findMethod(c, name, args, true); m != nil {
				return vm.invoke(owner, m, Value{}, args)
			}
			return Value{}, vm.eb.unknownMember(recv.Str, name)
		}
		if n := vm.natives[lastSegment(recv.Str)]; n != nil {
			return vm.callMethod(MakeNative(n), name, args)
		}
		return Value{}, vm.eb.unknownMember(recv.Str, name)
	case VKNull:
		return Value{}, vm.eb.nullReference(name)
	default:
		return Value{}, vm.eb.unknownMember(recv.Kind.String(), name)
	}
}

func (vm *VM) staticFields(c *ast.ClassDecl, name string) map[string]Value {
	for _, cur := range vm.chain(c) {
		if fields := vm.statics[cur.Name]; fields != nil {
			if _, ok := fields[name]; ok {
				return fields
			}
		}
	}
	return nil
}

func (vm *VM) getMember(recv Value, name string) (Value, *VMError) {
	switch recv.Kind {
	case VKObject:
		if v, ok := recv.Obj.Fields[name]; ok {
			return v, nil
		}
		if name == "Current" && recv.Obj.yieldIterator {
			return recv.Obj.Fields["$current"], nil
		}
		if fields := vm.staticFields(recv.Obj.Class, name); fields != nil {
			return fields[name], nil
		}
		return Value{}, vm.eb.unknownMember(recv.Obj.Class.Name, name)
	case VKNative:
		if v, ok := recv.Native.Get(name); ok {
			return v, nil
		}
		return Value{}, vm.eb.unknownMember(recv.Native.TypeName(), name)
	case VKType:
		if c := vm.classes[recv.Str]; c != nil {
			if fields := vm.staticFields(c, name); fields != nil {
				return fields[name], nil
			}
		}
		return Value{}, vm.eb.unknownMember(recv.Str, name)
	case VKString:
		if name == "Length" {
			return MakeInt(int64(len(recv.Str))), nil
		}
		return Value{}, vm.eb.unknownMember("string", name)
	case VKNull:
		return Value{}, vm.eb.nullReference(name)
	default:
		return Value{}, vm.eb.unknownMember(recv.Kind.String(), name)
	}
}

func (vm *VM) setMember(recv Value, name string, v Value) *VMError {
	switch recv.Kind {
	case VKObject:
		if _, ok := recv.Obj.Fields[name]; ok {
			recv.Obj.Fields[name] = v
			return nil
		}
		if fields := vm.staticFields(recv.Obj.Class, name); fields != nil {
			fields[name] = v
			return nil
		}
		return vm.eb.unknownMember(recv.Obj.Class.Name, name)
	case VKType:
		if c := vm.classes[recv.Str]; c != nil {
			if fields := vm.staticFields(c, name); fields != nil {
				fields[name] = v
				return nil
			}
		}
		return vm.eb.unknownMember(recv.Str, name)
	case VKNull:
		return vm.eb.nullReference(name)
	default:
		return vm.eb.typeMismatch("object", recv.TypeName())
	}
}
