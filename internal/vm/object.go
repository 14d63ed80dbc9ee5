package vm

import (
	"fortio.org/safecast"

	"yieldc/internal/ast"
)

// Object is an instance of a class declared in the unit.
type Object struct {
	Class  *ast.ClassDecl
	Fields map[string]Value
	// yieldIterator is set when the class derives from System.YieldIterator;
	// Current then reads $current.
	yieldIterator bool
}

// Native is implemented by runtime-provided objects.
type Native interface {
	TypeName() string
	// Get reads a property; ok is false when the property does not exist.
	Get(name string) (Value, bool)
	// Call invokes a method; ok is false when the method does not exist.
	Call(vm *VM, name string, args []Value) (Value, bool, *VMError)
}

// List is List<T>.
type List struct {
	Items []Value
}

func (*List) TypeName() string { return "List" }

func (l *List) Get(name string) (Value, bool) {
	if name == "Count" {
		return MakeInt(int64(len(l.Items))), true
	}
	return Value{}, false
}

func (l *List) Call(vm *VM, name string, args []Value) (Value, bool, *VMError) {
	switch {
	case name == "Add" && len(args) == 1:
		l.Items = append(l.Items, args[0])
		return Value{}, true, nil
	case name == "Contains" && len(args) == 1:
		for _, it := range l.Items {
			if it.Equal(args[0]) {
				return MakeBool(true), true, nil
			}
		}
		return MakeBool(false), true, nil
	case name == "Clear" && len(args) == 0:
		l.Items = nil
		return Value{}, true, nil
	case name == "GetEnumerator" && len(args) == 0:
		return MakeNative(&sliceEnumerator{items: l.Items, pos: -1}), true, nil
	}
	return Value{}, false, nil
}

func (l *List) index(vm *VM, i Value) (int, *VMError) {
	if i.Kind != VKInt {
		return 0, vm.eb.typeMismatch("int", i.Kind.String())
	}
	idx, err := safecast.Conv[int](i.Int)
	if err != nil || idx < 0 || idx >= len(l.Items) {
		return 0, vm.eb.outOfBounds(i.Int, len(l.Items))
	}
	return idx, nil
}

// HashSet is HashSet<T>; enumeration follows insertion order.
type HashSet struct {
	items []Value
	seen  map[any]struct{}
}

func NewHashSet() *HashSet {
	return &HashSet{seen: make(map[any]struct{})}
}

func (*HashSet) TypeName() string { return "HashSet" }

func (s *HashSet) Get(name string) (Value, bool) {
	if name == "Count" {
		return MakeInt(int64(len(s.items))), true
	}
	return Value{}, false
}

func (s *HashSet) Call(vm *VM, name string, args []Value) (Value, bool, *VMError) {
	switch {
	case name == "Add" && len(args) == 1:
		k := args[0].key()
		if _, ok := s.seen[k]; ok {
			return MakeBool(false), true, nil
		}
		s.seen[k] = struct{}{}
		s.items = append(s.items, args[0])
		return MakeBool(true), true, nil
	case name == "Contains" && len(args) == 1:
		_, ok := s.seen[args[0].key()]
		return MakeBool(ok), true, nil
	case name == "GetEnumerator" && len(args) == 0:
		return MakeNative(&sliceEnumerator{items: s.items, pos: -1}), true, nil
	}
	return Value{}, false, nil
}

// Sequence is what an iterator method returns in eager mode: every produced
// value, collected up front.
type Sequence struct {
	Items []Value
}

func (*Sequence) TypeName() string { return "Sequence" }

func (q *Sequence) Get(string) (Value, bool) { return Value{}, false }

func (q *Sequence) Call(vm *VM, name string, args []Value) (Value, bool, *VMError) {
	if name == "GetEnumerator" && len(args) == 0 {
		return MakeNative(&sliceEnumerator{items: q.Items, pos: -1}), true, nil
	}
	return Value{}, false, nil
}

// sliceEnumerator walks a snapshot of a collection.
type sliceEnumerator struct {
	items []Value
	pos   int
}

func (*sliceEnumerator) TypeName() string { return "Enumerator" }

func (e *sliceEnumerator) Get(name string) (Value, bool) {
	if name == "Current" {
		if e.pos < 0 || e.pos >= len(e.items) {
			return Value{}, true
		}
		return e.items[e.pos], true
	}
	return Value{}, false
}

func (e *sliceEnumerator) Call(vm *VM, name string, args []Value) (Value, bool, *VMError) {
	switch name {
	case "MoveNext":
		if e.pos < len(e.items) {
			e.pos++
		}
		return MakeBool(e.pos < len(e.items)), true, nil
	case "Dispose":
		e.pos = len(e.items)
		return Value{}, true, nil
	case "GetEnumerator":
		return MakeNative(e), true, nil
	}
	return Value{}, false, nil
}

// Exception is the builtin Exception type.
type Exception struct {
	Msg string
}

func (*Exception) TypeName() string { return "Exception" }

func (x *Exception) Get(name string) (Value, bool) {
	if name == "Message" {
		return MakeString(x.Msg), true
	}
	return Value{}, false
}

func (x *Exception) Call(*VM, string, []Value) (Value, bool, *VMError) {
	return Value{}, false, nil
}

// Console is the static receiver of Console.WriteLine.
type console struct{}

func (console) TypeName() string { return "Console" }

func (console) Get(string) (Value, bool) { return Value{}, false }

func (console) Call(vm *VM, name string, args []Value) (Value, bool, *VMError) {
	if name != "WriteLine" || len(args) > 1 {
		return Value{}, false, nil
	}
	line := ""
	if len(args) == 1 {
		line = args[0].String()
	}
	if _, err := vm.out.Write([]byte(line + "\n")); err != nil {
		return Value{}, true, vm.eb.makeError(PanicUnimplemented, "write stdout: "+err.Error())
	}
	return Value{}, true, nil
}
