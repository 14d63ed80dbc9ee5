// Package vm is a tree-walking interpreter for yieldc units. It runs source
// units and lowered units alike; in eager mode an iterator method that was
// not lowered runs to completion and returns every value it yielded.
package vm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"yieldc/internal/ast"
	"yieldc/internal/source"
)

const (
	defaultMaxSteps = 10_000_000
	defaultMaxDepth = 256
	// ctxCheckEvery bounds how often the context is polled.
	ctxCheckEvery = 1024
)

// Options configures VM execution.
type Options struct {
	Stdout io.Writer
	// MaxSteps caps executed statements per VM; <=0 selects the default.
	MaxSteps int
	MaxDepth int
	// Eager evaluates iterator methods that still contain yield statements.
	Eager bool
}

// frame is one active method, constructor or initializer.
type frame struct {
	name   string
	span   source.Span
	class  *ast.ClassDecl
	this   Value
	params []Value
	locals map[ast.LocalID]Value
	ret    Value
	// yields collects produced values in eager mode; nil otherwise.
	yields *[]Value
}

// VM interprets one checked unit. Names must carry the bindings recorded by
// sema. A VM is not safe for concurrent use.
type VM struct {
	unit    *ast.Unit
	opts    Options
	out     io.Writer
	classes map[string]*ast.ClassDecl
	statics map[string]map[string]Value
	natives map[string]Native
	// iterators caches whether a method body still contains yield.
	iterators map[*ast.MethodDecl]bool

	ctx   context.Context
	stack []*frame
	span  source.Span
	steps int
	eb    *errorBuilder
}

// New prepares u for execution and runs static field initializers.
func New(u *ast.Unit, opts Options) (*VM, error) {
	if u == nil {
		return nil, fmt.Errorf("vm: nil unit")
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	vm := &VM{
		unit:      u,
		opts:      opts,
		out:       opts.Stdout,
		classes:   make(map[string]*ast.ClassDecl, len(u.Types)),
		statics:   make(map[string]map[string]Value, len(u.Types)),
		natives:   map[string]Native{"Console": console{}},
		iterators: make(map[*ast.MethodDecl]bool),
		ctx:       context.Background(),
	}
	if vm.out == nil {
		vm.out = io.Discard
	}
	vm.eb = &errorBuilder{vm: vm}
	for _, c := range u.Types {
		vm.classes[c.Name] = c
	}
	for _, c := range u.Types {
		fields := make(map[string]Value)
		vm.statics[c.Name] = fields
		for _, fd := range c.Fields {
			if fd.Static {
				fields[fd.Name] = zeroValue(fd.Type)
			}
		}
	}
	for _, c := range u.Types {
		for _, fd := range c.Fields {
			if !fd.Static || fd.Init == nil {
				continue
			}
			f := &frame{name: c.Name + ".<static>", class: c, locals: map[ast.LocalID]Value{}}
			v, vmErr := vm.withFrame(f, func() (Value, *VMError) { return vm.eval(f, fd.Init) })
			if vmErr != nil {
				return nil, vmErr
			}
			vm.statics[c.Name][fd.Name] = v
		}
	}
	return vm, nil
}

// Steps reports the number of statements executed so far.
func (vm *VM) Steps() int {
	return vm.steps
}

// asError keeps a nil *VMError from becoming a non-nil error.
func asError(e *VMError) error {
	if e == nil {
		return nil
	}
	return e
}

func (vm *VM) enter(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	vm.ctx = ctx
}

// Run calls the static parameterless method named by entry ("Class.Method").
func (vm *VM) Run(ctx context.Context, entry string) error {
	cls, meth, ok := strings.Cut(entry, ".")
	if !ok {
		return fmt.Errorf("vm: entry %q must be Class.Method", entry)
	}
	_, err := vm.Call(ctx, cls, meth)
	return err
}

// Call invokes a static method.
func (vm *VM) Call(ctx context.Context, class, method string, args ...Value) (Value, error) {
	vm.enter(ctx)
	c := vm.classes[class]
	if c == nil {
		return Value{}, fmt.Errorf("vm: unknown class %s", class)
	}
	v, vmErr := vm.callMethod(makeType(class), method, args)
	return v, asError(vmErr)
}

// NewObject constructs an instance of class.
func (vm *VM) NewObject(ctx context.Context, class string, args ...Value) (Value, error) {
	vm.enter(ctx)
	c := vm.classes[class]
	if c == nil {
		return Value{}, fmt.Errorf("vm: unknown class %s", class)
	}
	v, vmErr := vm.construct(c, args)
	return v, asError(vmErr)
}

// CallMethod invokes an instance method on recv.
func (vm *VM) CallMethod(ctx context.Context, recv Value, name string, args ...Value) (Value, error) {
	vm.enter(ctx)
	v, vmErr := vm.callMethod(recv, name, args)
	return v, asError(vmErr)
}

// Member reads a field or property of recv.
func (vm *VM) Member(ctx context.Context, recv Value, name string) (Value, error) {
	vm.enter(ctx)
	v, vmErr := vm.getMember(recv, name)
	return v, asError(vmErr)
}

// Collect enumerates seq the way foreach does, stopping after limit values
// when limit > 0, and disposes the enumerator.
func (vm *VM) Collect(ctx context.Context, seq Value, limit int) ([]Value, error) {
	vm.enter(ctx)
	var out []Value
	vmErr := vm.forEach(seq, func(v Value) (bool, *VMError) {
		out = append(out, v)
		return limit <= 0 || len(out) < limit, nil
	})
	return out, asError(vmErr)
}

func (vm *VM) withFrame(f *frame, run func() (Value, *VMError)) (Value, *VMError) {
	if len(vm.stack) >= vm.opts.MaxDepth {
		return Value{}, vm.eb.makeError(PanicStackOverflow, fmt.Sprintf("call depth exceeds %d", vm.opts.MaxDepth))
	}
	saved := vm.span
	vm.stack = append(vm.stack, f)
	defer func() {
		vm.stack = vm.stack[:len(vm.stack)-1]
		vm.span = saved
	}()
	return run()
}

// step charges one statement against the budget.
func (vm *VM) step() *VMError {
	vm.steps++
	if vm.steps > vm.opts.MaxSteps {
		return vm.eb.makeError(PanicStepLimit, fmt.Sprintf("step budget of %d exhausted", vm.opts.MaxSteps))
	}
	if vm.steps%ctxCheckEvery == 0 {
		if err := vm.ctx.Err(); err != nil {
			return vm.eb.makeError(PanicCancelled, err.Error())
		}
	}
	return nil
}

// zeroValue is the default of a field or local of type t.
func zeroValue(t *ast.TypeRef) Value {
	if t == nil || t.Array || len(t.Args) > 0 {
		return Value{}
	}
	switch t.Name {
	case "int":
		return MakeInt(0)
	case "bool":
		return MakeBool(false)
	default:
		return Value{}
	}
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
