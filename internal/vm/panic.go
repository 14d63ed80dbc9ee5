package vm

import (
	"fmt"
	"strings"

	"yieldc/internal/source"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch      PanicCode = 1003 // VM1003: type mismatch
	PanicOutOfBounds       PanicCode = 1004 // VM1004: out of bounds
	PanicUnknownMember     PanicCode = 1005 // VM1005: unknown field, method or type
	PanicNullReference     PanicCode = 1006 // VM1006: member access on null
	PanicDivideByZero      PanicCode = 1007 // VM1007: integer division by zero
	PanicStepLimit         PanicCode = 1008 // VM1008: step budget exhausted
	PanicStackOverflow     PanicCode = 1009 // VM1009: call depth exceeded
	PanicNotLowered        PanicCode = 1010 // VM1010: iterator body reached outside eager mode
	PanicCancelled         PanicCode = 1011 // VM1011: context cancelled
	PanicUncaughtException PanicCode = 1100 // VM1100: thrown value escaped the entry point
	PanicUnimplemented     PanicCode = 1999 // VM1999: unimplemented construct
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// VMError represents a runtime failure. A `throw` travels as a VMError with
// Code PanicUncaughtException and Thrown set; only those are visible to
// catch clauses.
type VMError struct {
	Code      PanicCode
	Message   string
	Span      source.Span      // Location where panic occurred
	Backtrace []BacktraceFrame // Stack frames from top to bottom
	Thrown    *Value
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// IsThrow reports whether the error carries a thrown value.
func (p *VMError) IsThrow() bool {
	return p != nil && p.Thrown != nil
}

// FormatWithFiles formats the panic with resolved file:line:col information.
func (p *VMError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(p.Span, files))
	sb.WriteString("\n")

	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, frame.FuncName, formatSpan(frame.Span, files))
		}
	}
	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>" if empty.
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

// errorBuilder helps construct VMError values.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{
		Code:    code,
		Message: msg,
		Span:    eb.vm.span,
	}
	stack := eb.vm.stack
	e.Backtrace = make([]BacktraceFrame, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		e.Backtrace[len(stack)-1-i] = BacktraceFrame{FuncName: f.name, Span: f.span}
	}
	return e
}

func (eb *errorBuilder) typeMismatch(expected, got string) *VMError {
	return eb.makeError(PanicTypeMismatch, fmt.Sprintf("expected %s, got %s", expected, got))
}

func (eb *errorBuilder) outOfBounds(index int64, length int) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("index %d out of bounds for length %d", index, length))
}

func (eb *errorBuilder) unknownMember(owner, name string) *VMError {
	return eb.makeError(PanicUnknownMember, fmt.Sprintf("%s has no member %s", owner, name))
}

func (eb *errorBuilder) nullReference(name string) *VMError {
	return eb.makeError(PanicNullReference, fmt.Sprintf("member %s accessed on null", name))
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, "unimplemented: "+what)
}

// throw wraps a thrown value.
func (eb *errorBuilder) throw(v Value) *VMError {
	e := eb.makeError(PanicUncaughtException, "unhandled exception: "+v.Message())
	e.Thrown = &v
	return e
}
