package vm

import (
	"strconv"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	// VKNull is the null reference; the zero Value is null.
	VKNull ValueKind = iota
	VKInt
	VKBool
	VKString
	// VKObject is an instance of a class declared in the unit.
	VKObject
	// VKNative is a runtime-provided object (collections, exceptions, sequences).
	VKNative
	// VKType is a class name used as the receiver of a static member.
	VKType
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case VKNull:
		return "null"
	case VKInt:
		return "int"
	case VKBool:
		return "bool"
	case VKString:
		return "string"
	case VKObject:
		return "object"
	case VKNative:
		return "native"
	case VKType:
		return "type"
	default:
		return "invalid"
	}
}

// Value is a runtime value.
type Value struct {
	Kind   ValueKind
	Int    int64
	Bool   bool
	Str    string
	Obj    *Object
	Native Native
}

func MakeInt(v int64) Value     { return Value{Kind: VKInt, Int: v} }
func MakeBool(v bool) Value     { return Value{Kind: VKBool, Bool: v} }
func MakeString(v string) Value { return Value{Kind: VKString, Str: v} }
func MakeNative(n Native) Value { return Value{Kind: VKNative, Native: n} }
func makeType(name string) Value {
	return Value{Kind: VKType, Str: name}
}

// TypeName is the dynamic type name used in messages and catch matching.
func (v Value) TypeName() string {
	switch v.Kind {
	case VKObject:
		return v.Obj.Class.Name
	case VKNative:
		return v.Native.TypeName()
	case VKType:
		return v.Str
	default:
		return v.Kind.String()
	}
}

// String renders v the way Console.WriteLine prints it.
func (v Value) String() string {
	switch v.Kind {
	case VKNull:
		return ""
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case VKString:
		return v.Str
	default:
		return v.TypeName()
	}
}

// Message is the text of a thrown value.
func (v Value) Message() string {
	if ex, ok := v.Native.(*Exception); ok {
		return ex.Msg
	}
	return v.String()
}

// Equal implements == for every kind: value equality for scalars, identity
// for objects.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VKNull:
		return true
	case VKInt:
		return v.Int == o.Int
	case VKBool:
		return v.Bool == o.Bool
	case VKString, VKType:
		return v.Str == o.Str
	case VKObject:
		return v.Obj == o.Obj
	case VKNative:
		return v.Native == o.Native
	default:
		return false
	}
}

// key is a comparable identity used by HashSet.
func (v Value) key() any {
	switch v.Kind {
	case VKInt:
		return v.Int
	case VKBool:
		return v.Bool
	case VKString:
		return "s:" + v.Str
	case VKObject:
		return v.Obj
	case VKNative:
		return v.Native
	default:
		return nil
	}
}
