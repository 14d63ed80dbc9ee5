package sema

// builtinTypes are supplied by the runtime library.
var builtinTypes = map[string]bool{
	"object":      true,
	"int":         true,
	"bool":        true,
	"string":      true,
	"IEnumerable": true,
	"IEnumerator": true,
	"IDisposable": true,
	"List":        true,
	"HashSet":     true,
	"Exception":   true,
	"Console":     true,
	"System":      true,
}

// IsBuiltinType reports whether name is provided by the runtime library.
func IsBuiltinType(name string) bool {
	return builtinTypes[name]
}
