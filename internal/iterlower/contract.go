package iterlower

// Names shared between generated enumerator classes and the runtime that
// executes them.
const (
	// BaseType declares $current and exposes Current.
	BaseType = "System.YieldIterator"

	ClassPrefix = "YieldEnumerator$"

	FieldThis    = "$this"
	FieldState   = "$state"
	FieldCurrent = "$current"

	MethodMoveNext      = "MoveNext"
	MethodGetEnumerator = "GetEnumerator"
	MethodDispose       = "Dispose"
	PropCurrent         = "Current"

	// DispatchLabel labels the MoveNext dispatch loop.
	DispatchLabel = "$top"
	// DisposeLocal snapshots the state inside Dispose.
	DisposeLocal = "$s"
	// ExceptionLocal binds the exception in the MoveNext cleanup handler.
	ExceptionLocal = "$e"
	// TempIterPrefix names enumerator temporaries introduced for foreach.
	TempIterPrefix = "$iter"
)

// StateFinished is the sentinel state: not started or already finished.
// StateStart is the first executable state.
const (
	StateFinished = 0
	StateStart    = 1
)
