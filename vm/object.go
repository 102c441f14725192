package vm

type ObjectType int

const (
	ObjNumber ObjectType = iota
	ObjString
	ObjArray
	ObjNative
)

// ReleaseFunc is invoked with a Native object's handle when the collector
// frees the object.
type ReleaseFunc func(handle any)

// TraceFunc is invoked with a Native object's handle during the mark phase.
// The callback must call mark for every managed value the handle keeps
// alive, so the collector does not sweep them.
type TraceFunc func(handle any, mark func(*Object))

// Object is one heap-allocated value. Every object belongs to exactly one
// machine's heap, linked through next; all other references are non-owning.
// Exactly one payload field is meaningful, selected by Type.
type Object struct {
	Type ObjectType

	marked bool
	next   *Object

	// ObjNumber. Doubles double as booleans: zero is false.
	Number float64

	// ObjString
	Str string

	// ObjArray. Unset entries are nil and read back as the number 0.
	Elements []*Object

	// ObjNative: an opaque external handle with optional callbacks.
	Handle  any
	release ReleaseFunc
	trace   TraceFunc
}
