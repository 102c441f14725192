package vm

// The collector is a plain mark-and-sweep over an intrusive singly-linked
// list of every live object. Collection is triggered on allocation once the
// live count reaches a threshold; after each sweep the threshold is reset
// to twice the survivor count. The initial threshold is deliberately tiny
// so collections happen early and often under test.
const initialGCThreshold = 2

type heap struct {
	head       *Object
	numObjects int
	maxObjects int
}

func newHeap() *heap {
	return &heap{maxObjects: initialGCThreshold}
}

// mark flags obj and everything reachable from it. An explicit worklist
// stands in for recursion so deeply nested arrays cannot exhaust the Go
// stack.
func (h *heap) mark(obj *Object) {
	if obj == nil || obj.marked {
		return
	}
	work := []*Object{obj}
	push := func(o *Object) {
		if o != nil && !o.marked {
			work = append(work, o)
		}
	}
	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]
		if o.marked {
			continue
		}
		o.marked = true
		switch o.Type {
		case ObjArray:
			for _, element := range o.Elements {
				push(element)
			}
		case ObjNative:
			if o.trace != nil {
				o.trace(o.Handle, push)
			}
		}
	}
}

// sweep frees every unmarked object and clears the mark bit on survivors.
// Freeing unlinks the object from the heap list and fires the release
// callback of Native objects; the Go runtime reclaims the storage itself.
func (h *heap) sweep() {
	obj := &h.head
	for *obj != nil {
		if !(*obj).marked {
			unreached := *obj
			*obj = unreached.next
			h.numObjects--
			if unreached.Type == ObjNative && unreached.release != nil {
				unreached.release(unreached.Handle)
			}
			unreached.next = nil
		} else {
			(*obj).marked = false
			obj = &(*obj).next
		}
	}
}

// Collect runs a full mark-and-sweep: every object reachable from the
// evaluation stack or an initialized global survives, everything else is
// freed, and the collection threshold is reset to twice the live count.
func (m *Machine) Collect() {
	m.markAll()
	m.heap.sweep()
	m.heap.maxObjects = m.heap.numObjects * 2
}

// markAll marks the collector's roots: every entry on the evaluation stack
// and every runtime global value.
func (m *Machine) markAll() {
	for i := 0; i < m.stackSize; i++ {
		m.heap.mark(m.stack[i])
	}
	for i := 0; i < m.runtimeGlobals; i++ {
		m.heap.mark(m.globals[i])
	}
}

// LiveObjects returns the number of objects currently on the heap list.
func (m *Machine) LiveObjects() int {
	return m.heap.numObjects
}

// newObject allocates an object of the given type and links it into the
// heap list, collecting first when the live count has reached the
// threshold.
func (m *Machine) newObject(objType ObjectType) *Object {
	if m.heap.numObjects >= m.heap.maxObjects {
		m.Collect()
	}
	obj := &Object{Type: objType, next: m.heap.head}
	m.heap.head = obj
	m.heap.numObjects++
	return obj
}

// NewNumber allocates a number object.
func (m *Machine) NewNumber(value float64) *Object {
	obj := m.newObject(ObjNumber)
	obj.Number = value
	return obj
}

// NewString allocates a string object owning the given text.
func (m *Machine) NewString(value string) *Object {
	obj := m.newObject(ObjString)
	obj.Str = value
	return obj
}

// NewArray allocates an array of length unset slots.
func (m *Machine) NewArray(length int) *Object {
	obj := m.newObject(ObjArray)
	obj.Elements = make([]*Object, length)
	return obj
}

// NewNative allocates an opaque external handle. release, if non-nil, runs
// when the collector frees the object; trace, if non-nil, runs during the
// mark phase to keep managed values owned by the handle alive.
func (m *Machine) NewNative(handle any, release ReleaseFunc, trace TraceFunc) *Object {
	obj := m.newObject(ObjNative)
	obj.Handle = handle
	obj.release = release
	obj.trace = trace
	return obj
}
