package ast

// EventType is the kind of change notification a SharedList observer
// receives.
type EventType int

const (
	Added EventType = iota
	WillUpdate
	Updated
	WillRemove
	Removed
)

func (t EventType) String() string {
	switch t {
	case Added:
		return "ADDED"
	case WillUpdate:
		return "WILL_UPDATE"
	case Updated:
		return "UPDATED"
	case WillRemove:
		return "WILL_REMOVE"
	case Removed:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to SharedList observers synchronously; every
// notification completes before the next mutation is applied. An observer
// must not mutate the list it is observing from inside a notification.
type Event struct {
	Type   EventType
	Index  int
	Origin any // the SharedList the change originated in (self or a base)
}

// SharedList is an inheritable ordered list: positions [0, baseLen)
// mirror the base list unless locally overridden; positions [baseLen, …)
// are local-only. The base pointer is weak: when the base is destroyed,
// this list's reference to it is cleared, and Get/IsInherited degrade
// gracefully afterward.
type SharedList[T any] struct {
	base      *SharedList[T]
	unsubBase func()

	overrides map[int]T
	local     []T

	observers   map[int]func(Event)
	nextObsID   int
	destroyed   bool
	destroyCBs  map[int]func()
	nextCBID    int
}

// NewSharedList creates a list inheriting from base (which may be nil for
// a list with no base).
func NewSharedList[T any](base *SharedList[T]) *SharedList[T] {
	l := &SharedList[T]{
		overrides:  make(map[int]T),
		observers:  make(map[int]func(Event)),
		destroyCBs: make(map[int]func()),
	}
	if base != nil {
		l.base = base
		unsubChange := base.Subscribe(func(ev Event) { l.onBaseEvent(ev) })
		unsubDestroy := base.onDestroy(func() { l.base = nil })
		l.unsubBase = func() {
			unsubChange()
			unsubDestroy()
		}
	}
	return l
}

// Subscribe registers fn to be called synchronously on every Event this
// list emits. The returned func unregisters fn; observers that outlive
// the list must call it before the list is destroyed.
func (l *SharedList[T]) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := l.nextObsID
	l.nextObsID++
	l.observers[id] = fn
	return func() { delete(l.observers, id) }
}

func (l *SharedList[T]) onDestroy(fn func()) (unsubscribe func()) {
	id := l.nextCBID
	l.nextCBID++
	l.destroyCBs[id] = fn
	return func() { delete(l.destroyCBs, id) }
}

func (l *SharedList[T]) emit(ev Event) {
	for _, obs := range l.observers {
		obs(ev)
	}
}

// onBaseEvent forwards a base-list change to this list's own observers,
// for any index this list does not locally override: base-mirrored entries
// are replaced in place when the base updates.
func (l *SharedList[T]) onBaseEvent(ev Event) {
	if _, overridden := l.overrides[ev.Index]; overridden {
		return
	}
	l.emit(ev)
}

func (l *SharedList[T]) baseLen() int {
	if l.base == nil {
		return 0
	}
	return l.base.Len()
}

// Len returns the total number of addressable positions: the base's
// length (0 if no base, or if the base has since been destroyed) plus any
// local-only entries appended past it.
func (l *SharedList[T]) Len() int {
	return l.baseLen() + len(l.local)
}

// IsInherited returns whether index i currently mirrors the base list,
// i.e. i is within [0, baseLen) and has not been locally overridden.
func (l *SharedList[T]) IsInherited(i int) bool {
	if i < 0 || i >= l.baseLen() {
		return false
	}
	_, overridden := l.overrides[i]
	return !overridden
}

// Get returns the value at index i: a local override if one exists, else
// the base's value if i is within the base range and the base is still
// live, else the local-only value for i >= baseLen.
func (l *SharedList[T]) Get(i int) T {
	var zero T
	if i < 0 || i >= l.Len() {
		return zero
	}
	if v, ok := l.overrides[i]; ok {
		return v
	}
	if i < l.baseLen() {
		return l.base.Get(i)
	}
	return l.local[i-l.baseLen()]
}

// Set assigns value to index i. If i is within the base range, this
// creates (or replaces) a local override; otherwise i must be a
// local-only index already populated by Append.
func (l *SharedList[T]) Set(i int, value T) {
	if i < 0 || i >= l.Len() {
		return
	}
	l.emit(Event{Type: WillUpdate, Index: i, Origin: l})
	if i < l.baseLen() {
		l.overrides[i] = value
	} else {
		l.local[i-l.baseLen()] = value
	}
	l.emit(Event{Type: Updated, Index: i, Origin: l})
}

// Append adds value as a new local-only entry at the end of the list.
func (l *SharedList[T]) Append(value T) {
	idx := l.Len()
	l.local = append(l.local, value)
	l.emit(Event{Type: Added, Index: idx, Origin: l})
}

// RemoveAt removes index i. If i is a locally-overridden base-range index,
// the override is cleared and the slot reverts to mirroring the base
// value rather than being deleted; if i is local-only,
// the slot is actually removed and subsequent local indices shift down.
// Removing a non-overridden base-range index is a no-op: there is nothing
// local to remove.
func (l *SharedList[T]) RemoveAt(i int) {
	if i < 0 || i >= l.Len() {
		return
	}
	if i < l.baseLen() {
		if _, overridden := l.overrides[i]; !overridden {
			return
		}
		l.emit(Event{Type: WillRemove, Index: i, Origin: l})
		delete(l.overrides, i)
		l.emit(Event{Type: Removed, Index: i, Origin: l})
		return
	}

	l.emit(Event{Type: WillRemove, Index: i, Origin: l})
	localIdx := i - l.baseLen()
	l.local = append(l.local[:localIdx], l.local[localIdx+1:]...)
	l.emit(Event{Type: Removed, Index: i, Origin: l})
}

// Destroy tears down the list: any derived SharedList depending on this one
// as its base has its base pointer cleared, and this list's own
// subscription to its own base (if any) is released.
func (l *SharedList[T]) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	for _, cb := range l.destroyCBs {
		cb()
	}
	if l.unsubBase != nil {
		l.unsubBase()
	}
}
