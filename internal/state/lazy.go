package state

// lazy is a value resolved on first read and cached until reset.
type lazy[T any] struct {
	val T
	ok  bool
}

// get returns the cached value, resolving it first if needed. A resolver
// that reports false leaves the field unresolved so the next read retries.
func (l *lazy[T]) get(resolve func() (T, bool)) T {
	if !l.ok {
		v, ok := resolve()
		if !ok {
			return v
		}
		l.val, l.ok = v, true
	}
	return l.val
}

func (l *lazy[T]) set(v T) {
	l.val, l.ok = v, true
}

func (l *lazy[T]) peek() (T, bool) {
	return l.val, l.ok
}

func (l *lazy[T]) reset() {
	var zero T
	l.val, l.ok = zero, false
}
