package state

// Index maps content hashes to the first File entry seen with that hash.
type Index struct {
	byHash map[string]*Entry
}

func NewIndex() *Index {
	return &Index{byHash: make(map[string]*Entry)}
}

// Register records e under its resolved content hash unless another entry
// already holds it. It reports whether e was recorded.
func (x *Index) Register(e *Entry) bool {
	if e == nil || e.Kind != File {
		return false
	}
	h, ok := e.hash.peek()
	if !ok || h == "" {
		return false
	}
	if _, taken := x.byHash[h]; taken {
		return false
	}
	x.byHash[h] = e
	return true
}

func (x *Index) Lookup(hash string) *Entry {
	if hash == "" {
		return nil
	}
	return x.byHash[hash]
}

// Forget drops e's mapping if the index still points at e.
func (x *Index) Forget(e *Entry) {
	h, ok := e.hash.peek()
	if !ok {
		return
	}
	if x.byHash[h] == e {
		delete(x.byHash, h)
	}
}

// ForgetSubtree forgets e and all of its descendants.
func (x *Index) ForgetSubtree(e *Entry) {
	e.Walk(func(n *Entry) error {
		x.Forget(n)
		return nil
	})
}

func (x *Index) Len() int {
	return len(x.byHash)
}
