package util

type (
	// PathTree indexes values by hierarchical string paths
	PathTree[T any] struct {
		root *pathTreeNode[T]
		size int
	}

	pathTreeNode[T any] struct {
		value    T
		hasValue bool
		children map[string]*pathTreeNode[T]
	}
)

// NewPathTree creates a new hierarchical path index
func NewPathTree[T any]() *PathTree[T] {
	return &PathTree[T]{root: newPathTreeNode[T]()}
}

func newPathTreeNode[T any]() *pathTreeNode[T] {
	return &pathTreeNode[T]{children: map[string]*pathTreeNode[T]{}}
}

// Insert stores a value at the exact path, replacing any previous value
func (t *PathTree[T]) Insert(path []string, v T) {
	cur := t.root
	for _, p := range path {
		next, ok := cur.children[p]
		if !ok {
			next = newPathTreeNode[T]()
			cur.children[p] = next
		}
		cur = next
	}
	if !cur.hasValue {
		t.size++
	}
	cur.value = v
	cur.hasValue = true
}

// Get returns the value stored at the exact path
func (t *PathTree[T]) Get(path []string) (T, bool) {
	n := t.root.find(path)
	if n == nil || !n.hasValue {
		var zero T
		return zero, false
	}
	return n.value, true
}

// Collect returns every value stored at or beneath the prefix, leaving the
// tree untouched
func (t *PathTree[T]) Collect(prefix []string) []T {
	n := t.root.find(prefix)
	if n == nil {
		return nil
	}
	return n.values()
}

// Len returns the number of stored values
func (t *PathTree[T]) Len() int {
	return t.size
}

func (n *pathTreeNode[T]) find(path []string) *pathTreeNode[T] {
	cur := n
	for _, p := range path {
		next, ok := cur.children[p]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func (n *pathTreeNode[T]) values() []T {
	res := make([]T, 0)
	if n.hasValue {
		res = append(res, n.value)
	}
	for _, child := range n.children {
		res = append(res, child.values()...)
	}
	return res
}
