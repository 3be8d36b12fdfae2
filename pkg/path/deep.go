package path

import "fmt"

// Get follows p through nested map[string]any and []any values. A missing
// segment, including a key that is not an index where a slice sits, is not
// an error: the second result is false. Indexing into a primitive value is
func Get(root any, p Path) (any, bool, error) {
	if len(p) == 0 {
		return nil, false, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	cur := root
	for i, seg := range p {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false, nil
			}
			cur = next
		case []any:
			idx, ok := Index(seg)
			if !ok || idx >= len(node) {
				return nil, false, nil
			}
			cur = node[idx]
		case nil:
			return nil, false, nil
		default:
			return nil, false, fmt.Errorf(
				"%w: cannot traverse %T at %s", ErrInvalidPath, cur, p[:i],
			)
		}
	}
	return cur, true, nil
}

// Set stores v at p, creating intermediate containers as needed: a slice
// when the following segment is an index, a map otherwise. Maps are written
// in place. A slice grows by at most one element per segment, so an index
// past its end fails with ErrIndexOutOfRange. Slices may need to grow, so
// the returned root must replace the one passed in
func Set(root any, p Path, v any) (any, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return set(root, p, 0, v)
}

func set(node any, p Path, pos int, v any) (any, error) {
	if pos == len(p) {
		return v, nil
	}
	seg := p[pos]
	if node == nil {
		node = containerFor(seg)
	}

	switch n := node.(type) {
	case map[string]any:
		child, err := set(n[seg], p, pos+1, v)
		if err != nil {
			return nil, err
		}
		n[seg] = child
		return n, nil
	case []any:
		idx, ok := Index(seg)
		if !ok {
			return nil, fmt.Errorf(
				"%w: %q is not an index at %s", ErrInvalidPath, seg, p[:pos],
			)
		}
		if idx > len(n) {
			return nil, fmt.Errorf(
				"%w: %d at %s (len %d)", ErrIndexOutOfRange, idx, p[:pos], len(n),
			)
		}
		if idx == len(n) {
			n = append(n, nil)
		}
		child, err := set(n[idx], p, pos+1, v)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	default:
		return nil, fmt.Errorf(
			"%w: cannot traverse %T at %s", ErrInvalidPath, node, p[:pos],
		)
	}
}

func containerFor(seg string) any {
	if _, ok := Index(seg); ok {
		return []any{}
	}
	return map[string]any{}
}
