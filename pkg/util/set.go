package util

// Set holds distinct comparable values, such as the flow identifiers already
// claimed in a collection
type Set[K comparable] map[K]struct{}

// SetOf creates a set holding the given elements
func SetOf[K comparable](elements ...K) Set[K] {
	s := make(Set[K], len(elements))
	for _, elem := range elements {
		s[elem] = struct{}{}
	}
	return s
}

// SetFrom creates a set from the keys extracted out of each item
func SetFrom[T any, K comparable](items []T, key func(T) K) Set[K] {
	s := make(Set[K], len(items))
	for _, item := range items {
		s[key(item)] = struct{}{}
	}
	return s
}

// Add inserts the element, reporting false when it was already present
func (s Set[K]) Add(key K) bool {
	if s.Contains(key) {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Contains reports whether the element is present
func (s Set[K]) Contains(key K) bool {
	_, exists := s[key]
	return exists
}

// FirstFree returns the first candidate, for n = 1, 2, ..., that is not
// already in the set
func (s Set[K]) FirstFree(candidate func(n int) K) K {
	for n := 1; ; n++ {
		if k := candidate(n); !s.Contains(k) {
			return k
		}
	}
}

// Len returns the number of elements
func (s Set[K]) Len() int {
	return len(s)
}
