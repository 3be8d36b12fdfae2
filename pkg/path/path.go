package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node inside a tree of maps and slices. Segments that
// look like non-negative integers address slice elements, anything else
// addresses a map key
type Path []string

// Separator joins segments in the textual form of a Path
const Separator = "."

var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Of builds a Path from mixed string and int segments
func Of(segments ...any) Path {
	res := make(Path, 0, len(segments))
	for _, s := range segments {
		switch s := s.(type) {
		case int:
			res = append(res, strconv.Itoa(s))
		case string:
			res = append(res, s)
		default:
			res = append(res, fmt.Sprint(s))
		}
	}
	return res
}

// Parse splits a dotted path string into its segments
func Parse(s string) Path {
	if s == "" {
		return Path{}
	}
	return strings.Split(s, Separator)
}

// Index reports whether the segment addresses a slice element, and which
func Index(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Child returns a new Path extended by the given segments. The receiver is
// never modified
func (p Path) Child(segments ...any) Path {
	res := make(Path, 0, len(p)+len(segments))
	res = append(res, p...)
	return append(res, Of(segments...)...)
}

// Parent returns the Path without its last segment
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p.Clone()[:len(p)-1]
}

// Last returns the final segment of the Path, or an empty string
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Clone returns an independent copy of the Path
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	res := make(Path, len(p))
	copy(res, p)
	return res
}

// Equal reports whether both paths contain the same segments
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the Path starts with the given prefix
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the Path in its dotted form
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// GJSON renders the Path as a gjson query. Keys containing characters that
// gjson treats as syntax are escaped
func (p Path) GJSON() string {
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		for _, c := range seg {
			switch c {
			case '.', '*', '?', '|', '#', '@', '\\':
				sb.WriteByte('\\')
			}
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
