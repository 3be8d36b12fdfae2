package api

import (
	"regexp"
	"strconv"
	"strings"
)

type (
	// FlowID identifies a flow for its whole lifetime
	FlowID string

	// StepID is the position-derived identifier of a step within its flow
	StepID string

	// BranchID is the position-derived identifier of a branch
	BranchID string
)

const (
	rootSeparator   = "_"
	nestedSeparator = "|"
	indexSeparator  = "-"
	branchName      = "branch"
)

// nameEscaper keeps the nesting separator out of step names so that a
// name can never imitate a deeper position
var nameEscaper = strings.NewReplacer("%", "%25", nestedSeparator, "%7C")

// InvalidIDChars matches characters not permitted in generated flow IDs.
// Valid characters are: letters, digits, underscore, dot, hyphen, plus, space
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-+ ]`)

// SanitizeID lowercases an ID, removes invalid characters, replaces spaces
// with hyphens, and trims leading and trailing hyphens
func SanitizeID[T ~string](id T) T {
	lower := strings.ToLower(string(id))
	sanitized := InvalidIDChars.ReplaceAllString(lower, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	return T(strings.Trim(sanitized, "-"))
}

// RootStepID derives the identifier of a top-level step
func RootStepID(flowID FlowID, name string, idx int) StepID {
	return StepID(formatID(string(flowID), rootSeparator, name, idx))
}

// NestedStepID derives the identifier of a step living inside a branch
func NestedStepID(branchID BranchID, name string, idx int) StepID {
	return StepID(formatID(string(branchID), nestedSeparator, name, idx))
}

// NewBranchID derives the identifier of a step's branch
func NewBranchID(stepID StepID, idx int) BranchID {
	return BranchID(formatID(string(stepID), nestedSeparator, branchName, idx))
}

func formatID(prefix, sep, name string, idx int) string {
	return prefix + sep + nameEscaper.Replace(name) + indexSeparator +
		strconv.Itoa(idx)
}

// IsDescendantOf reports whether the identifier was derived beneath the
// given ancestor step
func (id StepID) IsDescendantOf(ancestor StepID) bool {
	return strings.HasPrefix(string(id), string(ancestor)+nestedSeparator)
}

// IsNested reports whether the identifier belongs to a step inside a branch
func (id StepID) IsNested() bool {
	return strings.Contains(string(id), nestedSeparator)
}

// Owner returns the identifier of the step that owns the branch
func (id BranchID) Owner() StepID {
	i := strings.LastIndex(string(id), nestedSeparator)
	if i < 0 {
		return ""
	}
	return StepID(id[:i])
}
