package api

import (
	"errors"
	"fmt"
	"slices"
)

type (
	// Role constrains where a step may appear within a flow
	Role string

	// Parameters holds a step's opaque configuration
	Parameters map[string]any

	// Step is a single source, processor, or sink in a flow
	Step struct {
		Parameters    Parameters    `json:"parameters,omitempty"`
		ID            StepID        `json:"id,omitempty"`
		FlowID        FlowID        `json:"flowId,omitempty"`
		Name          string        `json:"name"`
		Kind          string        `json:"kind,omitempty"`
		Role          Role          `json:"role,omitempty"`
		Branches      []Branch      `json:"branches,omitempty"`
		BranchSupport BranchSupport `json:"branchSupport"`
	}

	// Steps is an ordered sequence of steps
	Steps []Step

	// BranchSupport declares how many branches a step may own. A maximum of
	// Unbounded places no upper limit
	BranchSupport struct {
		MinBranches int `json:"minBranches"`
		MaxBranches int `json:"maxBranches"`
	}

	// Branch is an ordered sequence of steps owned by a parent step
	Branch struct {
		ID        BranchID `json:"id,omitempty"`
		Label     string   `json:"label,omitempty"`
		Condition string   `json:"condition,omitempty"`
		Steps     Steps    `json:"steps"`
	}
)

const (
	RoleStart  Role = "START"
	RoleMiddle Role = "MIDDLE"
	RoleEnd    Role = "END"

	// Unbounded as MaxBranches allows any number of branches
	Unbounded = -1
)

var (
	ErrStepNameEmpty        = errors.New("step name empty")
	ErrInvalidRole          = errors.New("invalid step role")
	ErrInvalidBranchSupport = errors.New("invalid branch support")
	ErrBranchingUnsupported = errors.New("step does not support branches")
)

// IsStart reports whether the role only fits the head of a flow
func (r Role) IsStart() bool {
	return r == RoleStart
}

// IsEnd reports whether the role only fits the tail of a sequence
func (r Role) IsEnd() bool {
	return r == RoleEnd
}

// IsValid reports whether the role is one of the known roles. An empty role
// is treated as MIDDLE
func (r Role) IsValid() bool {
	switch r {
	case "", RoleStart, RoleMiddle, RoleEnd:
		return true
	default:
		return false
	}
}

// Supported reports whether any branches are permitted
func (b BranchSupport) Supported() bool {
	return b.MaxBranches != 0
}

// Allows reports whether a step may own n branches
func (b BranchSupport) Allows(n int) bool {
	if n < b.MinBranches {
		return false
	}
	return b.MaxBranches == Unbounded || n <= b.MaxBranches
}

// CanAdd reports whether one more branch fits next to the current count
func (b BranchSupport) CanAdd(current int) bool {
	if !b.Supported() {
		return false
	}
	return b.MaxBranches == Unbounded || current < b.MaxBranches
}

// Validate checks the branch support declaration itself
func (b BranchSupport) Validate() error {
	if b.MinBranches < 0 {
		return fmt.Errorf("%w: min %d", ErrInvalidBranchSupport, b.MinBranches)
	}
	if b.MaxBranches < Unbounded {
		return fmt.Errorf("%w: max %d", ErrInvalidBranchSupport, b.MaxBranches)
	}
	if b.MaxBranches != Unbounded && b.MaxBranches < b.MinBranches {
		return fmt.Errorf("%w: max %d < min %d",
			ErrInvalidBranchSupport, b.MaxBranches, b.MinBranches)
	}
	return nil
}

// SupportsBranching reports whether the step may own branches at all
func (s *Step) SupportsBranching() bool {
	return s.BranchSupport.Supported()
}

// ContainsBranches reports whether the step currently owns any branches
func (s *Step) ContainsBranches() bool {
	return len(s.Branches) > 0
}

// Validate checks the structural shape of the step and everything nested
// beneath it
func (s *Step) Validate() error {
	if s.Name == "" {
		return ErrStepNameEmpty
	}
	if !s.Role.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, s.Role)
	}
	if err := s.BranchSupport.Validate(); err != nil {
		return err
	}
	if !s.SupportsBranching() && s.ContainsBranches() {
		return fmt.Errorf("%w: %s", ErrBranchingUnsupported, s.Name)
	}
	for _, b := range s.Branches {
		if err := b.Steps.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the step, its branches and its parameters
func (s Step) Clone() Step {
	res := s
	res.Parameters = s.Parameters.Clone()
	if s.Branches != nil {
		res.Branches = make([]Branch, len(s.Branches))
		for i, b := range s.Branches {
			res.Branches[i] = b.Clone()
		}
	}
	return res
}

// Clone returns a deep copy of the branch
func (b Branch) Clone() Branch {
	res := b
	res.Steps = b.Steps.Clone()
	return res
}

// Clone returns a deep copy of every step in the sequence
func (s Steps) Clone() Steps {
	if s == nil {
		return nil
	}
	res := make(Steps, len(s))
	for i, st := range s {
		res[i] = st.Clone()
	}
	return res
}

// Validate checks every step in the sequence
func (s Steps) Validate() error {
	for i := range s {
		if err := s[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IndexOf returns the position of the step with the given identifier in
// this sequence only, or -1
func (s Steps) IndexOf(id StepID) int {
	return slices.IndexFunc(s, func(st Step) bool {
		return st.ID == id
	})
}

// Clone returns a deep copy of the parameters, including nested maps and
// slices
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	res := make(Parameters, len(p))
	for k, v := range p {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, e := range v {
			res[k] = cloneValue(e)
		}
		return res
	case Parameters:
		return v.Clone()
	case []any:
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = cloneValue(e)
		}
		return res
	default:
		return v
	}
}
