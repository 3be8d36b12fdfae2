package validate

import (
	"errors"
	"fmt"

	"github.com/kaotoio/kaoto/pkg/api"
)

// Rules is the default placement policy for step tree edits. It checks
// role positions and branch counts but never touches the tree itself
type Rules struct{}

var (
	ErrStartMisplaced = errors.New("start step must head the flow")
	ErrStartNested    = errors.New("start step cannot live inside a branch")
	ErrBeforeStart    = errors.New("no step may precede a start step")
	ErrAfterEnd       = errors.New("no step may follow an end step")
	ErrEndNotLast     = errors.New("end step must close its sequence")
	ErrRoleMismatch   = errors.New("replacement role incompatible")
	ErrBranchLimit    = errors.New("branch limit reached")
	ErrBranchMinimum  = errors.New("branch minimum reached")
)

// New returns the default placement rules
func New() *Rules {
	return &Rules{}
}

// CanInsert reports whether s may be placed before position idx of seq.
// Root is true when seq is a flow's top-level sequence
func (r *Rules) CanInsert(seq api.Steps, idx int, s api.Step, root bool) error {
	if err := checkStart(s, idx, root); err != nil {
		return err
	}
	if idx < len(seq) {
		if seq[idx].Role.IsStart() {
			return fmt.Errorf("%w: %s", ErrBeforeStart, seq[idx].ID)
		}
		if s.Role.IsEnd() {
			return fmt.Errorf("%w: %s", ErrEndNotLast, s.Name)
		}
	}
	if idx > 0 && idx <= len(seq) && seq[idx-1].Role.IsEnd() {
		return fmt.Errorf("%w: %s", ErrAfterEnd, seq[idx-1].ID)
	}
	return nil
}

// CanReplace reports whether s may take the place of the step at position
// idx of seq
func (r *Rules) CanReplace(seq api.Steps, idx int, s api.Step, root bool) error {
	if idx < 0 || idx >= len(seq) {
		return fmt.Errorf("%w: %d (len %d)", api.ErrIndexOutOfRange, idx, len(seq))
	}
	cur := seq[idx]
	if cur.Role.IsStart() != s.Role.IsStart() {
		return fmt.Errorf("%w: %s cannot replace %s (%s)",
			ErrRoleMismatch, roleOf(s), cur.ID, roleOf(cur))
	}
	if err := checkStart(s, idx, root); err != nil {
		return err
	}
	if s.Role.IsEnd() && idx < len(seq)-1 {
		return fmt.Errorf("%w: %s", ErrEndNotLast, s.Name)
	}
	return nil
}

// CanAddBranch reports whether owner may take one more branch
func (r *Rules) CanAddBranch(owner api.Step) error {
	if !owner.SupportsBranching() {
		return fmt.Errorf("%w: %s", api.ErrBranchingUnsupported, owner.ID)
	}
	if !owner.BranchSupport.CanAdd(len(owner.Branches)) {
		return fmt.Errorf("%w: %s has %d of %d",
			ErrBranchLimit, owner.ID, len(owner.Branches),
			owner.BranchSupport.MaxBranches)
	}
	return nil
}

// CanDeleteBranch reports whether owner may give up one of its branches
func (r *Rules) CanDeleteBranch(owner api.Step) error {
	if len(owner.Branches)-1 < owner.BranchSupport.MinBranches {
		return fmt.Errorf("%w: %s needs %d",
			ErrBranchMinimum, owner.ID, owner.BranchSupport.MinBranches)
	}
	return nil
}

func checkStart(s api.Step, idx int, root bool) error {
	if !s.Role.IsStart() {
		return nil
	}
	if !root {
		return fmt.Errorf("%w: %s", ErrStartNested, s.Name)
	}
	if idx != 0 {
		return fmt.Errorf("%w: %s at %d", ErrStartMisplaced, s.Name, idx)
	}
	return nil
}

func roleOf(s api.Step) api.Role {
	if s.Role == "" {
		return api.RoleMiddle
	}
	return s.Role
}
