package tree

import (
	"fmt"
	"slices"

	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

// Append adds a step to the end of the top-level sequence
func Append(steps api.Steps, s api.Step) api.Steps {
	return append(steps.Clone(), s.Clone())
}

// InsertAt places a step before position idx of the top-level sequence. An
// idx equal to the sequence length appends
func InsertAt(steps api.Steps, idx int, s api.Step) (api.Steps, error) {
	if idx < 0 || idx > len(steps) {
		return nil, indexOutOfRange(idx, len(steps))
	}
	return slices.Insert(steps.Clone(), idx, s.Clone()), nil
}

// InsertPath places a step before the position addressed by p, which may
// be a top-level index or a step slot inside a branch. A final index equal
// to the containing sequence's length appends to it
func InsertPath(steps api.Steps, p path.Path, s api.Step) (api.Steps, error) {
	if len(p) == 0 {
		return nil, invalidPath(p, "empty")
	}
	k, ok := path.Index(p.Last())
	if !ok {
		return nil, invalidPath(p, "last segment is not an index")
	}
	if len(p) == 1 {
		return InsertAt(steps, k, s)
	}
	if p[len(p)-2] != api.StepsKey {
		return nil, invalidPath(p, "does not address a branch step")
	}
	res := steps.Clone()
	b, err := branchAt(res, p[:len(p)-2])
	if err != nil {
		return nil, err
	}
	if k > len(b.Steps) {
		return nil, indexOutOfRange(k, len(b.Steps))
	}
	b.Steps = slices.Insert(b.Steps, k, s.Clone())
	return res, nil
}

// ReplaceAt swaps the top-level step at position idx for s
func ReplaceAt(steps api.Steps, idx int, s api.Step) (api.Steps, error) {
	if idx < 0 || idx >= len(steps) {
		return nil, indexOutOfRange(idx, len(steps))
	}
	res := steps.Clone()
	res[idx] = s.Clone()
	return res, nil
}

// ReplacePath swaps the step addressed by p for s. The path must resolve to
// an existing step
func ReplacePath(steps api.Steps, p path.Path, s api.Step) (api.Steps, error) {
	res := steps.Clone()
	target, err := stepAt(res, p)
	if err != nil {
		return nil, err
	}
	*target = s.Clone()
	return res, nil
}

// ReplaceByID swaps the step carrying id, wherever it lives, for s
func ReplaceByID(steps api.Steps, id api.StepID, s api.Step) (api.Steps, error) {
	p, err := locate(steps, id)
	if err != nil {
		return nil, err
	}
	return ReplacePath(steps, p, s)
}

// Delete removes the step carrying id from its containing sequence. Any
// branches the step owned are discarded with it
func Delete(steps api.Steps, id api.StepID) (api.Steps, error) {
	if i := steps.IndexOf(id); i >= 0 {
		return slices.Delete(steps.Clone(), i, i+1), nil
	}
	rec, ok := NewIndex(steps).Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: step %s", api.ErrNotFound, id)
	}
	res := steps.Clone()
	b, err := branchAt(res, rec.PathToBranch)
	if err != nil {
		return nil, err
	}
	k, _ := path.Index(rec.PathToStep.Last())
	b.Steps = slices.Delete(b.Steps, k, k+1)
	return res, nil
}

// DeleteBranch removes one branch, and everything in it, from the step
// carrying stepID. The step and its other branches are kept
func DeleteBranch(
	steps api.Steps, stepID api.StepID, branchID api.BranchID,
) (api.Steps, error) {
	res := steps.Clone()
	owner, err := mutableStep(res, stepID)
	if err != nil {
		return nil, err
	}
	j := slices.IndexFunc(owner.Branches, func(b api.Branch) bool {
		return b.ID == branchID
	})
	if j < 0 {
		return nil, fmt.Errorf("%w: branch %s", api.ErrNotFound, branchID)
	}
	owner.Branches = slices.Delete(owner.Branches, j, j+1)
	return res, nil
}

// AddBranch appends a branch to the step carrying stepID
func AddBranch(
	steps api.Steps, stepID api.StepID, b api.Branch,
) (api.Steps, error) {
	res := steps.Clone()
	owner, err := mutableStep(res, stepID)
	if err != nil {
		return nil, err
	}
	if !owner.SupportsBranching() {
		return nil, fmt.Errorf("%w: %s", api.ErrBranchingUnsupported, stepID)
	}
	owner.Branches = append(owner.Branches, b.Clone())
	return res, nil
}

func mutableStep(steps api.Steps, id api.StepID) (*api.Step, error) {
	p, err := locate(steps, id)
	if err != nil {
		return nil, err
	}
	return stepAt(steps, p)
}

func indexOutOfRange(idx, size int) error {
	return fmt.Errorf("%w: %d (len %d)", api.ErrIndexOutOfRange, idx, size)
}
