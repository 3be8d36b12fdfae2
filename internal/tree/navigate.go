package tree

import (
	"fmt"

	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

// StepAt returns a copy of the step addressed by p. Paths take the form
// produced by the nested step index: a top-level position followed by any
// number of (branches, j, steps, k) hops
func StepAt(steps api.Steps, p path.Path) (api.Step, error) {
	st, err := stepAt(steps, p)
	if err != nil {
		return api.Step{}, err
	}
	return st.Clone(), nil
}

// BranchAt returns a copy of the branch addressed by p, which must end in a
// (branches, j) hop
func BranchAt(steps api.Steps, p path.Path) (api.Branch, error) {
	b, err := branchAt(steps, p)
	if err != nil {
		return api.Branch{}, err
	}
	return b.Clone(), nil
}

// SequenceAt returns a copy of the sequence holding the step addressed by
// p, the step's position within it, and whether that sequence is the
// flow's top level
func SequenceAt(steps api.Steps, p path.Path) (api.Steps, int, bool, error) {
	if _, err := stepAt(steps, p); err != nil {
		return nil, 0, false, err
	}
	idx, _ := path.Index(p.Last())
	if len(p) == 1 {
		return steps.Clone(), idx, true, nil
	}
	b, err := branchAt(steps, p[:len(p)-2])
	if err != nil {
		return nil, 0, false, err
	}
	return b.Steps.Clone(), idx, false, nil
}

// Find locates a step anywhere in the tree, scanning the top level first
// and then the nested step records
func Find(steps api.Steps, id api.StepID) (api.Step, path.Path, error) {
	p, err := locate(steps, id)
	if err != nil {
		return api.Step{}, nil, err
	}
	st, err := stepAt(steps, p)
	if err != nil {
		return api.Step{}, nil, err
	}
	return st.Clone(), p, nil
}

// Flatten returns copies of every step in the tree, depth-first
func Flatten(steps api.Steps) api.Steps {
	res := api.Steps{}
	Walk(steps, func(st api.Step, _ path.Path) bool {
		res = append(res, st.Clone())
		return true
	})
	return res
}

// Walk visits every step depth-first with the path that addresses it.
// Returning false from fn stops the walk
func Walk(steps api.Steps, fn func(api.Step, path.Path) bool) {
	walk(steps, path.Path{}, true, fn)
}

func walk(
	steps api.Steps, base path.Path, root bool, fn func(api.Step, path.Path) bool,
) bool {
	for i, st := range steps {
		p := base.Child(i)
		if !root {
			p = base.Child(api.StepsKey, i)
		}
		if !fn(st, p) {
			return false
		}
		for j, b := range st.Branches {
			if !walk(b.Steps, p.Child(api.BranchesKey, j), false, fn) {
				return false
			}
		}
	}
	return true
}

func locate(steps api.Steps, id api.StepID) (path.Path, error) {
	if i := steps.IndexOf(id); i >= 0 {
		return path.Of(i), nil
	}
	for _, rec := range NestedSteps(steps) {
		if rec.StepID == id {
			return rec.PathToStep, nil
		}
	}
	return nil, fmt.Errorf("%w: step %s", api.ErrNotFound, id)
}

func stepAt(steps api.Steps, p path.Path) (*api.Step, error) {
	if len(p) == 0 {
		return nil, invalidPath(p, "empty path")
	}
	seq := steps
	var cur *api.Step
	pos := 0
	for {
		i, ok := path.Index(p[pos])
		if !ok || i >= len(seq) {
			return nil, invalidPath(p, "no step at "+p[:pos+1].String())
		}
		cur = &seq[i]
		pos++
		if pos == len(p) {
			return cur, nil
		}
		if len(p)-pos < 3 || p[pos] != api.BranchesKey ||
			p[pos+2] != api.StepsKey {
			return nil, invalidPath(p, "expected branch hop")
		}
		j, ok := path.Index(p[pos+1])
		if !ok || j >= len(cur.Branches) {
			return nil, invalidPath(p, "no branch at "+p[:pos+2].String())
		}
		seq = cur.Branches[j].Steps
		pos += 3
		if pos == len(p) {
			return nil, invalidPath(p, "path ends at a step list")
		}
	}
}

func branchAt(steps api.Steps, p path.Path) (*api.Branch, error) {
	if len(p) < 3 || p[len(p)-2] != api.BranchesKey {
		return nil, invalidPath(p, "not a branch path")
	}
	owner, err := stepAt(steps, p[:len(p)-2])
	if err != nil {
		return nil, err
	}
	j, ok := path.Index(p[len(p)-1])
	if !ok || j >= len(owner.Branches) {
		return nil, invalidPath(p, "no branch at "+p.String())
	}
	return &owner.Branches[j], nil
}

func invalidPath(p path.Path, reason string) error {
	return fmt.Errorf("%w: %s (%s)", api.ErrInvalidPath, p, reason)
}
