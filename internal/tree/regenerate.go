package tree

import "github.com/kaotoio/kaoto/pkg/api"

// Regenerate returns a deep copy of steps with every step and branch
// identifier recomputed from its position, and every step attached to the
// given flow. The same names in the same positions always yield the same
// identifiers
func Regenerate(flowID api.FlowID, steps api.Steps) api.Steps {
	res := steps.Clone()
	if res == nil {
		res = api.Steps{}
	}
	for i := range res {
		s := &res[i]
		s.ID = api.RootStepID(flowID, s.Name, i)
		regenerateBranches(flowID, s)
	}
	return res
}

func regenerateBranches(flowID api.FlowID, s *api.Step) {
	s.FlowID = flowID
	for j := range s.Branches {
		b := &s.Branches[j]
		b.ID = api.NewBranchID(s.ID, j)
		for k := range b.Steps {
			child := &b.Steps[k]
			child.ID = api.NestedStepID(b.ID, child.Name, k)
			regenerateBranches(flowID, child)
		}
	}
}
