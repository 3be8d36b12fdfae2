package tree

import (
	"slices"

	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
	"github.com/kaotoio/kaoto/pkg/util"
)

// Index is the flat cache of nested step records for one step tree. It is
// immutable once built
type Index struct {
	byID    map[api.StepID]int
	byPath  *util.PathTree[int]
	records []api.NestedStep
}

// NestedSteps walks the tree depth-first and returns one record for every
// step that lives inside a branch. Top-level steps produce no record
func NestedSteps(steps api.Steps) []api.NestedStep {
	res := []api.NestedStep{}
	for i := range steps {
		collectNested(&steps[i], path.Of(i), &res)
	}
	return res
}

func collectNested(
	parent *api.Step, parentPath path.Path, res *[]api.NestedStep,
) {
	for j := range parent.Branches {
		branchPath := parentPath.Child(api.BranchesKey, j)
		for k := range parent.Branches[j].Steps {
			st := &parent.Branches[j].Steps[k]
			stepPath := branchPath.Child(api.StepsKey, k)
			*res = append(*res, api.NestedStep{
				StepID:           st.ID,
				ParentID:         parent.ID,
				BranchIndex:      j,
				PathToStep:       stepPath,
				PathToParentStep: parentPath.Clone(),
				PathToBranch:     branchPath.Clone(),
			})
			collectNested(st, stepPath, res)
		}
	}
}

// NewIndex builds the nested step index for a tree
func NewIndex(steps api.Steps) *Index {
	records := NestedSteps(steps)
	idx := &Index{
		byID:    make(map[api.StepID]int, len(records)),
		byPath:  util.NewPathTree[int](),
		records: records,
	}
	for i, rec := range records {
		idx.byID[rec.StepID] = i
		idx.byPath.Insert(rec.PathToStep, i)
	}
	return idx
}

// Len returns the number of nested step records
func (i *Index) Len() int {
	return len(i.records)
}

// Records returns a copy of every record, in depth-first order
func (i *Index) Records() []api.NestedStep {
	res := make([]api.NestedStep, len(i.records))
	for n, rec := range i.records {
		res[n] = rec.Clone()
	}
	return res
}

// Lookup returns the record for a nested step
func (i *Index) Lookup(id api.StepID) (api.NestedStep, bool) {
	n, ok := i.byID[id]
	if !ok {
		return api.NestedStep{}, false
	}
	return i.records[n].Clone(), true
}

// At returns the record for the nested step addressed by p
func (i *Index) At(p path.Path) (api.NestedStep, bool) {
	n, ok := i.byPath.Get(p)
	if !ok {
		return api.NestedStep{}, false
	}
	return i.records[n].Clone(), true
}

// Under returns the records of every nested step at or beneath p, in
// depth-first order
func (i *Index) Under(p path.Path) []api.NestedStep {
	found := i.byPath.Collect(p)
	slices.Sort(found)
	res := make([]api.NestedStep, len(found))
	for n, idx := range found {
		res[n] = i.records[idx].Clone()
	}
	return res
}
