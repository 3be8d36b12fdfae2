package assert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaotoio/kaoto/internal/config"
	"github.com/kaotoio/kaoto/internal/tree"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

// Wrapper wraps testify assertions with step tree helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *require.Assertions
}

// New creates a new test assertion wrapper with both assert and require from
// testify plus step tree helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// StepIDs asserts the identifiers of a sequence, in order
func (w *Wrapper) StepIDs(steps api.Steps, expected ...api.StepID) {
	w.Helper()
	actual := make([]api.StepID, len(steps))
	for i, s := range steps {
		actual[i] = s.ID
	}
	w.Equal(expected, actual)
}

// StepNames asserts the names of a sequence, in order
func (w *Wrapper) StepNames(steps api.Steps, expected ...string) {
	w.Helper()
	actual := make([]string, len(steps))
	for i, s := range steps {
		actual[i] = s.Name
	}
	w.Equal(expected, actual)
}

// UniqueIDs asserts that no two steps in the tree share an identifier
func (w *Wrapper) UniqueIDs(steps api.Steps) {
	w.Helper()
	seen := map[api.StepID]path.Path{}
	tree.Walk(steps, func(s api.Step, p path.Path) bool {
		if prev, ok := seen[s.ID]; ok {
			w.Failf("duplicate step id", "%s at %s and %s", s.ID, prev, p)
		}
		seen[s.ID] = p
		return true
	})
}

// AttachedTo asserts that every step in the tree points back at the flow
func (w *Wrapper) AttachedTo(steps api.Steps, flowID api.FlowID) {
	w.Helper()
	tree.Walk(steps, func(s api.Step, p path.Path) bool {
		w.Equal(flowID, s.FlowID, "step at %s", p)
		return true
	})
}

// IndexConsistent asserts that every nested step appears exactly once in
// the index and that each record resolves to the step it names
func (w *Wrapper) IndexConsistent(steps api.Steps, records []api.NestedStep) {
	w.Helper()
	nested := 0
	tree.Walk(steps, func(_ api.Step, p path.Path) bool {
		if len(p) > 1 {
			nested++
		}
		return true
	})
	w.Len(records, nested)

	seen := map[api.StepID]bool{}
	for _, rec := range records {
		w.False(seen[rec.StepID], "record repeated for %s", rec.StepID)
		seen[rec.StepID] = true

		st, err := tree.StepAt(steps, rec.PathToStep)
		if w.NoError(err) {
			w.Equal(rec.StepID, st.ID)
		}
		parent, err := tree.StepAt(steps, rec.PathToParentStep)
		if w.NoError(err) {
			w.Equal(rec.ParentID, parent.ID)
		}
		_, err = tree.BranchAt(steps, rec.PathToBranch)
		w.NoError(err)
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.NotEmpty(cfg.DefaultDSL)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, expected error) {
	w.Helper()
	w.ErrorIs(cfg.Validate(), expected)
}
