package flows

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kaotoio/kaoto/internal/config"
	"github.com/kaotoio/kaoto/internal/tree"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

type (
	// Collection owns zero or more independent flows and dispatches edits
	// to the right one
	Collection struct {
		validator Validator
		publisher Publisher
		config    *config.Config
		state     atomic.Pointer[state]
		mu        sync.Mutex
	}

	// Dependencies are the optional collaborators of a Collection
	Dependencies struct {
		Validator Validator
		Publisher Publisher
	}

	// Validator decides whether an edit is semantically legal before the
	// collection performs it
	Validator interface {
		CanInsert(seq api.Steps, idx int, s api.Step, root bool) error
		CanReplace(seq api.Steps, idx int, s api.Step, root bool) error
		CanAddBranch(owner api.Step) error
		CanDeleteBranch(owner api.Step) error
	}

	// Publisher receives every state the collection commits, in order
	Publisher interface {
		Publish(*api.FlowsState)
	}

	state struct {
		indexes map[api.FlowID]*tree.Index
		flows   []api.Flow
		version int64
	}
)

// New creates an empty collection. A nil cfg selects the default
// configuration
func New(cfg *config.Config, deps Dependencies) *Collection {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	c := &Collection{
		validator: deps.Validator,
		publisher: deps.Publisher,
		config:    cfg,
	}
	c.state.Store(&state{
		indexes: map[api.FlowID]*tree.Index{},
		flows:   []api.Flow{},
	})
	return c
}

// Flows returns copies of every flow, in creation order
func (c *Collection) Flows() []api.Flow {
	s := c.state.Load()
	res := make([]api.Flow, len(s.flows))
	for i, f := range s.flows {
		res[i] = f.Clone()
	}
	return res
}

// Flow returns a copy of one flow
func (c *Collection) Flow(id api.FlowID) (api.Flow, error) {
	s := c.state.Load()
	i, err := s.find(id)
	if err != nil {
		return api.Flow{}, err
	}
	return s.flows[i].Clone(), nil
}

// NestedSteps returns the nested step records of one flow
func (c *Collection) NestedSteps(id api.FlowID) ([]api.NestedStep, error) {
	idx, err := c.Index(id)
	if err != nil {
		return nil, err
	}
	return idx.Records(), nil
}

// Index returns the nested step index of one flow. The index belongs to
// the state it was read from and is replaced, never updated, by later edits
func (c *Collection) Index(id api.FlowID) (*tree.Index, error) {
	s := c.state.Load()
	if _, err := s.find(id); err != nil {
		return nil, err
	}
	return s.indexes[id], nil
}

// FindStep locates a step anywhere in one flow
func (c *Collection) FindStep(
	flowID api.FlowID, stepID api.StepID,
) (api.Step, path.Path, error) {
	s := c.state.Load()
	i, err := s.find(flowID)
	if err != nil {
		return api.Step{}, nil, err
	}
	return tree.Find(s.flows[i].Steps, stepID)
}

// Descendants returns the records of every step nested beneath stepID
func (c *Collection) Descendants(
	flowID api.FlowID, stepID api.StepID,
) ([]api.NestedStep, error) {
	s := c.state.Load()
	i, err := s.find(flowID)
	if err != nil {
		return nil, err
	}
	_, p, err := tree.Find(s.flows[i].Steps, stepID)
	if err != nil {
		return nil, err
	}
	res := []api.NestedStep{}
	for _, rec := range s.indexes[flowID].Under(p) {
		if rec.StepID != stepID {
			res = append(res, rec)
		}
	}
	return res, nil
}

// Version returns the number of committed edits
func (c *Collection) Version() int64 {
	return c.state.Load().version
}

// Snapshot returns a deep copy of the current state
func (c *Collection) Snapshot() *api.FlowsState {
	return c.state.Load().flowsState()
}

// update runs fn against the current state under the writer lock, then
// swaps in and publishes the state it returns. A nil state means nothing
// changed
func (c *Collection) update(fn func(*state) (*state, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.state.Load()
	next, err := fn(cur)
	if err != nil || next == nil {
		return err
	}
	next.version = cur.version + 1
	c.state.Store(next)
	if c.publisher != nil {
		c.publisher.Publish(next.flowsState())
	}
	return nil
}

func (s *state) find(id api.FlowID) (int, error) {
	i := slices.IndexFunc(s.flows, func(f api.Flow) bool {
		return f.ID == id
	})
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", api.ErrFlowNotFound, id)
	}
	return i, nil
}

// withSteps returns a successor state where flow i carries the regenerated
// steps and a fresh index. Other flows and their indexes are shared
func (s *state) withSteps(i int, steps api.Steps) *state {
	flows := slices.Clone(s.flows)
	f := flows[i]
	f.Steps = tree.Regenerate(f.ID, steps)
	flows[i] = f

	indexes := maps.Clone(s.indexes)
	indexes[f.ID] = tree.NewIndex(f.Steps)
	return &state{
		indexes: indexes,
		flows:   flows,
		version: s.version,
	}
}

func (s *state) flowsState() *api.FlowsState {
	res := &api.FlowsState{
		Nested:  make(map[api.FlowID][]api.NestedStep, len(s.flows)),
		Flows:   make([]api.Flow, len(s.flows)),
		Version: s.version,
	}
	for i, f := range s.flows {
		res.Flows[i] = f.Clone()
		res.Nested[f.ID] = s.indexes[f.ID].Records()
	}
	return res
}

func newState(flows []api.Flow) *state {
	res := &state{
		indexes: make(map[api.FlowID]*tree.Index, len(flows)),
		flows:   make([]api.Flow, len(flows)),
	}
	for i, f := range flows {
		f = f.Clone()
		f.Steps = tree.Regenerate(f.ID, f.Steps)
		res.flows[i] = f
		res.indexes[f.ID] = tree.NewIndex(f.Steps)
	}
	return res
}
