package flows_test

import (
	"sync"
	"testing"

	"github.com/kaotoio/kaoto/internal/assert"
	"github.com/kaotoio/kaoto/internal/assert/helpers"
	"github.com/kaotoio/kaoto/internal/flows"
	"github.com/kaotoio/kaoto/internal/validate"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

func newCollection(deps flows.Dependencies) *flows.Collection {
	return flows.New(helpers.NewTestConfig(), deps)
}

func scenario(as *assert.Wrapper, deps flows.Dependencies) *flows.Collection {
	as.Helper()
	c := newCollection(deps)
	_, err := c.AddFlow("Route", helpers.ScenarioFlowID)
	as.Require.NoError(err)
	for _, st := range helpers.ScenarioSteps() {
		as.Require.NoError(
			c.InsertStep(helpers.ScenarioFlowID, st, flows.Append{}),
		)
	}
	return c
}

func TestScenarioIdentifiers(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.StepIDs(f.Steps, "route-1_timer-0", "route-1_choice-1")
	as.StepIDs(f.Steps[1].Branches[0].Steps, "route-1_choice-1|branch-0|log-0")
	as.AttachedTo(f.Steps, "route-1")

	nested, err := c.NestedSteps("route-1")
	as.Require.NoError(err)
	as.Require.Len(nested, 1)
	as.Equal(api.StepID("route-1_choice-1|branch-0|log-0"), nested[0].StepID)
	as.Equal(
		path.Path{"1", "branches", "0", "steps", "0"}, nested[0].PathToStep,
	)
	as.IndexConsistent(f.Steps, nested)
}

func TestDeleteStepScenario(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	as.Require.NoError(c.DeleteStep("route-1", "route-1_choice-1"))

	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.StepIDs(f.Steps, "route-1_timer-0")

	nested, err := c.NestedSteps("route-1")
	as.Require.NoError(err)
	as.Empty(nested)
}

func TestInsertStepScenario(t *testing.T) {
	as := assert.New(t)
	c := newCollection(flows.Dependencies{})

	_, err := c.AddFlow("Route", "route-1")
	as.Require.NoError(err)
	as.Require.NoError(c.InsertStep(
		"route-1", helpers.NewStartStep("timer"), flows.Append{},
	))
	as.Require.NoError(c.InsertStep(
		"route-1", helpers.NewStep("log"), flows.Append{},
	))
	as.Require.NoError(c.InsertStep(
		"route-1", helpers.NewStep("filter"), flows.Insert{Index: 1},
	))

	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.StepNames(f.Steps, "timer", "filter", "log")
	as.StepIDs(f.Steps, "route-1_timer-0", "route-1_filter-1", "route-1_log-2")
}

func TestPlacements(t *testing.T) {
	as := assert.New(t)

	as.Equal(flows.ModeAppend, flows.Append{}.Mode())
	as.Equal(flows.ModeInsert, flows.Insert{}.Mode())
	as.Equal(flows.ModeInsert, flows.InsertPath{}.Mode())
	as.Equal(flows.ModeReplace, flows.Replace{}.Mode())
	as.Equal(flows.ModeReplace, flows.ReplacePath{}.Mode())
	as.Equal(flows.ModeReplace, flows.ReplaceStep{}.Mode())

	t.Run("replace_index", func(t *testing.T) {
		as := assert.New(t)
		c := scenario(as, flows.Dependencies{})
		as.Require.NoError(c.InsertStep(
			"route-1", helpers.NewStartStep("cron"), flows.Replace{Index: 0},
		))
		f, _ := c.Flow("route-1")
		as.StepIDs(f.Steps, "route-1_cron-0", "route-1_choice-1")
	})

	t.Run("replace_path", func(t *testing.T) {
		as := assert.New(t)
		c := scenario(as, flows.Dependencies{})
		nested, _ := c.NestedSteps("route-1")
		as.Require.NoError(c.InsertStep(
			"route-1", helpers.NewStep("marshal"),
			flows.ReplacePath{Path: nested[0].PathToStep},
		))
		f, _ := c.Flow("route-1")
		as.StepIDs(f.Steps[1].Branches[0].Steps,
			"route-1_choice-1|branch-0|marshal-0",
		)
	})

	t.Run("replace_step", func(t *testing.T) {
		as := assert.New(t)
		c := scenario(as, flows.Dependencies{})
		as.Require.NoError(c.InsertStep(
			"route-1", helpers.NewStep("to"),
			flows.ReplaceStep{ID: "route-1_choice-1|branch-0|log-0"},
		))
		f, _ := c.Flow("route-1")
		as.StepNames(f.Steps[1].Branches[0].Steps, "to")
	})

	t.Run("insert_path", func(t *testing.T) {
		as := assert.New(t)
		c := scenario(as, flows.Dependencies{})
		as.Require.NoError(c.InsertStep(
			"route-1", helpers.NewStep("marshal"),
			flows.InsertPath{Path: path.Of(1, "branches", 0, "steps", 1)},
		))
		f, _ := c.Flow("route-1")
		as.StepIDs(f.Steps[1].Branches[0].Steps,
			"route-1_choice-1|branch-0|log-0",
			"route-1_choice-1|branch-0|marshal-1",
		)
		nested, _ := c.NestedSteps("route-1")
		as.IndexConsistent(f.Steps, nested)
	})

	t.Run("errors_propagate", func(t *testing.T) {
		as := assert.New(t)
		c := scenario(as, flows.Dependencies{})
		as.ErrorIs(c.InsertStep(
			"route-1", helpers.NewStep("log"), flows.Insert{Index: -1},
		), api.ErrIndexOutOfRange)
		as.ErrorIs(c.InsertStep(
			"route-1", helpers.NewStep("log"), flows.Replace{Index: 2},
		), api.ErrIndexOutOfRange)
		as.ErrorIs(c.InsertStep(
			"route-1", helpers.NewStep("log"),
			flows.ReplacePath{Path: path.Of(1, "branches", 4, "steps", 0)},
		), api.ErrInvalidPath)
		as.ErrorIs(c.InsertStep(
			"route-1", helpers.NewStep("log"),
			flows.ReplaceStep{ID: "route-1_missing-9"},
		), api.ErrNotFound)
		as.Equal(int64(3), c.Version())
	})
}

func TestInvalidPayload(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	as.ErrorIs(
		c.InsertStep("route-1", api.Step{}, flows.Append{}),
		api.ErrStepNameEmpty,
	)

	st := helpers.NewStep("log")
	st.Branches = []api.Branch{helpers.NewBranch()}
	as.ErrorIs(
		c.InsertStep("route-1", st, flows.Append{}),
		api.ErrBranchingUnsupported,
	)
}

func TestUnknownFlow(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})
	version := c.Version()

	as.ErrorIs(
		c.InsertStep("route-9", helpers.NewStep("log"), flows.Append{}),
		api.ErrFlowNotFound,
	)
	as.ErrorIs(
		c.AddBranch("route-9", "route-9_choice-1", helpers.NewBranch()),
		api.ErrFlowNotFound,
	)
	as.ErrorIs(
		c.SetParameter("route-9", "route-9_log-0", path.Of("x"), 1),
		api.ErrFlowNotFound,
	)
	_, err := c.Flow("route-9")
	as.ErrorIs(err, api.ErrFlowNotFound)
	_, err = c.NestedSteps("route-9")
	as.ErrorIs(err, api.ErrFlowNotFound)
	_, _, err = c.FindStep("route-9", "route-9_log-0")
	as.ErrorIs(err, api.ErrFlowNotFound)

	as.NoError(c.DeleteStep("route-9", "route-9_log-0"))
	as.NoError(c.DeleteBranch("route-9", "route-9_choice-1", "x"))
	c.DeleteFlow("route-9")
	as.Equal(version, c.Version())
}

func TestDeleteStepWithLookalikeName(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{Validator: validate.New()})

	as.Require.NoError(c.InsertStep("route-1",
		helpers.NewStep("choice-1|branch-0|log"), flows.Append{},
	))
	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.UniqueIDs(f.Steps)

	as.Require.NoError(
		c.DeleteStep("route-1", "route-1_choice-1|branch-0|log-0"),
	)
	f, err = c.Flow("route-1")
	as.Require.NoError(err)
	as.StepNames(f.Steps, "timer", "choice", "choice-1|branch-0|log")
	as.Empty(f.Steps[1].Branches[0].Steps)
}

func TestDeleteStepNotFound(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	as.ErrorIs(c.DeleteStep("route-1", "route-1_log-7"), api.ErrNotFound)
}

func TestAddFlow(t *testing.T) {
	as := assert.New(t)
	c := newCollection(flows.Dependencies{})

	f, err := c.AddFlow("Route", "")
	as.Require.NoError(err)
	as.Equal(api.FlowID("route-1"), f.ID)
	as.Equal("Route", f.DSL)
	as.NotNil(f.Steps)
	as.Empty(f.Steps)

	f, err = c.AddFlow("", "")
	as.Require.NoError(err)
	as.Equal(api.FlowID("route-2"), f.ID)
	as.Equal("Route", f.DSL)

	f, err = c.AddFlow("Kamelet Binding", "")
	as.Require.NoError(err)
	as.Equal(api.FlowID("kamelet-binding-1"), f.ID)

	c.DeleteFlow("route-1")
	f, err = c.AddFlow("Route", "")
	as.Require.NoError(err)
	as.Equal(api.FlowID("route-1"), f.ID)

	ids := []api.FlowID{}
	for _, f := range c.Flows() {
		ids = append(ids, f.ID)
	}
	as.Equal([]api.FlowID{"route-2", "kamelet-binding-1", "route-1"}, ids)

	_, err = c.AddFlow("Route", "route-2")
	as.ErrorIs(err, api.ErrFlowExists)
}

func TestNilConfigUsesDefaults(t *testing.T) {
	as := assert.New(t)
	c := flows.New(nil, flows.Dependencies{})

	f, err := c.AddFlow("", "")
	as.Require.NoError(err)
	as.Equal(api.FlowID("route-1"), f.ID)
	as.Equal("Route", f.DSL)

	f = c.DeleteAllFlows()
	as.Equal(api.FlowID("route-1"), f.ID)
}

func TestDeleteAllFlows(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})
	_, err := c.AddFlow("Route", "")
	as.Require.NoError(err)

	f := c.DeleteAllFlows()
	as.Equal(api.FlowID("route-1"), f.ID)
	as.Equal("Route", f.DSL)

	all := c.Flows()
	as.Require.Len(all, 1)
	as.Empty(all[0].Steps)

	nested, err := c.NestedSteps("route-1")
	as.Require.NoError(err)
	as.Empty(nested)
}

func TestOtherFlowsUntouched(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})
	_, err := c.AddFlow("Route", "route-2")
	as.Require.NoError(err)
	as.Require.NoError(c.InsertStep(
		"route-2", helpers.NewBranchingStep("choice",
			helpers.NewBranch(helpers.NewStep("log")),
		), flows.Append{},
	))

	before, err := c.Index("route-1")
	as.Require.NoError(err)
	flowBefore, _ := c.Flow("route-1")

	as.Require.NoError(c.InsertStep(
		"route-2", helpers.NewStep("to"), flows.Append{},
	))
	as.Require.NoError(c.DeleteStep("route-2", "route-2_choice-0"))

	after, err := c.Index("route-1")
	as.Require.NoError(err)
	as.Same(before, after)

	flowAfter, _ := c.Flow("route-1")
	as.Equal(flowBefore, flowAfter)

	other, _ := c.Flow("route-2")
	as.StepIDs(other.Steps, "route-2_to-0")
}

func TestBranches(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	as.Require.NoError(c.AddBranch(
		"route-1", "route-1_choice-1",
		helpers.NewBranch(helpers.NewStep("to")),
	))
	f, _ := c.Flow("route-1")
	as.Require.Len(f.Steps[1].Branches, 2)
	as.Equal(api.BranchID("route-1_choice-1|branch-1"), f.Steps[1].Branches[1].ID)
	as.StepIDs(f.Steps[1].Branches[1].Steps, "route-1_choice-1|branch-1|to-0")

	as.Require.NoError(c.DeleteBranch(
		"route-1", "route-1_choice-1", "route-1_choice-1|branch-0",
	))
	f, _ = c.Flow("route-1")
	as.Require.Len(f.Steps[1].Branches, 1)
	as.StepIDs(f.Steps[1].Branches[0].Steps, "route-1_choice-1|branch-0|to-0")

	as.ErrorIs(c.AddBranch(
		"route-1", "route-1_timer-0", helpers.NewBranch(),
	), api.ErrBranchingUnsupported)
	as.ErrorIs(c.DeleteBranch(
		"route-1", "route-1_choice-1", "route-1_choice-1|branch-7",
	), api.ErrNotFound)
}

func TestValidatorRejects(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{Validator: validate.New()})
	version := c.Version()

	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStartStep("cron"), flows.Insert{Index: 1},
	), validate.ErrStartMisplaced)
	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStep("log"), flows.Insert{Index: 0},
	), validate.ErrBeforeStart)
	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStep("log"), flows.Replace{Index: 0},
	), validate.ErrRoleMismatch)
	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStartStep("cron"),
		flows.InsertPath{Path: path.Of(1, "branches", 0, "steps", 0)},
	), validate.ErrStartNested)
	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStartStep("cron"),
		flows.ReplaceStep{ID: "route-1_choice-1|branch-0|log-0"},
	), validate.ErrRoleMismatch)
	as.ErrorIs(c.DeleteBranch(
		"route-1", "route-1_choice-1", "route-1_choice-1|branch-0",
	), validate.ErrBranchMinimum)
	as.Equal(version, c.Version())

	as.NoError(c.InsertStep(
		"route-1", helpers.NewEndStep("to"), flows.Append{},
	))
	as.ErrorIs(c.InsertStep(
		"route-1", helpers.NewStep("log"), flows.Append{},
	), validate.ErrAfterEnd)
}

func TestSetParameter(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})
	logID := api.StepID("route-1_choice-1|branch-0|log-0")

	as.Require.NoError(c.SetParameter(
		"route-1", logID, path.Of("message"), "hello",
	))
	as.Require.NoError(c.SetParameter(
		"route-1", logID, path.Of("headers", 0, "name"), "trace",
	))

	st, p, err := c.FindStep("route-1", logID)
	as.Require.NoError(err)
	as.Equal(path.Of(1, "branches", 0, "steps", 0), p)
	as.Equal("hello", st.Parameters["message"])
	as.Equal(
		[]any{map[string]any{"name": "trace"}}, st.Parameters["headers"],
	)

	as.ErrorIs(c.SetParameter(
		"route-1", logID, path.Of("message", "deeper"), 1,
	), api.ErrInvalidPath)
	as.ErrorIs(c.SetParameter(
		"route-1", logID, path.Of("headers", 999999999), 1,
	), api.ErrIndexOutOfRange)
	as.ErrorIs(c.SetParameter(
		"route-1", "route-1_log-5", path.Of("message"), 1,
	), api.ErrNotFound)
}

func TestDescendants(t *testing.T) {
	as := assert.New(t)
	c := newCollection(flows.Dependencies{})
	as.Require.NoError(c.SetFlows([]api.Flow{
		{ID: "route-1", DSL: "Route", Steps: helpers.DeepSteps()},
	}))

	recs, err := c.Descendants("route-1", "route-1_choice-1")
	as.Require.NoError(err)
	as.Len(recs, 5)

	recs, err = c.Descendants("route-1", "route-1_choice-1|branch-0|split-0")
	as.Require.NoError(err)
	as.Len(recs, 3)
	for _, rec := range recs {
		as.True(rec.StepID.IsDescendantOf("route-1_choice-1|branch-0|split-0"))
	}

	recs, err = c.Descendants("route-1", "route-1_log-2")
	as.Require.NoError(err)
	as.Empty(recs)

	_, err = c.Descendants("route-1", "route-1_nope-4")
	as.ErrorIs(err, api.ErrNotFound)
}

func TestSetFlows(t *testing.T) {
	as := assert.New(t)
	c := newCollection(flows.Dependencies{})

	as.Require.NoError(c.SetFlows([]api.Flow{
		{ID: "route-1", DSL: "Route", Steps: helpers.ScenarioSteps()},
		{ID: "route-2", DSL: "Route"},
	}))

	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.StepIDs(f.Steps, "route-1_timer-0", "route-1_choice-1")
	as.AttachedTo(f.Steps, "route-1")

	f, err = c.Flow("route-2")
	as.Require.NoError(err)
	as.NotNil(f.Steps)

	as.ErrorIs(c.SetFlows([]api.Flow{
		{ID: "route-1"}, {ID: "route-1"},
	}), api.ErrFlowExists)
	as.ErrorIs(c.SetFlows([]api.Flow{{}}), api.ErrFlowIDEmpty)
	as.ErrorIs(c.SetFlows([]api.Flow{
		{ID: "route-1", Steps: api.Steps{{}}},
	}), api.ErrStepNameEmpty)
	as.Len(c.Flows(), 2)
}

func TestPublisher(t *testing.T) {
	as := assert.New(t)
	rec := helpers.NewRecorder()
	c := scenario(as, flows.Dependencies{Publisher: rec})

	as.Require.NoError(c.DeleteStep("route-1", "route-1_timer-0"))
	_ = c.DeleteStep("route-1", "route-1_missing-0")

	states := rec.States()
	as.Require.Len(states, 4)
	for i, s := range states {
		as.Equal(int64(i+1), s.Version)
		for _, f := range s.Flows {
			as.IndexConsistent(f.Steps, s.Nested[f.ID])
			as.UniqueIDs(f.Steps)
		}
	}
	as.Equal(c.Snapshot(), rec.Last())
}

func TestSnapshotIsolated(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	snap := c.Snapshot()
	snap.Flows[0].Steps[0].Name = "changed"
	snap.Flows[0].Steps[1].Branches[0].Steps = nil

	f, _ := c.Flow("route-1")
	as.Equal("timer", f.Steps[0].Name)
	as.Len(f.Steps[1].Branches[0].Steps, 1)

	f.Steps[0].Name = "changed"
	again, _ := c.Flow("route-1")
	as.Equal("timer", again.Steps[0].Name)
}

func TestConcurrentReaders(t *testing.T) {
	as := assert.New(t)
	c := scenario(as, flows.Dependencies{})

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Go(func() {
			for {
				select {
				case <-done:
					return
				default:
				}
				s := c.Snapshot()
				for _, f := range s.Flows {
					as.IndexConsistent(f.Steps, s.Nested[f.ID])
				}
			}
		})
	}

	for i := range 50 {
		as.NoError(c.InsertStep("route-1",
			helpers.NewBranchingStep("split",
				helpers.NewBranch(helpers.NewStep("log")),
			),
			flows.Insert{Index: 1},
		))
		if i%2 == 0 {
			as.NoError(c.DeleteStep("route-1", "route-1_split-1"))
		}
	}
	close(done)
	wg.Wait()

	f, err := c.Flow("route-1")
	as.Require.NoError(err)
	as.Len(f.Steps, 27)
	as.UniqueIDs(f.Steps)
}
