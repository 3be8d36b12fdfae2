package helpers

import (
	"github.com/kaotoio/kaoto/internal/config"
	"github.com/kaotoio/kaoto/pkg/api"
)

// ScenarioFlowID is the flow used by the timer/choice/log fixture
const ScenarioFlowID = api.FlowID("route-1")

// NewStep creates a middle step that cannot own branches
func NewStep(name string) api.Step {
	return api.Step{
		Name: name,
		Kind: "Camel-Connector",
		Role: api.RoleMiddle,
	}
}

// NewStartStep creates a step that can only head a flow
func NewStartStep(name string) api.Step {
	st := NewStep(name)
	st.Role = api.RoleStart
	return st
}

// NewEndStep creates a step that can only close a sequence
func NewEndStep(name string) api.Step {
	st := NewStep(name)
	st.Role = api.RoleEnd
	return st
}

// NewBranchingStep creates a step that requires at least one branch and
// accepts any number of them
func NewBranchingStep(name string, branches ...api.Branch) api.Step {
	st := NewStep(name)
	st.Kind = "EIP-BRANCH"
	st.BranchSupport = api.BranchSupport{
		MinBranches: 1,
		MaxBranches: api.Unbounded,
	}
	st.Branches = branches
	return st
}

// NewBranch creates a branch holding the given steps
func NewBranch(steps ...api.Step) api.Branch {
	if steps == nil {
		steps = api.Steps{}
	}
	return api.Branch{Steps: steps}
}

// ScenarioSteps returns the timer, choice(log) tree
func ScenarioSteps() api.Steps {
	return api.Steps{
		NewStartStep("timer"),
		NewBranchingStep("choice", NewBranch(NewStep("log"))),
	}
}

// DeepSteps returns a tree with branches nested three levels deep:
// timer, choice(split(filter(log, marshal)), to), log
func DeepSteps() api.Steps {
	filter := NewBranchingStep("filter",
		NewBranch(NewStep("log"), NewStep("marshal")),
	)
	split := NewBranchingStep("split", NewBranch(filter))
	choice := NewBranchingStep("choice",
		NewBranch(split),
		NewBranch(NewStep("to")),
	)
	return api.Steps{
		NewStartStep("timer"),
		choice,
		NewStep("log"),
	}
}

// NewTestConfig returns the default configuration with debug logging
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	return cfg
}
