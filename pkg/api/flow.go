package api

import "github.com/kaotoio/kaoto/pkg/path"

type (
	// Metadata holds opaque pass-through values attached to a flow
	Metadata map[string]any

	// Flow is one independently addressable pipeline
	Flow struct {
		Metadata   Metadata `json:"metadata,omitempty"`
		Properties Metadata `json:"properties,omitempty"`
		ID         FlowID   `json:"id"`
		DSL        string   `json:"dsl"`
		Steps      Steps    `json:"steps"`
	}

	// NestedStep is a derived record describing where a step that lives
	// inside a branch sits in its flow's tree. Records are rebuilt after
	// every structural change and must never be written through
	NestedStep struct {
		StepID           StepID    `json:"stepId"`
		ParentID         StepID    `json:"parentStepId"`
		PathToStep       path.Path `json:"pathToStep"`
		PathToParentStep path.Path `json:"pathToParentStep"`
		PathToBranch     path.Path `json:"pathToBranch"`
		BranchIndex      int       `json:"branchIndex"`
	}

	// FlowsState is a complete, internally consistent view of every flow
	// and its nested step records, as published after each mutation
	FlowsState struct {
		Nested  map[FlowID][]NestedStep `json:"nested"`
		Flows   []Flow                  `json:"flows"`
		Version int64                   `json:"version"`
	}
)

// Path segments that lead from a step into its branches and from a branch
// into its steps
const (
	BranchesKey = "branches"
	StepsKey    = "steps"
)

// Clone returns a deep copy of the flow
func (f Flow) Clone() Flow {
	res := f
	res.Steps = f.Steps.Clone()
	res.Metadata = cloneMetadata(f.Metadata)
	res.Properties = cloneMetadata(f.Properties)
	return res
}

// Flow returns the flow with the given identifier
func (s *FlowsState) Flow(id FlowID) (Flow, bool) {
	for _, f := range s.Flows {
		if f.ID == id {
			return f, true
		}
	}
	return Flow{}, false
}

// FlowIDs returns the identifiers of every flow, in order
func (s *FlowsState) FlowIDs() []FlowID {
	res := make([]FlowID, len(s.Flows))
	for i, f := range s.Flows {
		res[i] = f.ID
	}
	return res
}

// Clone returns a deep copy of the record
func (n NestedStep) Clone() NestedStep {
	res := n
	res.PathToStep = n.PathToStep.Clone()
	res.PathToParentStep = n.PathToParentStep.Clone()
	res.PathToBranch = n.PathToBranch.Clone()
	return res
}

func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	res := make(Metadata, len(m))
	for k, v := range m {
		res[k] = cloneValue(v)
	}
	return res
}
