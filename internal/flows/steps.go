package flows

import (
	"log/slog"

	"github.com/kaotoio/kaoto/internal/tree"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/log"
	"github.com/kaotoio/kaoto/pkg/path"
)

// InsertStep places s into a flow as directed by p, then regenerates the
// flow's identifiers and nested step index
func (c *Collection) InsertStep(
	flowID api.FlowID, s api.Step, p Placement,
) error {
	if err := s.Validate(); err != nil {
		return err
	}
	err := c.editSteps(flowID, false, func(steps api.Steps) (api.Steps, error) {
		return p.apply(steps, s, c.validator)
	})
	if err != nil {
		return err
	}
	slog.Debug("Step inserted",
		log.FlowID(flowID),
		log.Mode(p.Mode()),
		slog.String("name", s.Name))
	return nil
}

// DeleteStep removes a step, and its whole branch subtree, from a flow. An
// unknown flow is ignored
func (c *Collection) DeleteStep(flowID api.FlowID, stepID api.StepID) error {
	err := c.editSteps(flowID, true, func(steps api.Steps) (api.Steps, error) {
		return tree.Delete(steps, stepID)
	})
	if err != nil {
		return err
	}
	slog.Debug("Step deleted",
		log.FlowID(flowID),
		log.StepID(stepID))
	return nil
}

// AddBranch appends a branch to the step carrying stepID
func (c *Collection) AddBranch(
	flowID api.FlowID, stepID api.StepID, b api.Branch,
) error {
	if err := b.Steps.Validate(); err != nil {
		return err
	}
	err := c.editSteps(flowID, false, func(steps api.Steps) (api.Steps, error) {
		if c.validator != nil {
			owner, _, err := tree.Find(steps, stepID)
			if err != nil {
				return nil, err
			}
			if err := c.validator.CanAddBranch(owner); err != nil {
				return nil, err
			}
		}
		return tree.AddBranch(steps, stepID, b)
	})
	if err != nil {
		return err
	}
	slog.Debug("Branch added",
		log.FlowID(flowID),
		log.StepID(stepID))
	return nil
}

// DeleteBranch removes one branch, and everything in it, from the step
// carrying stepID. An unknown flow is ignored
func (c *Collection) DeleteBranch(
	flowID api.FlowID, stepID api.StepID, branchID api.BranchID,
) error {
	err := c.editSteps(flowID, true, func(steps api.Steps) (api.Steps, error) {
		if c.validator != nil {
			owner, _, err := tree.Find(steps, stepID)
			if err != nil {
				return nil, err
			}
			if err := c.validator.CanDeleteBranch(owner); err != nil {
				return nil, err
			}
		}
		return tree.DeleteBranch(steps, stepID, branchID)
	})
	if err != nil {
		return err
	}
	slog.Debug("Branch deleted",
		log.FlowID(flowID),
		log.StepID(stepID),
		log.BranchID(branchID))
	return nil
}

// SetParameter stores v at p inside the parameters of the step carrying
// stepID, creating intermediate maps and slices as needed
func (c *Collection) SetParameter(
	flowID api.FlowID, stepID api.StepID, p path.Path, v any,
) error {
	err := c.editSteps(flowID, false, func(steps api.Steps) (api.Steps, error) {
		st, _, err := tree.Find(steps, stepID)
		if err != nil {
			return nil, err
		}
		params := map[string]any(st.Parameters)
		if params == nil {
			params = map[string]any{}
		}
		root, err := path.Set(params, p, v)
		if err != nil {
			return nil, err
		}
		st.Parameters = root.(map[string]any)
		return tree.ReplaceByID(steps, stepID, st)
	})
	if err != nil {
		return err
	}
	slog.Debug("Parameter set",
		log.FlowID(flowID),
		log.StepID(stepID),
		log.Path(p))
	return nil
}

// editSteps applies fn to one flow's steps and commits the result. When
// missingOK is set an unknown flow is a no-op instead of ErrFlowNotFound
func (c *Collection) editSteps(
	flowID api.FlowID, missingOK bool,
	fn func(api.Steps) (api.Steps, error),
) error {
	return c.update(func(cur *state) (*state, error) {
		i, err := cur.find(flowID)
		if err != nil {
			if missingOK {
				return nil, nil
			}
			return nil, err
		}
		steps, err := fn(cur.flows[i].Steps)
		if err != nil {
			return nil, err
		}
		return cur.withSteps(i, steps), nil
	})
}
