package flows

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/kaotoio/kaoto/internal/tree"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/log"
	"github.com/kaotoio/kaoto/pkg/util"
)

// AddFlow creates an empty flow. An empty dsl selects the configured
// default and an empty id is generated as "<dsl>-<n>" using the lowest n
// not already taken
func (c *Collection) AddFlow(dsl string, id api.FlowID) (api.Flow, error) {
	if dsl == "" {
		dsl = c.config.DefaultDSL
	}
	var res api.Flow
	err := c.update(func(cur *state) (*state, error) {
		fid := id
		if fid == "" {
			fid = cur.nextFlowID(dsl)
		} else if _, err := cur.find(fid); err == nil {
			return nil, fmt.Errorf("%w: %s", api.ErrFlowExists, fid)
		}
		res = api.Flow{
			ID:    fid,
			DSL:   dsl,
			Steps: api.Steps{},
		}
		return cur.withFlow(res), nil
	})
	if err != nil {
		return api.Flow{}, err
	}
	slog.Debug("Flow added",
		log.FlowID(res.ID),
		slog.String("dsl", dsl))
	return res.Clone(), nil
}

// DeleteFlow removes one flow. An unknown flow is ignored
func (c *Collection) DeleteFlow(id api.FlowID) {
	_ = c.update(func(cur *state) (*state, error) {
		i, err := cur.find(id)
		if err != nil {
			return nil, nil
		}
		flows := slices.Delete(slices.Clone(cur.flows), i, i+1)
		indexes := make(map[api.FlowID]*tree.Index, len(flows))
		for _, f := range flows {
			indexes[f.ID] = cur.indexes[f.ID]
		}
		slog.Debug("Flow deleted", log.FlowID(id))
		return &state{
			indexes: indexes,
			flows:   flows,
			version: cur.version,
		}, nil
	})
}

// DeleteAllFlows discards every flow and leaves a single empty flow of the
// configured default DSL in their place
func (c *Collection) DeleteAllFlows() api.Flow {
	dsl := c.config.DefaultDSL
	f := api.Flow{
		ID:    api.FlowID(api.SanitizeID(dsl) + "-1"),
		DSL:   dsl,
		Steps: api.Steps{},
	}
	_ = c.update(func(*state) (*state, error) {
		return newState([]api.Flow{f}), nil
	})
	slog.Debug("Flows reset", log.FlowID(f.ID))
	return f.Clone()
}

// SetFlows replaces every flow at once. Identifiers and nested step
// indexes are rebuilt for each flow
func (c *Collection) SetFlows(flows []api.Flow) error {
	seen := util.Set[api.FlowID]{}
	for _, f := range flows {
		if f.ID == "" {
			return api.ErrFlowIDEmpty
		}
		if !seen.Add(f.ID) {
			return fmt.Errorf("%w: %s", api.ErrFlowExists, f.ID)
		}
		if err := f.Steps.Validate(); err != nil {
			return fmt.Errorf("flow %s: %w", f.ID, err)
		}
	}
	err := c.update(func(*state) (*state, error) {
		return newState(flows), nil
	})
	if err != nil {
		return err
	}
	slog.Debug("Flows loaded", slog.Int("count", len(flows)))
	return nil
}

func (s *state) withFlow(f api.Flow) *state {
	flows := append(slices.Clone(s.flows), f)
	return (&state{
		indexes: s.indexes,
		flows:   flows,
		version: s.version,
	}).withSteps(len(flows)-1, f.Steps)
}

func (s *state) nextFlowID(dsl string) api.FlowID {
	taken := util.SetFrom(s.flows, func(f api.Flow) api.FlowID {
		return f.ID
	})
	base := api.SanitizeID(dsl)
	return taken.FirstFree(func(n int) api.FlowID {
		return api.FlowID(base + "-" + strconv.Itoa(n))
	})
}
