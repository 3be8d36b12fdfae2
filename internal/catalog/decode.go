package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kaotoio/kaoto/pkg/api"
)

var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotObject   = errors.New("definition is not an object")
	ErrNotArray    = errors.New("definition list is not an array")
)

// ParseStep decodes one step definition
func ParseStep(data []byte) (api.Step, error) {
	if !gjson.ValidBytes(data) {
		return api.Step{}, ErrInvalidJSON
	}
	return decodeStep(gjson.ParseBytes(data))
}

// ParseSteps decodes an array of step definitions
func ParseSteps(data []byte) (api.Steps, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return decodeSteps(gjson.ParseBytes(data))
}

// ParseFlows decodes either an array of flows or an object holding one
// under "flows"
func ParseFlows(data []byte) ([]api.Flow, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if doc.IsObject() {
		doc = doc.Get("flows")
	}
	if !doc.IsArray() {
		return nil, ErrNotArray
	}

	res := []api.Flow{}
	for i, r := range doc.Array() {
		f, err := decodeFlow(r)
		if err != nil {
			return nil, fmt.Errorf("flow %d: %w", i, err)
		}
		res = append(res, f)
	}
	return res, nil
}

func decodeFlow(r gjson.Result) (api.Flow, error) {
	if !r.IsObject() {
		return api.Flow{}, ErrNotObject
	}
	steps, err := decodeSteps(r.Get("steps"))
	if err != nil {
		return api.Flow{}, err
	}
	return api.Flow{
		Metadata:   decodeMap(r.Get("metadata")),
		Properties: decodeMap(r.Get("properties")),
		ID:         api.FlowID(first(r, "id", "flowId").String()),
		DSL:        r.Get("dsl").String(),
		Steps:      steps,
	}, nil
}

func decodeSteps(r gjson.Result) (api.Steps, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return api.Steps{}, nil
	}
	if !r.IsArray() {
		return nil, ErrNotArray
	}
	res := api.Steps{}
	for i, e := range r.Array() {
		st, err := decodeStep(e)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		res = append(res, st)
	}
	return res, nil
}

func decodeStep(r gjson.Result) (api.Step, error) {
	if !r.IsObject() {
		return api.Step{}, ErrNotObject
	}
	st := api.Step{
		Parameters: decodeParameters(r.Get("parameters")),
		ID:         api.StepID(first(r, "UUID", "id").String()),
		FlowID:     api.FlowID(first(r, "flowId", "integrationId").String()),
		Name:       r.Get("name").String(),
		Kind:       r.Get("kind").String(),
		Role:       api.Role(strings.ToUpper(first(r, "role", "type").String())),
	}

	bs := r
	if b := r.Get("branchSupport"); b.IsObject() {
		bs = b
	}
	st.BranchSupport = api.BranchSupport{
		MinBranches: int(bs.Get("minBranches").Int()),
		MaxBranches: int(bs.Get("maxBranches").Int()),
	}

	for j, b := range r.Get("branches").Array() {
		br, err := decodeBranch(b)
		if err != nil {
			return api.Step{}, fmt.Errorf("branch %d: %w", j, err)
		}
		st.Branches = append(st.Branches, br)
	}
	return st, nil
}

func decodeBranch(r gjson.Result) (api.Branch, error) {
	if !r.IsObject() {
		return api.Branch{}, ErrNotObject
	}
	steps, err := decodeSteps(r.Get("steps"))
	if err != nil {
		return api.Branch{}, err
	}
	return api.Branch{
		ID:        api.BranchID(first(r, "id", "branchUuid").String()),
		Label:     first(r, "label", "identifier").String(),
		Condition: r.Get("condition").String(),
		Steps:     steps,
	}, nil
}

// decodeParameters accepts a plain object or a list of {id, value,
// defaultValue} entries. A listed parameter without a value falls back to
// its default and is dropped when it has neither
func decodeParameters(r gjson.Result) api.Parameters {
	switch {
	case r.IsObject():
		return api.Parameters(decodeMap(r))
	case r.IsArray():
		res := api.Parameters{}
		r.ForEach(func(_, p gjson.Result) bool {
			id := p.Get("id").String()
			if id == "" {
				return true
			}
			if v := first(p, "value", "defaultValue"); v.Exists() {
				res[id] = v.Value()
			}
			return true
		})
		if len(res) == 0 {
			return nil
		}
		return res
	default:
		return nil
	}
}

func decodeMap(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return nil
	}
	m, _ := r.Value().(map[string]any)
	return m
}

func first(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}
