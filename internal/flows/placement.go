package flows

import (
	"github.com/kaotoio/kaoto/internal/tree"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

type (
	// Mode names the kind of edit a Placement performs
	Mode string

	// Placement says where InsertStep puts its step
	Placement interface {
		Mode() Mode
		apply(steps api.Steps, s api.Step, v Validator) (api.Steps, error)
	}

	// Append adds the step to the end of the flow
	Append struct{}

	// Insert places the step before a top-level position. An Index equal
	// to the flow length appends
	Insert struct {
		Index int
	}

	// InsertPath places the step before the slot addressed by Path, which
	// may lie inside a branch
	InsertPath struct {
		Path path.Path
	}

	// Replace swaps the top-level step at Index
	Replace struct {
		Index int
	}

	// ReplacePath swaps the step addressed by Path, as found in the nested
	// step index
	ReplacePath struct {
		Path path.Path
	}

	// ReplaceStep swaps the step carrying ID, wherever it lives
	ReplaceStep struct {
		ID api.StepID
	}
)

const (
	ModeAppend  Mode = "append"
	ModeInsert  Mode = "insert"
	ModeReplace Mode = "replace"
)

var (
	_ Placement = Append{}
	_ Placement = Insert{}
	_ Placement = InsertPath{}
	_ Placement = Replace{}
	_ Placement = ReplacePath{}
	_ Placement = ReplaceStep{}
)

func (Append) Mode() Mode      { return ModeAppend }
func (Insert) Mode() Mode      { return ModeInsert }
func (InsertPath) Mode() Mode  { return ModeInsert }
func (Replace) Mode() Mode     { return ModeReplace }
func (ReplacePath) Mode() Mode { return ModeReplace }
func (ReplaceStep) Mode() Mode { return ModeReplace }

func (Append) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	if v != nil {
		if err := v.CanInsert(steps, len(steps), s, true); err != nil {
			return nil, err
		}
	}
	return tree.Append(steps, s), nil
}

func (p Insert) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	res, err := tree.InsertAt(steps, p.Index, s)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.CanInsert(steps, p.Index, s, true); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (p InsertPath) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	res, err := tree.InsertPath(steps, p.Path, s)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return res, nil
	}
	idx, _ := path.Index(p.Path.Last())
	seq, root := steps, true
	if len(p.Path) > 1 {
		b, err := tree.BranchAt(steps, p.Path[:len(p.Path)-2])
		if err != nil {
			return nil, err
		}
		seq, root = b.Steps, false
	}
	if err := v.CanInsert(seq, idx, s, root); err != nil {
		return nil, err
	}
	return res, nil
}

func (p Replace) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	res, err := tree.ReplaceAt(steps, p.Index, s)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.CanReplace(steps, p.Index, s, true); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (p ReplacePath) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	res, err := tree.ReplacePath(steps, p.Path, s)
	if err != nil {
		return nil, err
	}
	if v != nil {
		seq, idx, root, err := tree.SequenceAt(steps, p.Path)
		if err != nil {
			return nil, err
		}
		if err := v.CanReplace(seq, idx, s, root); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (p ReplaceStep) apply(
	steps api.Steps, s api.Step, v Validator,
) (api.Steps, error) {
	_, at, err := tree.Find(steps, p.ID)
	if err != nil {
		return nil, err
	}
	return ReplacePath{Path: at}.apply(steps, s, v)
}
