package log_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/log"
	"github.com/kaotoio/kaoto/pkg/path"
)

func TestAttrs(t *testing.T) {
	attr := log.FlowID(api.FlowID("route-1"))
	assert.Equal(t, "flow_id", attr.Key)
	assert.Equal(t, "route-1", attr.Value.String())

	attr = log.StepID(api.StepID("route-1_timer-0"))
	assert.Equal(t, "step_id", attr.Key)
	assert.Equal(t, "route-1_timer-0", attr.Value.String())

	attr = log.BranchID(api.BranchID("route-1_choice-1|branch-0"))
	assert.Equal(t, "branch_id", attr.Key)

	attr = log.Path(path.Of(1, "branches", 0))
	assert.Equal(t, "path", attr.Key)
	assert.Equal(t, "1.branches.0", attr.Value.String())

	attr = log.Version(7)
	assert.Equal(t, int64(7), attr.Value.Int64())
}

func TestErrorAttr(t *testing.T) {
	attr := log.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	attr = log.Error(nil)
	assert.Equal(t, "", attr.Value.String())
}
