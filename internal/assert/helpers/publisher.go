package helpers

import (
	"sync"

	"github.com/kaotoio/kaoto/pkg/api"
)

// Recorder is a publisher that keeps every state it receives
type Recorder struct {
	states []*api.FlowsState
	mu     sync.Mutex
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the state
func (r *Recorder) Publish(s *api.FlowsState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

// States returns every recorded state, oldest first
func (r *Recorder) States() []*api.FlowsState {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*api.FlowsState, len(r.states))
	copy(res, r.states)
	return res
}

// Last returns the most recently recorded state, or nil
func (r *Recorder) Last() *api.FlowsState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return nil
	}
	return r.states[len(r.states)-1]
}
