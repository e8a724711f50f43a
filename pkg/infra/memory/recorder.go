package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Recorder keeps mirror runs in process memory. Records are lost on restart.
type Recorder struct {
	mu   sync.RWMutex
	runs map[string]model.MirrorRun
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{runs: make(map[string]model.MirrorRun)}
}

// PutRun stores a copy of run
func (r *Recorder) PutRun(_ context.Context, run *model.MirrorRun) error {
	if run == nil || run.ID == "" {
		return goerr.New("run ID is required", goerr.T(types.ErrTagInvalidArgument))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

// GetRun returns a copy of the stored run
func (r *Recorder) GetRun(_ context.Context, id string) (*model.MirrorRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, goerr.New("mirror run not found", goerr.V("run_id", id), goerr.T(types.ErrTagNotFound))
	}
	return &run, nil
}
