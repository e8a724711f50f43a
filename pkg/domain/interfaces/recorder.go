package interfaces

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
)

// RunRecorder persists mirror run records for operator diagnostics
type RunRecorder interface {
	PutRun(ctx context.Context, run *model.MirrorRun) error
	GetRun(ctx context.Context, id string) (*model.MirrorRun, error)
}

// Notifier announces the outcome of a finished mirror run
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.MirrorRun) error
}
