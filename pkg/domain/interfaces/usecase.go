package interfaces

import (
	"context"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
)

// CollectorUseCase materializes a source tree into a flat file set
type CollectorUseCase interface {
	// Collect walks the tree rooted at rootID and returns every leaf with its path
	Collect(ctx context.Context, cred model.Credential, rootID string) ([]*model.CollectedFile, error)
}

// PublisherUseCase turns a flat file set into a new repository with one commit
type PublisherUseCase interface {
	// Publish creates repoName and commits files to its main branch
	Publish(ctx context.Context, cred model.Credential, repoName string, files []*model.CollectedFile) (*model.PublishResult, error)
}

// MirrorUseCase runs collection and publication for one request
type MirrorUseCase interface {
	// Start records a new run and returns it without executing it
	Start(ctx context.Context, req *model.MirrorRequest) (*model.MirrorRun, error)

	// Execute runs the pipeline for a started run and returns the final record
	Execute(ctx context.Context, run *model.MirrorRun, req *model.MirrorRequest) (*model.MirrorRun, error)

	// GetRun returns a recorded run
	GetRun(ctx context.Context, id string) (*model.MirrorRun, error)
}
