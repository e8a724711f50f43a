package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

type mirror struct {
	collector interfaces.CollectorUseCase
	publisher interfaces.PublisherUseCase
	recorder  interfaces.RunRecorder
	notifier  interfaces.Notifier
	now       func() time.Time
}

// MirrorOption is a functional option for the mirror use case
type MirrorOption func(*mirror)

// WithNotifier sends run outcomes to notifier
func WithNotifier(notifier interfaces.Notifier) MirrorOption {
	return func(m *mirror) {
		m.notifier = notifier
	}
}

// WithClock replaces time.Now for run timestamps
func WithClock(now func() time.Time) MirrorOption {
	return func(m *mirror) {
		m.now = now
	}
}

// NewMirror creates a new instance of MirrorUseCase
func NewMirror(
	collector interfaces.CollectorUseCase,
	publisher interfaces.PublisherUseCase,
	recorder interfaces.RunRecorder,
	opts ...MirrorOption,
) interfaces.MirrorUseCase {
	m := &mirror{
		collector: collector,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start validates req and records a new running run
func (uc *mirror) Start(ctx context.Context, req *model.MirrorRequest) (*model.MirrorRun, error) {
	if req == nil || req.RootID == "" {
		return nil, goerr.New("root ID is required", goerr.T(types.ErrTagInvalidArgument))
	}
	if req.RepoName == "" {
		return nil, goerr.New("repository name is required", goerr.T(types.ErrTagInvalidArgument))
	}

	now := uc.now()
	run := &model.MirrorRun{
		ID:        uuid.NewString(),
		RootID:    req.RootID,
		RepoName:  req.RepoName,
		Status:    model.RunStatusRunning,
		State:     model.PublishStateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.recorder.PutRun(ctx, run); err != nil {
		return nil, goerr.Wrap(err, "failed to record mirror run", goerr.V("run_id", run.ID))
	}

	logging.From(ctx).Info("Mirror run started",
		"run_id", run.ID,
		"root_id", run.RootID,
		"repo_name", run.RepoName,
	)
	return run, nil
}

// Execute collects the source tree and publishes it. The returned run is the
// final record; the returned error is the pipeline failure, if any.
func (uc *mirror) Execute(ctx context.Context, run *model.MirrorRun, req *model.MirrorRequest) (*model.MirrorRun, error) {
	ctx = logging.WithAttrs(ctx, "run_id", run.ID)

	files, err := uc.collector.Collect(ctx, req.DriveCred, req.RootID)
	if err != nil {
		return uc.finish(ctx, run, goerr.Wrap(err, "failed to collect source tree", goerr.V("root_id", req.RootID)))
	}

	run.FilesCollected = len(files)
	uc.record(ctx, run)

	result, err := uc.publisher.Publish(ctx, req.GitHubCred, req.RepoName, files)
	if err != nil {
		var pubErr *model.PublishError
		if errors.As(err, &pubErr) {
			run.State = pubErr.State
			run.RepositoryURL = pubErr.RepositoryURL
		}
		return uc.finish(ctx, run, err)
	}

	run.State = model.PublishStateRefDone
	run.RepositoryURL = result.RepositoryURL
	run.FilesPublished = result.FilesPublished
	return uc.finish(ctx, run, nil)
}

// GetRun returns a recorded run
func (uc *mirror) GetRun(ctx context.Context, id string) (*model.MirrorRun, error) {
	run, err := uc.recorder.GetRun(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mirror run", goerr.V("run_id", id))
	}
	return run, nil
}

func (uc *mirror) finish(ctx context.Context, run *model.MirrorRun, cause error) (*model.MirrorRun, error) {
	logger := logging.From(ctx)

	if cause != nil {
		run.Status = model.RunStatusFailed
		run.ErrorKind = types.ErrorKind(cause)
		run.Error = cause.Error()
		logger.Error("Mirror run failed",
			"error", cause,
			"error_kind", run.ErrorKind,
			"state", run.State,
			"partial_repository", run.PartialRepository(),
			"repository_url", run.RepositoryURL,
		)
	} else {
		run.Status = model.RunStatusSucceeded
		logger.Info("Mirror run succeeded",
			"repository_url", run.RepositoryURL,
			"files_published", run.FilesPublished,
		)
	}

	// Cancelled runs are still recorded and notified
	reportCtx := context.WithoutCancel(ctx)
	uc.record(reportCtx, run)
	if uc.notifier != nil {
		if err := uc.notifier.NotifyRun(reportCtx, run); err != nil {
			logger.Warn("Failed to notify mirror run result", "error", err)
		}
	}

	return run, cause
}

// record stores run progress. Failures are logged and never abort the run.
func (uc *mirror) record(ctx context.Context, run *model.MirrorRun) {
	run.UpdatedAt = uc.now()
	if err := uc.recorder.PutRun(ctx, run); err != nil {
		logging.From(ctx).Warn("Failed to record mirror run", "error", err, "run_id", run.ID)
	}
}
