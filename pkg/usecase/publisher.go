package usecase

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/m-mizutani/drivemirror/pkg/domain/interfaces"
	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/drivemirror/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultCommitMessage is the message of the single commit of a mirror
const DefaultCommitMessage = "Initial import from Google Drive"

type publisher struct {
	hostFactory   interfaces.RepositoryHostFactory
	concurrency   int
	commitMessage string
}

// PublisherOption is a functional option for the publisher
type PublisherOption func(*publisher)

// WithBlobConcurrency sets how many blobs are uploaded in parallel
func WithBlobConcurrency(n int) PublisherOption {
	return func(p *publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithCommitMessage overrides the message of the initial commit
func WithCommitMessage(message string) PublisherOption {
	return func(p *publisher) {
		if message != "" {
			p.commitMessage = message
		}
	}
}

// NewPublisher creates a new instance of PublisherUseCase
func NewPublisher(hostFactory interfaces.RepositoryHostFactory, opts ...PublisherOption) interfaces.PublisherUseCase {
	p := &publisher{
		hostFactory:   hostFactory,
		concurrency:   defaultConcurrency,
		commitMessage: DefaultCommitMessage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish creates repoName and builds blobs, tree, commit and the main
// branch ref from files, in that order. Input is validated before the
// repository is created so that invalid file sets make no remote calls.
func (uc *publisher) Publish(ctx context.Context, cred model.Credential, repoName string, files []*model.CollectedFile) (*model.PublishResult, error) {
	if repoName == "" {
		return nil, goerr.New("repository name is required", goerr.T(types.ErrTagInvalidArgument))
	}
	if len(files) == 0 {
		return nil, goerr.New("no files to publish",
			goerr.V("repo_name", repoName),
			goerr.T(types.ErrTagInvalidArgument),
		)
	}
	if err := model.ValidateFiles(files); err != nil {
		return nil, goerr.Wrap(err, "invalid file set", goerr.V("repo_name", repoName))
	}

	host, err := uc.hostFactory.NewRepositoryHost(ctx, cred)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository host client")
	}

	p := &publication{
		host:          host,
		repoName:      repoName,
		files:         files,
		concurrency:   uc.concurrency,
		commitMessage: uc.commitMessage,
		state:         model.PublishStateInitial,
	}
	return p.run(ctx)
}

// publication is the state machine of one publish:
// initial → created → blobs_done → tree_done → commit_done → ref_done.
// Each stage runs only from the state left by the previous one.
type publication struct {
	host          interfaces.RepositoryHost
	repoName      string
	files         []*model.CollectedFile
	concurrency   int
	commitMessage string

	state     model.PublishState
	repo      *model.Repository
	blobSHAs  []string
	treeSHA   string
	commitSHA string
}

type publishStep struct {
	stage model.PublishStage
	from  model.PublishState
	exec  func(ctx context.Context) error
}

func (p *publication) run(ctx context.Context) (*model.PublishResult, error) {
	steps := []publishStep{
		{stage: model.StageCreateRepository, from: model.PublishStateInitial, exec: p.createRepository},
		{stage: model.StageCreateBlobs, from: model.PublishStateCreated, exec: p.createBlobs},
		{stage: model.StageCreateTree, from: model.PublishStateBlobsDone, exec: p.createTree},
		{stage: model.StageCreateCommit, from: model.PublishStateTreeDone, exec: p.createCommit},
		{stage: model.StageCreateRef, from: model.PublishStateCommitDone, exec: p.createRef},
	}

	for _, step := range steps {
		if p.state != step.from {
			return nil, p.fail(ctx, step.stage, goerr.New("publish stage started from unexpected state",
				goerr.V("expected", step.from),
				goerr.V("actual", p.state),
			))
		}
		if err := checkContext(ctx); err != nil {
			return nil, p.fail(ctx, step.stage, err)
		}
		if err := step.exec(ctx); err != nil {
			return nil, p.fail(ctx, step.stage, err)
		}

		next, _ := p.state.Next()
		p.state = next
		logging.From(ctx).Debug("Publish stage completed", "stage", step.stage, "state", p.state)
	}

	return &model.PublishResult{
		RepositoryURL:  p.repo.URL,
		Owner:          p.repo.Owner,
		Repository:     p.repo.Name,
		CommitSHA:      p.commitSHA,
		FilesPublished: len(p.files),
	}, nil
}

func (p *publication) createRepository(ctx context.Context) error {
	repo, err := p.host.CreateRepository(ctx, p.repoName)
	if err != nil {
		return err
	}
	p.repo = repo

	logging.From(ctx).Info("Created repository",
		"owner", repo.Owner,
		"repo", repo.Name,
		"url", repo.URL,
	)
	return nil
}

// createBlobs uploads every file independently. Each goroutine writes only
// its own index of blobSHAs.
func (p *publication) createBlobs(ctx context.Context) error {
	shas := make([]string, len(p.files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.concurrency)
	for i, file := range p.files {
		eg.Go(func() error {
			if err := checkContext(egCtx); err != nil {
				return err
			}

			encoded := base64.StdEncoding.EncodeToString(file.Content)
			sha, err := p.host.CreateBlob(egCtx, p.repo.Owner, p.repo.Name, encoded)
			if err != nil {
				return goerr.Wrap(err, "failed to create blob", goerr.V("path", file.Path))
			}
			shas[i] = sha
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	p.blobSHAs = shas
	logging.From(ctx).Info("Created blobs", "count", len(shas))
	return nil
}

func (p *publication) createTree(ctx context.Context) error {
	entries := make([]*model.TreeEntry, len(p.files))
	for i, file := range p.files {
		entries[i] = &model.TreeEntry{
			Path: file.Path,
			Mode: model.FileModeRegular,
			Type: model.ObjectTypeBlob,
			SHA:  p.blobSHAs[i],
		}
	}

	sha, err := p.host.CreateTree(ctx, p.repo.Owner, p.repo.Name, entries)
	if err != nil {
		return err
	}
	p.treeSHA = sha
	return nil
}

func (p *publication) createCommit(ctx context.Context) error {
	sha, err := p.host.CreateCommit(ctx, p.repo.Owner, p.repo.Name, p.commitMessage, p.treeSHA)
	if err != nil {
		return err
	}
	p.commitSHA = sha
	return nil
}

func (p *publication) createRef(ctx context.Context) error {
	if err := p.host.CreateRef(ctx, p.repo.Owner, p.repo.Name, model.MainBranchRef, p.commitSHA); err != nil {
		return err
	}

	logging.From(ctx).Info("Published repository",
		"url", p.repo.URL,
		"commit_sha", p.commitSHA,
		"files", len(p.files),
	)
	return nil
}

// fail wraps err with the stage, the state reached and, once the repository
// exists, its URL. Nothing is rolled back.
func (p *publication) fail(ctx context.Context, stage model.PublishStage, err error) error {
	pubErr := &model.PublishError{
		Stage: stage,
		State: p.state,
		Err:   err,
	}
	opts := []goerr.Option{
		goerr.V("stage", stage),
		goerr.V("state", p.state),
		goerr.V("repo_name", p.repoName),
	}
	if p.repo != nil {
		pubErr.RepositoryURL = p.repo.URL
		opts = append(opts,
			goerr.V("repository_url", p.repo.URL),
			goerr.V("partial_repository", true),
		)
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		opts = append(opts, goerr.T(types.ErrTagCancelled))
	}

	logging.From(ctx).Error("Publish failed",
		"stage", stage,
		"state", p.state,
		"repository_url", pubErr.RepositoryURL,
		"error", err,
	)

	return goerr.Wrap(pubErr, "failed to publish repository", opts...)
}
